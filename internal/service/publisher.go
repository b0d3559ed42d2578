// Package service publishes domain events to RabbitMQ.  Errors are logged
// and returned so callers can ignore failures without interrupting the
// main request flow.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/cinema-session-booking/internal/queue"
	"github.com/iliyamo/cinema-session-booking/internal/registry"
)

// Publisher delivers session events somewhere.
type Publisher interface {
	Publish(ctx context.Context, ev queue.SessionEvent) error
}

// NopPublisher drops every event.  The server uses it when QUEUE_ENABLED is
// off, so handlers always have a Notifier to call.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, queue.SessionEvent) error { return nil }

// AMQPPublisher publishes events to a durable queue through the default
// exchange.  Each Publish opens its own connection, which keeps the type
// free of reconnect state at the cost of a dial per mutation.
type AMQPPublisher struct {
	URL   string
	Queue string
	Log   *slog.Logger
}

// Publish sends ev as a persistent JSON message.
func (p *AMQPPublisher) Publish(ctx context.Context, ev queue.SessionEvent) error {
	logger := p.Log
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		logger.Warn("rabbitmq: dial failed", "err", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.Warn("rabbitmq: channel open failed", "err", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		p.Queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		logger.Warn("rabbitmq: queue declare failed", "err", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		logger.Warn("rabbitmq: marshal event failed", "err", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Type:         ev.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx,
		"",      // default exchange
		p.Queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		pub,
	); err != nil {
		logger.Warn("rabbitmq: publish failed", "err", err)
		return err
	}
	return nil
}

// NewEvent builds the event describing a registry change.
func NewEvent(kind string, ch registry.Change, at time.Time) queue.SessionEvent {
	return queue.SessionEvent{
		Type:           kind,
		SessionID:      ch.Session.ID,
		SessionIndex:   ch.SessionIndex,
		BookingIndex:   ch.BookingIndex,
		MovieTitle:     ch.Session.MovieTitle,
		Time:           ch.Session.Time,
		BookingName:    ch.BookingName,
		PreviousName:   ch.PreviousName,
		SeatsAmount:    int(ch.Session.SeatsAmount),
		SeatsAvailable: ch.Session.SeatsAvailable(),
		OccurredAt:     at.UTC().Format(time.RFC3339),
	}
}

// Notifier publishes events in the background so a slow or absent broker
// never delays an HTTP response.
type Notifier struct {
	Publisher Publisher
	Timeout   time.Duration
	Log       *slog.Logger

	inflight sync.WaitGroup
}

// Notify publishes the event for ch on a separate goroutine and returns
// immediately.  The returned channel receives the publish error (or nil)
// and is closed afterwards.
func (n *Notifier) Notify(kind string, ch registry.Change) <-chan error {
	done := make(chan error, 1)
	if n == nil || n.Publisher == nil {
		close(done)
		return done
	}
	ev := NewEvent(kind, ch, time.Now())
	timeout := n.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	n.inflight.Add(1)
	go func() {
		defer n.inflight.Done()
		defer close(done)
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := n.Publisher.Publish(ctx, ev)
		if err != nil && n.Log != nil {
			n.Log.Warn("event not published", "type", kind, "session_id", ev.SessionID, "err", err)
		}
		done <- err
	}()
	return done
}

// Wait blocks until every event handed to Notify has been published or
// has failed.  The server calls it during shutdown.
func (n *Notifier) Wait() {
	if n == nil {
		return
	}
	n.inflight.Wait()
}
