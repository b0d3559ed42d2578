// Package registry holds the authoritative, ordered collection of movie
// sessions.  Sessions and bookings are addressed by position, exactly as
// the REST API exposes them.  Every mutation is written through to the
// store as a full snapshot before it is reported as successful.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/iliyamo/cinema-session-booking/internal/model"
	"github.com/iliyamo/cinema-session-booking/internal/store"
)

// Change describes the outcome of a successful mutation.
type Change struct {
	SessionIndex int           // position of the affected session
	BookingIndex int           // position of the affected booking, -1 for session changes
	Session      model.Session // snapshot of the session after the change
	BookingName  string        // name added, written or removed
	PreviousName string        // name replaced by an edit
}

// Registry is the in-memory session collection.  It is safe for concurrent
// use: the mutex is held across mutate and persist, so requests are applied
// one after another and positions seen by one request cannot shift under it.
type Registry struct {
	mu       sync.Mutex
	sessions []model.Session
	store    store.Store
	log      *slog.Logger
	newID    func() string
}

// Option customises a Registry.
type Option func(*Registry)

// WithIDGenerator replaces the UUID generator, mostly for tests.
func WithIDGenerator(fn func() string) Option {
	return func(r *Registry) { r.newID = fn }
}

// New loads the registry from st once.  Records without an identifier get
// one assigned; it reaches the store with the next mutation.
func New(ctx context.Context, st store.Store, logger *slog.Logger, opts ...Option) (*Registry, error) {
	if st == nil {
		panic("nil store passed to registry.New")
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{store: st, log: logger, newID: uuid.NewString}
	for _, opt := range opts {
		opt(r)
	}
	loaded, err := st.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	r.sessions = make([]model.Session, 0, len(loaded))
	for _, s := range loaded {
		s = s.Clone()
		if s.ID == "" {
			s.ID = r.newID()
		}
		r.sessions = append(r.sessions, s)
	}
	r.log.Info("sessions loaded", "count", len(r.sessions))
	return r, nil
}

// List returns a deep copy of all sessions in creation order.
func (r *Registry) List() []model.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return model.CloneAll(r.sessions)
}

// Len returns the number of sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Get returns a copy of the session at index si.
func (r *Registry) Get(si int) (model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.validSession(si) {
		return model.Session{}, ErrSessionNotFound
	}
	return r.sessions[si].Clone(), nil
}

// CreateSession appends a new session with no bookings.  Its index is the
// previous length of the collection.  Title, time and seat count are taken
// as given.
func (r *Registry) CreateSession(ctx context.Context, title, time string, seats model.SeatCount) (Change, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := model.Session{ID: r.newID(), MovieTitle: title, Time: time, SeatsAmount: seats, Bookings: []string{}}
	r.sessions = append(r.sessions, s)
	si := len(r.sessions) - 1
	if err := r.persist(ctx); err != nil {
		r.sessions = r.sessions[:si]
		return Change{}, err
	}
	r.log.Info("session created", "session", si, "session_id", s.ID, "movie", title)
	return Change{SessionIndex: si, BookingIndex: -1, Session: s.Clone()}, nil
}

// AddBooking appends name to the bookings of session si.  Capacity is not
// checked; a session can be overbooked.
func (r *Registry) AddBooking(ctx context.Context, si int, name string) (Change, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.validSession(si) {
		return Change{}, ErrSessionNotFound
	}
	prev := r.sessions[si].Clone()
	r.sessions[si].Bookings = append(r.sessions[si].Bookings, name)
	bi := len(r.sessions[si].Bookings) - 1
	if err := r.persist(ctx); err != nil {
		r.sessions[si] = prev
		return Change{}, err
	}
	r.log.Info("booking added", "session", si, "booking", bi, "session_id", prev.ID)
	return Change{SessionIndex: si, BookingIndex: bi, Session: r.sessions[si].Clone(), BookingName: name}, nil
}

// EditBooking replaces the booking at position bi of session si.
func (r *Registry) EditBooking(ctx context.Context, si, bi int, name string) (Change, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.validSession(si) {
		return Change{}, ErrSessionNotFound
	}
	if !r.validBooking(si, bi) {
		return Change{}, ErrBookingNotFound
	}
	prev := r.sessions[si].Clone()
	old := r.sessions[si].Bookings[bi]
	r.sessions[si].Bookings[bi] = name
	if err := r.persist(ctx); err != nil {
		r.sessions[si] = prev
		return Change{}, err
	}
	r.log.Info("booking edited", "session", si, "booking", bi, "session_id", prev.ID)
	return Change{SessionIndex: si, BookingIndex: bi, Session: r.sessions[si].Clone(), BookingName: name, PreviousName: old}, nil
}

// DeleteBooking removes the booking at position bi of session si.  Every
// later booking of that session moves down by one position.
func (r *Registry) DeleteBooking(ctx context.Context, si, bi int) (Change, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.validSession(si) {
		return Change{}, ErrSessionNotFound
	}
	if !r.validBooking(si, bi) {
		return Change{}, ErrBookingNotFound
	}
	prev := r.sessions[si].Clone()
	name := prev.Bookings[bi]
	bookings := make([]string, 0, len(prev.Bookings)-1)
	bookings = append(bookings, prev.Bookings[:bi]...)
	bookings = append(bookings, prev.Bookings[bi+1:]...)
	r.sessions[si].Bookings = bookings
	if err := r.persist(ctx); err != nil {
		r.sessions[si] = prev
		return Change{}, err
	}
	r.log.Info("booking deleted", "session", si, "booking", bi, "session_id", prev.ID)
	return Change{SessionIndex: si, BookingIndex: bi, Session: r.sessions[si].Clone(), BookingName: name}, nil
}

// persist writes the whole collection.  Callers hold r.mu.
func (r *Registry) persist(ctx context.Context) error {
	if err := r.store.Write(ctx, r.sessions); err != nil {
		r.log.Error("persisting sessions failed", "err", err)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func (r *Registry) validSession(si int) bool {
	return si >= 0 && si < len(r.sessions)
}

func (r *Registry) validBooking(si, bi int) bool {
	return bi >= 0 && bi < len(r.sessions[si].Bookings)
}
