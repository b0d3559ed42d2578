// Package client talks to the session REST API.  Every call is a single
// round trip; there are no retries and no caching on this side.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iliyamo/cinema-session-booking/internal/model"
)

// APIError is returned for any non-200 response.  Info carries the
// server's "info" text when the body had one.
type APIError struct {
	Status int
	Info   string
}

func (e *APIError) Error() string {
	if e.Info == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Info)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client is a thin REST client.  The zero value is not usable; call New.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the server at baseURL (e.g. http://localhost:4321).
// A nil httpClient gets a default with a 10s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// ListSessions fetches the full session list.
func (c *Client) ListSessions(ctx context.Context) ([]model.Session, error) {
	var out []model.Session
	if err := c.do(ctx, http.MethodGet, "/sessions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddSession creates a session and returns the server's info message.
func (c *Client) AddSession(ctx context.Context, title, time string, seats model.SeatCount) (string, error) {
	body := map[string]any{"movieTitle": title, "time": time, "seatsAmount": seats}
	return c.info(ctx, http.MethodPost, "/sessions", body)
}

// AddBooking appends a booking to the session at sessionIndex.
func (c *Client) AddBooking(ctx context.Context, sessionIndex int, name string) (string, error) {
	path := fmt.Sprintf("/sessions/%d/bookings", sessionIndex)
	return c.info(ctx, http.MethodPost, path, map[string]string{"bookingName": name})
}

// EditBooking renames the booking at bookingIndex of session sessionIndex.
func (c *Client) EditBooking(ctx context.Context, sessionIndex, bookingIndex int, name string) (string, error) {
	path := fmt.Sprintf("/sessions/%d/bookings/%d", sessionIndex, bookingIndex)
	return c.info(ctx, http.MethodPut, path, map[string]string{"newbookingName": name})
}

// DeleteBooking removes the booking at bookingIndex of session sessionIndex.
func (c *Client) DeleteBooking(ctx context.Context, sessionIndex, bookingIndex int) (string, error) {
	path := fmt.Sprintf("/sessions/%d/bookings/%d", sessionIndex, bookingIndex)
	return c.info(ctx, http.MethodDelete, path, nil)
}

func (c *Client) info(ctx context.Context, method, path string, body any) (string, error) {
	var resp struct {
		Info string `json:"info"`
	}
	if err := c.do(ctx, method, path, body, &resp); err != nil {
		return "", err
	}
	return resp.Info, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		apiErr := &APIError{Status: res.StatusCode}
		var payload struct {
			Info string `json:"info"`
		}
		if json.Unmarshal(data, &payload) == nil {
			apiErr.Info = payload.Info
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
