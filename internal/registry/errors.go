package registry

import "errors"

// ErrNotFound is the common cause of every out-of-range lookup.  Handlers
// translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrSessionNotFound is returned when a session index is outside [0, len).
var ErrSessionNotFound = &notFoundError{what: "session"}

// ErrBookingNotFound is returned when a booking index is outside the
// bookings of an existing session.
var ErrBookingNotFound = &notFoundError{what: "booking"}

// ErrPersist wraps failures of the underlying store.  The in-memory state
// has already been rolled back when it is returned.
var ErrPersist = errors.New("persist sessions")

type notFoundError struct{ what string }

func (e *notFoundError) Error() string { return e.what + " not found" }

func (e *notFoundError) Unwrap() error { return ErrNotFound }
