// Package queue defines message payloads exchanged over the message broker.
package queue

// Event types published after successful registry mutations.
const (
	SessionCreated = "session.created"
	BookingAdded   = "booking.added"
	BookingEdited  = "booking.edited"
	BookingDeleted = "booking.deleted"
)

// SessionEvent is published when a session or one of its bookings changes.
// It carries enough information for downstream consumers to log or notify
// without calling back into the API.  Positions are the ones valid at the
// moment of the change; SessionID stays valid after later shifts.
type SessionEvent struct {
	Type           string `json:"type"`
	SessionID      string `json:"session_id"`
	SessionIndex   int    `json:"session_index"`
	BookingIndex   int    `json:"booking_index"`
	MovieTitle     string `json:"movie_title"`
	Time           string `json:"time"`
	BookingName    string `json:"booking_name,omitempty"`
	PreviousName   string `json:"previous_name,omitempty"`
	SeatsAmount    int    `json:"seats_amount"`
	SeatsAvailable int    `json:"seats_available"`
	OccurredAt     string `json:"occurred_at"`
}
