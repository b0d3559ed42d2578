package model

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

// Session represents a scheduled showing of a movie together with the
// names booked against it.  Sessions are addressed positionally over the
// REST API; ID is a stable identifier carried alongside for correlation
// in logs and domain events.
//
// Fields:
//  ID          – stable opaque identifier (UUID).
//  MovieTitle  – free-form title of the movie.
//  Time        – free-form time label, never parsed.
//  SeatsAmount – seat capacity of the session.
//  Bookings    – booker names in booking order.
type Session struct {
	ID          string    `json:"id,omitempty"`
	MovieTitle  string    `json:"movieTitle"`
	Time        string    `json:"time"`
	SeatsAmount SeatCount `json:"seatsAmount"`
	Bookings    []string  `json:"bookings"`
}

// SeatsAvailable returns the capacity left after the current bookings.
// The result is negative when the session is overbooked; nothing on the
// data level prevents that.
func (s Session) SeatsAvailable() int {
	return int(s.SeatsAmount) - len(s.Bookings)
}

// Clone returns a deep copy so callers can hand out snapshots without
// sharing the bookings backing array.
func (s Session) Clone() Session {
	out := s
	out.Bookings = make([]string, len(s.Bookings))
	copy(out.Bookings, s.Bookings)
	return out
}

// MarshalJSON keeps bookings an array even when the slice is nil.
func (s Session) MarshalJSON() ([]byte, error) {
	type plain Session
	p := plain(s)
	if p.Bookings == nil {
		p.Bookings = []string{}
	}
	return json.Marshal(p)
}

// CloneAll deep-copies an ordered collection of sessions.
func CloneAll(in []Session) []Session {
	out := make([]Session, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

// SeatCount is the seat capacity of a session.  Input is taken leniently:
// HTML forms submit the raw input value, so a numeric string counts as its
// number, and a value that is not a whole number never rejects the request.
// It always encodes as a number.
type SeatCount int

// UnmarshalJSON never fails.  null and "" decode to 0.  Fractions are
// truncated toward zero and anything that is not a number or a numeric
// string (bools, words, objects) becomes 0; both cases log a warning.
func (n *SeatCount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*n = 0
		return nil
	}
	raw := b
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return coerceSeats(n, raw, 0, "unreadable string")
		}
		b = []byte(strings.TrimSpace(s))
		if len(b) == 0 {
			*n = 0
			return nil
		}
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return coerceSeats(n, raw, 0, "not a number")
	}
	if f != math.Trunc(f) {
		return coerceSeats(n, raw, SeatCount(math.Trunc(f)), "fraction truncated")
	}
	*n = SeatCount(f)
	return nil
}

func coerceSeats(n *SeatCount, raw []byte, v SeatCount, reason string) error {
	slog.Warn("seatsAmount coerced", "raw", string(raw), "value", int(v), "reason", reason)
	*n = v
	return nil
}
