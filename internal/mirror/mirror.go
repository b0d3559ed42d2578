// Package mirror keeps a client-side copy of the server's sessions.  The
// copy is built from one full fetch and then patched as the user acts.
// Every action goes to the server first; local state and the view change
// only after the server confirmed it.  A failed call leaves both untouched.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/iliyamo/cinema-session-booking/internal/model"
)

var (
	// ErrUnknownSession is returned for a tag that names no local session.
	ErrUnknownSession = errors.New("unknown session")
	// ErrUnknownBooking is returned for a booking id that names no local booking.
	ErrUnknownBooking = errors.New("unknown booking")
)

// Remote is the server API as seen by the mirror.
type Remote interface {
	ListSessions(ctx context.Context) ([]model.Session, error)
	AddSession(ctx context.Context, title, time string, seats model.SeatCount) (string, error)
	AddBooking(ctx context.Context, sessionIndex int, name string) (string, error)
	EditBooking(ctx context.Context, sessionIndex, bookingIndex int, name string) (string, error)
	DeleteBooking(ctx context.Context, sessionIndex, bookingIndex int) (string, error)
}

// View receives render requests after local state changed.
type View interface {
	// RenderSession draws a session that was just added to the mirror.
	RenderSession(s *Session)
	// AppendBooking draws the booking at index i of s after an add.
	AppendBooking(s *Session, i int)
	// RerenderBookings redraws the whole booking list of s.
	RerenderBookings(s *Session)
	// RerenderSeats recomputes the seat counter and add-button visibility.
	RerenderSeats(s *Session)
}

// Session is the local copy of one server session.  Tag is "MS<index>"
// where index is the session's position at mirror construction; it matches
// the server position because sessions are only ever appended.
type Session struct {
	Tag         string
	MovieTitle  string
	Time        string
	SeatsAmount model.SeatCount
	Bookings    []string
}

// SeatsAvailable returns capacity minus bookings; it can be negative.
func (s *Session) SeatsAvailable() int {
	return int(s.SeatsAmount) - len(s.Bookings)
}

// BookingID returns the local id of the booking at position i.
func (s *Session) BookingID(i int) string {
	return fmt.Sprintf("%s-T%d", s.Tag, i)
}

// Mirror is the client-side session collection.  It is not safe for
// concurrent use; a UI drives it from one goroutine.
type Mirror struct {
	remote   Remote
	view     View
	log      *slog.Logger
	sessions []*Session
}

// New returns an empty mirror.  A nil view discards render requests and a
// nil logger uses slog.Default.
func New(remote Remote, view View, logger *slog.Logger) *Mirror {
	if remote == nil {
		panic("nil remote passed to mirror.New")
	}
	if view == nil {
		view = nopView{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Mirror{remote: remote, view: view, log: logger}
}

// Load replaces local state with a full fetch and renders every session.
func (m *Mirror) Load(ctx context.Context) error {
	remote, err := m.remote.ListSessions(ctx)
	if err != nil {
		m.log.Error("loading sessions failed", "err", err)
		return err
	}
	m.sessions = m.sessions[:0]
	for _, rs := range remote {
		s := &Session{
			Tag:         sessionTag(len(m.sessions)),
			MovieTitle:  rs.MovieTitle,
			Time:        rs.Time,
			SeatsAmount: rs.SeatsAmount,
			Bookings:    append([]string{}, rs.Bookings...),
		}
		m.sessions = append(m.sessions, s)
		m.view.RenderSession(s)
		m.view.RerenderBookings(s)
	}
	return nil
}

// Sessions returns the local sessions in order.
func (m *Mirror) Sessions() []*Session {
	return append([]*Session(nil), m.sessions...)
}

// Session looks a session up by tag.
func (m *Mirror) Session(tag string) (*Session, error) {
	i, err := ParseSessionTag(tag)
	if err != nil || i >= len(m.sessions) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSession, tag)
	}
	return m.sessions[i], nil
}

// AddSession creates a session on the server and appends it locally.
func (m *Mirror) AddSession(ctx context.Context, title, time string, seats model.SeatCount) (*Session, error) {
	if _, err := m.remote.AddSession(ctx, title, time, seats); err != nil {
		m.log.Error("adding session failed", "movie", title, "err", err)
		return nil, err
	}
	s := &Session{
		Tag:         sessionTag(len(m.sessions)),
		MovieTitle:  title,
		Time:        time,
		SeatsAmount: seats,
		Bookings:    []string{},
	}
	m.sessions = append(m.sessions, s)
	m.view.RenderSession(s)
	return s, nil
}

// AddBooking books name into the session tagged tag.
func (m *Mirror) AddBooking(ctx context.Context, tag, name string) error {
	s, err := m.Session(tag)
	if err != nil {
		return err
	}
	si, _ := ParseSessionTag(s.Tag)
	if _, err := m.remote.AddBooking(ctx, si, name); err != nil {
		m.log.Error("adding booking failed", "session", s.Tag, "err", err)
		return err
	}
	s.Bookings = append(s.Bookings, name)
	m.view.AppendBooking(s, len(s.Bookings)-1)
	m.view.RerenderSeats(s)
	return nil
}

// EditBooking renames the booking identified by bookingID.
func (m *Mirror) EditBooking(ctx context.Context, bookingID, name string) error {
	s, bi, err := m.booking(bookingID)
	if err != nil {
		return err
	}
	si, _ := ParseSessionTag(s.Tag)
	if _, err := m.remote.EditBooking(ctx, si, bi, name); err != nil {
		m.log.Error("editing booking failed", "booking", bookingID, "err", err)
		return err
	}
	s.Bookings[bi] = name
	m.view.RerenderBookings(s)
	m.view.RerenderSeats(s)
	return nil
}

// DeleteBooking removes the booking identified by bookingID.  Later
// bookings of the session get new ids, one position lower.
func (m *Mirror) DeleteBooking(ctx context.Context, bookingID string) error {
	s, bi, err := m.booking(bookingID)
	if err != nil {
		return err
	}
	si, _ := ParseSessionTag(s.Tag)
	if _, err := m.remote.DeleteBooking(ctx, si, bi); err != nil {
		m.log.Error("deleting booking failed", "booking", bookingID, "err", err)
		return err
	}
	s.Bookings = append(s.Bookings[:bi:bi], s.Bookings[bi+1:]...)
	m.view.RerenderBookings(s)
	m.view.RerenderSeats(s)
	return nil
}

func (m *Mirror) booking(bookingID string) (*Session, int, error) {
	tag, bi, err := ParseBookingID(bookingID)
	if err != nil {
		return nil, 0, err
	}
	s, err := m.Session(tag)
	if err != nil {
		return nil, 0, err
	}
	if bi >= len(s.Bookings) {
		return nil, 0, fmt.Errorf("%w: %q", ErrUnknownBooking, bookingID)
	}
	return s, bi, nil
}

func sessionTag(i int) string { return "MS" + strconv.Itoa(i) }

// ParseSessionTag returns the position encoded in a "MS<n>" tag.
func ParseSessionTag(tag string) (int, error) {
	rest, ok := strings.CutPrefix(tag, "MS")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownSession, tag)
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownSession, tag)
	}
	return n, nil
}

// ParseBookingID splits "<tag>-T<k>" into the session tag and position k.
func ParseBookingID(id string) (string, int, error) {
	tag, rest, ok := strings.Cut(id, "-T")
	if !ok {
		return "", 0, fmt.Errorf("%w: %q", ErrUnknownBooking, id)
	}
	k, err := strconv.Atoi(rest)
	if err != nil || k < 0 {
		return "", 0, fmt.Errorf("%w: %q", ErrUnknownBooking, id)
	}
	return tag, k, nil
}

type nopView struct{}

func (nopView) RenderSession(*Session)      {}
func (nopView) AppendBooking(*Session, int) {}
func (nopView) RerenderBookings(*Session)   {}
func (nopView) RerenderSeats(*Session)      {}
