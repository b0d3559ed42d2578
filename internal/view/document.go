// Package view turns mirror state into UI fragments.  A Document holds
// one fragment per session and is patched through the mirror.View calls;
// it can then be written out as HTML or drawn for a terminal.
package view

import (
	"fmt"

	"github.com/iliyamo/cinema-session-booking/internal/mirror"
)

// BookingItem is one row of a session's booking list.
type BookingItem struct {
	ID   string
	Name string
}

// SessionFragment is everything drawn for one session.
type SessionFragment struct {
	ID        string
	Header    string
	TimeText  string
	SeatsText string
	Bookings  []BookingItem
	AddHidden bool // no seats left: the add button is not shown
}

func headerText(s *mirror.Session) string {
	return s.MovieTitle
}

func timeText(s *mirror.Session) string {
	return "Time: " + s.Time
}

func seatsText(s *mirror.Session) string {
	return fmt.Sprintf("Seats: %d", s.SeatsAvailable())
}

// BuildBookings renders the full booking list of s.  Ids are recomputed
// from positions every time.
func BuildBookings(s *mirror.Session) []BookingItem {
	items := make([]BookingItem, len(s.Bookings))
	for i, name := range s.Bookings {
		items[i] = BookingItem{ID: s.BookingID(i), Name: name}
	}
	return items
}

// BuildSession renders a fresh fragment for s with an empty booking list,
// the way a session is first drawn before its bookings.
func BuildSession(s *mirror.Session) SessionFragment {
	return SessionFragment{
		ID:        s.Tag,
		Header:    headerText(s),
		TimeText:  timeText(s),
		SeatsText: seatsText(s),
		Bookings:  []BookingItem{},
		AddHidden: s.SeatsAvailable() <= 0,
	}
}

// Document is the rendered page.  It implements mirror.View.
type Document struct {
	order     []string
	fragments map[string]*SessionFragment
}

var _ mirror.View = (*Document)(nil)

// NewDocument returns an empty page.
func NewDocument() *Document {
	return &Document{fragments: map[string]*SessionFragment{}}
}

// Fragments returns copies of the session fragments in page order.
func (d *Document) Fragments() []SessionFragment {
	out := make([]SessionFragment, 0, len(d.order))
	for _, id := range d.order {
		f := *d.fragments[id]
		f.Bookings = append([]BookingItem(nil), f.Bookings...)
		out = append(out, f)
	}
	return out
}

// Fragment returns the fragment for a session tag.
func (d *Document) Fragment(id string) (SessionFragment, bool) {
	f, ok := d.fragments[id]
	if !ok {
		return SessionFragment{}, false
	}
	return *f, true
}

// RenderSession adds s at the end of the page, or redraws it in place
// when a fragment with the same tag already exists.
func (d *Document) RenderSession(s *mirror.Session) {
	f := BuildSession(s)
	if _, ok := d.fragments[s.Tag]; !ok {
		d.order = append(d.order, s.Tag)
	}
	d.fragments[s.Tag] = &f
}

// AppendBooking adds the booking at index i to the end of the list.
func (d *Document) AppendBooking(s *mirror.Session, i int) {
	f, ok := d.fragments[s.Tag]
	if !ok || i < 0 || i >= len(s.Bookings) {
		return
	}
	f.Bookings = append(f.Bookings, BookingItem{ID: s.BookingID(i), Name: s.Bookings[i]})
}

// RerenderBookings throws the list away and rebuilds it from s.
func (d *Document) RerenderBookings(s *mirror.Session) {
	if f, ok := d.fragments[s.Tag]; ok {
		f.Bookings = BuildBookings(s)
	}
}

// RerenderSeats recomputes the counter and the add-button visibility.
func (d *Document) RerenderSeats(s *mirror.Session) {
	if f, ok := d.fragments[s.Tag]; ok {
		f.SeatsText = seatsText(s)
		f.AddHidden = s.SeatsAvailable() <= 0
	}
}
