package mirror

import (
	"context"
	"fmt"
)

// Prompter collects input from the user.  Prompt returns ok=false when the
// user cancelled; Confirm returns false when the user declined.
type Prompter interface {
	Prompt(message, def string) (value string, ok bool)
	Confirm(message string) bool
}

// OnAddBooking asks for a name and books it.  An empty answer does nothing.
func (m *Mirror) OnAddBooking(ctx context.Context, tag string, p Prompter) error {
	if _, err := m.Session(tag); err != nil {
		return err
	}
	name, ok := p.Prompt("Enter your surname:", "")
	if !ok || name == "" {
		return nil
	}
	return m.AddBooking(ctx, tag, name)
}

// OnEditBooking asks for a new name, pre-filled with the current one.  An
// empty or unchanged answer does nothing.
func (m *Mirror) OnEditBooking(ctx context.Context, bookingID string, p Prompter) error {
	s, bi, err := m.booking(bookingID)
	if err != nil {
		return err
	}
	old := s.Bookings[bi]
	name, ok := p.Prompt("Enter your surname:", old)
	if !ok || name == "" || name == old {
		return nil
	}
	return m.EditBooking(ctx, bookingID, name)
}

// OnDeleteBooking asks for confirmation before deleting.
func (m *Mirror) OnDeleteBooking(ctx context.Context, bookingID string, p Prompter) error {
	s, bi, err := m.booking(bookingID)
	if err != nil {
		return err
	}
	if !p.Confirm(fmt.Sprintf("Booking '%s' will be deleted. Continue?", s.Bookings[bi])) {
		return nil
	}
	return m.DeleteBooking(ctx, bookingID)
}
