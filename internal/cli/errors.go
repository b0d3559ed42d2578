package cli

import (
	"errors"

	"github.com/iliyamo/cinema-session-booking/internal/client"
	"github.com/iliyamo/cinema-session-booking/internal/mirror"
)

// Explain turns an error from a bookctl run into the line shown to the
// user.  Positions come from the list loaded at the start of the run, so
// a 404 from the server means that list went stale in between.
func Explain(err error) string {
	switch {
	case err == nil:
		return ""
	case client.IsNotFound(err):
		return err.Error() + " (the session list changed on the server; run `bookctl list` and retry)"
	case errors.Is(err, mirror.ErrUnknownSession), errors.Is(err, mirror.ErrUnknownBooking):
		return err.Error() + " (see `bookctl list` for valid ids)"
	default:
		return err.Error()
	}
}
