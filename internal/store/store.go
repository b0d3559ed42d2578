// Package store persists the ordered collection of sessions.  Every
// implementation follows the same contract: Read returns the whole
// collection and Write replaces it entirely.  There is no append or patch
// operation; the registry hands over a full snapshot after each mutation.
package store

import (
	"context"

	"github.com/iliyamo/cinema-session-booking/internal/model"
)

// Store is the persistence contract used by the session registry.
//
// Read returns the stored sessions in order.  A missing or unreadable
// backing resource is not an error for file-based stores: they log and
// return an empty collection so the server can still start.
//
// Write replaces everything previously stored with sessions.
type Store interface {
	Read(ctx context.Context) ([]model.Session, error)
	Write(ctx context.Context, sessions []model.Session) error
}
