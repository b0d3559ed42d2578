package store

import (
	"context"
	"sync"

	"github.com/iliyamo/cinema-session-booking/internal/model"
)

// MemoryStore keeps the last written snapshot in memory.  It is used with
// STORE_DRIVER=memory and in tests that need to observe writes.
type MemoryStore struct {
	mu       sync.Mutex
	sessions []model.Session
	writes   int
	// FailWrites makes Write return this error instead of storing.
	FailWrites error
}

// NewMemoryStore returns a store pre-populated with a copy of initial.
func NewMemoryStore(initial ...model.Session) *MemoryStore {
	return &MemoryStore{sessions: model.CloneAll(initial)}
}

func (m *MemoryStore) Read(_ context.Context) ([]model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return model.CloneAll(m.sessions), nil
}

func (m *MemoryStore) Write(_ context.Context, sessions []model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.sessions = model.CloneAll(sessions)
	m.writes++
	return nil
}

// Writes reports how many successful writes happened.
func (m *MemoryStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Snapshot returns a copy of the last written collection.
func (m *MemoryStore) Snapshot() []model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return model.CloneAll(m.sessions)
}
