package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/iliyamo/cinema-session-booking/internal/model"
)

// FileStore keeps all sessions in a single JSON array file.
type FileStore struct {
	path   string
	atomic bool
	log    *slog.Logger
}

// FileOption customises a FileStore.
type FileOption func(*FileStore)

// WithAtomicWrite makes Write go through a temporary file in the same
// directory followed by a rename, so readers never see a half-written file.
func WithAtomicWrite(on bool) FileOption {
	return func(s *FileStore) { s.atomic = on }
}

// WithLogger sets the logger used for soft read failures.
func WithLogger(l *slog.Logger) FileOption {
	return func(s *FileStore) { s.log = l }
}

// NewFileStore returns a store backed by the JSON file at path.  The file
// and its parent directory are created on the first Write.
func NewFileStore(path string, opts ...FileOption) *FileStore {
	s := &FileStore{path: path, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

// Read loads the sessions from disk.  A missing file yields an empty
// collection silently; a malformed file yields an empty collection and a
// warning.  The returned error is always nil.
func (s *FileStore) Read(_ context.Context) ([]model.Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn("session file unreadable, starting empty", "path", s.path, "err", err)
		}
		return []model.Session{}, nil
	}
	var sessions []model.Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		s.log.Warn("session file malformed, starting empty", "path", s.path, "err", err)
		return []model.Session{}, nil
	}
	if sessions == nil {
		sessions = []model.Session{}
	}
	return sessions, nil
}

// Write serialises the full collection and replaces the file content.
func (s *FileStore) Write(_ context.Context, sessions []model.Session) error {
	if sessions == nil {
		sessions = []model.Session{}
	}
	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sessions: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	if !s.atomic {
		if err := os.WriteFile(s.path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", s.path, err)
		}
		return nil
	}
	return s.writeAtomic(data)
}

func (s *FileStore) writeAtomic(data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }() // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("rename into %s: %w", s.path, err)
	}
	return nil
}
