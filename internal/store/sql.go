package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/cinema-session-booking/internal/model"
)

// SQLStore keeps sessions and their bookings in two MySQL tables.  Order is
// stored explicitly in position columns because the REST API addresses
// sessions and bookings by index.  Write replaces both tables inside one
// transaction, which gives the all-or-nothing snapshot the file store only
// approximates.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore wraps an open connection pool.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

const (
	qCreateSessions = `CREATE TABLE IF NOT EXISTS sessions (
		position     INT          NOT NULL PRIMARY KEY,
		id           VARCHAR(36)  NOT NULL,
		movie_title  TEXT         NOT NULL,
		time_label   VARCHAR(255) NOT NULL,
		seats_amount INT          NOT NULL
	)`
	qCreateBookings = `CREATE TABLE IF NOT EXISTS session_bookings (
		session_position INT  NOT NULL,
		position         INT  NOT NULL,
		name             TEXT NOT NULL,
		PRIMARY KEY (session_position, position)
	)`
)

// EnsureSchema creates the tables when they do not exist yet.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	for _, q := range []string{qCreateSessions, qCreateBookings} {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Read returns all sessions ordered by position with their bookings.
func (s *SQLStore) Read(ctx context.Context) ([]model.Session, error) {
	const qSessions = `SELECT id, movie_title, time_label, seats_amount
	                   FROM sessions ORDER BY position`
	rows, err := s.db.QueryContext(ctx, qSessions)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	out := []model.Session{}
	for rows.Next() {
		var sess model.Session
		var seats int
		if err := rows.Scan(&sess.ID, &sess.MovieTitle, &sess.Time, &seats); err != nil {
			return nil, err
		}
		sess.SeatsAmount = model.SeatCount(seats)
		sess.Bookings = []string{}
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const qBookings = `SELECT session_position, name
	                   FROM session_bookings ORDER BY session_position, position`
	brows, err := s.db.QueryContext(ctx, qBookings)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer brows.Close()
	for brows.Next() {
		var pos int
		var name string
		if err := brows.Scan(&pos, &name); err != nil {
			return nil, err
		}
		if pos < 0 || pos >= len(out) {
			continue // orphaned row; the next Write drops it
		}
		out[pos].Bookings = append(out[pos].Bookings, name)
	}
	if err := brows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Write replaces all rows with the given snapshot in one transaction.
func (s *SQLStore) Write(ctx context.Context, sessions []model.Session) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM session_bookings`); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return err
	}

	insSession, err := tx.PrepareContext(ctx,
		`INSERT INTO sessions (position, id, movie_title, time_label, seats_amount) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer insSession.Close()
	insBooking, err := tx.PrepareContext(ctx,
		`INSERT INTO session_bookings (session_position, position, name) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer insBooking.Close()

	for i, sess := range sessions {
		if _, err = insSession.ExecContext(ctx, i, sess.ID, sess.MovieTitle, sess.Time, int(sess.SeatsAmount)); err != nil {
			return fmt.Errorf("insert session %d: %w", i, err)
		}
		for k, name := range sess.Bookings {
			if _, err = insBooking.ExecContext(ctx, i, k, name); err != nil {
				return fmt.Errorf("insert booking %d/%d: %w", i, k, err)
			}
		}
	}
	return nil
}
