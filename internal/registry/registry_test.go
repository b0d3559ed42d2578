package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"github.com/iliyamo/cinema-session-booking/internal/model"
	"github.com/iliyamo/cinema-session-booking/internal/store"
)

func newTestRegistry(t *testing.T, st store.Store) *Registry {
	t.Helper()
	n := 0
	r, err := New(context.Background(), st, slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestCreateSessionKeepsOrder(t *testing.T) {
	st := store.NewMemoryStore()
	r := newTestRegistry(t, st)
	ctx := context.Background()

	titles := []string{"Dune", "Alien", "Heat", "Ran"}
	for i, title := range titles {
		ch, err := r.CreateSession(ctx, title, "18:00", 10)
		if err != nil {
			t.Fatalf("CreateSession: %v", err)
		}
		if ch.SessionIndex != i {
			t.Errorf("index of %s = %d, want %d", title, ch.SessionIndex, i)
		}
	}
	list := r.List()
	for i, s := range list {
		if s.MovieTitle != titles[i] {
			t.Errorf("List()[%d] = %s, want %s", i, s.MovieTitle, titles[i])
		}
		if s.Bookings == nil || len(s.Bookings) != 0 {
			t.Errorf("new session should have empty bookings, got %v", s.Bookings)
		}
	}
	if st.Writes() != len(titles) {
		t.Errorf("writes = %d, want %d", st.Writes(), len(titles))
	}
}

func TestScenario(t *testing.T) {
	st := store.NewMemoryStore()
	r := newTestRegistry(t, st)
	ctx := context.Background()

	if _, err := r.CreateSession(ctx, "Dune", "18:00", 2); err != nil {
		t.Fatal(err)
	}
	s, _ := r.Get(0)
	if r.Len() != 1 || len(s.Bookings) != 0 || s.SeatsAvailable() != 2 {
		t.Fatalf("after create: %+v", s)
	}

	if _, err := r.AddBooking(ctx, 0, "Smith"); err != nil {
		t.Fatal(err)
	}
	s, _ = r.Get(0)
	if !reflect.DeepEqual(s.Bookings, []string{"Smith"}) || s.SeatsAvailable() != 1 {
		t.Fatalf("after Smith: %+v", s)
	}

	if _, err := r.AddBooking(ctx, 0, "Lee"); err != nil {
		t.Fatal(err)
	}
	s, _ = r.Get(0)
	if s.SeatsAvailable() != 0 {
		t.Fatalf("after Lee: available = %d", s.SeatsAvailable())
	}

	writes := st.Writes()
	if _, err := r.AddBooking(ctx, 5, "Kim"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("AddBooking(5) err = %v, want not found", err)
	}
	s, _ = r.Get(0)
	if !reflect.DeepEqual(s.Bookings, []string{"Smith", "Lee"}) || st.Writes() != writes {
		t.Fatalf("failed add must not mutate or write: %+v, writes %d", s, st.Writes())
	}

	ch, err := r.EditBooking(ctx, 0, 0, "Smythe")
	if err != nil {
		t.Fatal(err)
	}
	if ch.PreviousName != "Smith" {
		t.Errorf("PreviousName = %q, want Smith", ch.PreviousName)
	}
	s, _ = r.Get(0)
	if !reflect.DeepEqual(s.Bookings, []string{"Smythe", "Lee"}) {
		t.Fatalf("after edit: %v", s.Bookings)
	}

	ch, err = r.DeleteBooking(ctx, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if ch.BookingName != "Smythe" {
		t.Errorf("deleted name = %q, want Smythe", ch.BookingName)
	}
	s, _ = r.Get(0)
	if !reflect.DeepEqual(s.Bookings, []string{"Lee"}) || s.SeatsAvailable() != 1 {
		t.Fatalf("after delete: %+v", s)
	}
	if snap := st.Snapshot(); !reflect.DeepEqual(snap, r.List()) {
		t.Errorf("store snapshot diverged from registry\n got: %+v\nwant: %+v", snap, r.List())
	}
}

func TestAddBookingPersistsGrowth(t *testing.T) {
	st := store.NewMemoryStore(model.Session{ID: "x", MovieTitle: "Heat", SeatsAmount: 3, Bookings: []string{"A"}})
	r := newTestRegistry(t, st)
	if _, err := r.AddBooking(context.Background(), 0, "B"); err != nil {
		t.Fatal(err)
	}
	snap := st.Snapshot()
	if len(snap[0].Bookings) != 2 || snap[0].Bookings[1] != "B" {
		t.Errorf("persisted bookings = %v", snap[0].Bookings)
	}
}

func TestOutOfRangeIndices(t *testing.T) {
	st := store.NewMemoryStore(model.Session{ID: "x", MovieTitle: "Heat", SeatsAmount: 3, Bookings: []string{"A", "B"}})
	r := newTestRegistry(t, st)
	ctx := context.Background()

	tests := []struct {
		name string
		op   func() error
		want error
	}{
		{"add negative session", func() error { _, err := r.AddBooking(ctx, -1, "x"); return err }, ErrSessionNotFound},
		{"add past end", func() error { _, err := r.AddBooking(ctx, 1, "x"); return err }, ErrSessionNotFound},
		{"edit bad session", func() error { _, err := r.EditBooking(ctx, 3, 0, "x"); return err }, ErrSessionNotFound},
		{"edit bad booking", func() error { _, err := r.EditBooking(ctx, 0, 2, "x"); return err }, ErrBookingNotFound},
		{"edit negative booking", func() error { _, err := r.EditBooking(ctx, 0, -1, "x"); return err }, ErrBookingNotFound},
		{"delete bad session", func() error { _, err := r.DeleteBooking(ctx, 9, 0); return err }, ErrSessionNotFound},
		{"delete bad booking", func() error { _, err := r.DeleteBooking(ctx, 0, 5); return err }, ErrBookingNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op()
			if !errors.Is(err, tt.want) || !errors.Is(err, ErrNotFound) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
	if st.Writes() != 0 {
		t.Errorf("writes = %d, want 0", st.Writes())
	}
	if got := r.List()[0].Bookings; !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("bookings changed: %v", got)
	}
}

func TestDeleteShiftsLaterBookings(t *testing.T) {
	st := store.NewMemoryStore(model.Session{ID: "x", SeatsAmount: 9, Bookings: []string{"a", "b", "c", "d", "e"}})
	r := newTestRegistry(t, st)
	if _, err := r.DeleteBooking(context.Background(), 0, 2); err != nil {
		t.Fatal(err)
	}
	got := r.List()[0].Bookings
	if want := []string{"a", "b", "d", "e"}; !reflect.DeepEqual(got, want) {
		t.Errorf("bookings = %v, want %v", got, want)
	}
}

func TestPersistFailureRollsBack(t *testing.T) {
	st := store.NewMemoryStore(model.Session{ID: "x", SeatsAmount: 9, Bookings: []string{"a", "b"}})
	r := newTestRegistry(t, st)
	st.FailWrites = errors.New("disk full")
	ctx := context.Background()

	if _, err := r.CreateSession(ctx, "Heat", "now", 1); !errors.Is(err, ErrPersist) {
		t.Errorf("create err = %v", err)
	}
	if _, err := r.AddBooking(ctx, 0, "c"); !errors.Is(err, ErrPersist) {
		t.Errorf("add err = %v", err)
	}
	if _, err := r.EditBooking(ctx, 0, 0, "z"); !errors.Is(err, ErrPersist) {
		t.Errorf("edit err = %v", err)
	}
	if _, err := r.DeleteBooking(ctx, 0, 0); !errors.Is(err, ErrPersist) {
		t.Errorf("delete err = %v", err)
	}

	list := r.List()
	if len(list) != 1 || !reflect.DeepEqual(list[0].Bookings, []string{"a", "b"}) {
		t.Errorf("state after failed writes = %+v", list)
	}
}

func TestLoadAssignsMissingIDs(t *testing.T) {
	st := store.NewMemoryStore(
		model.Session{MovieTitle: "legacy"},
		model.Session{ID: "keep", MovieTitle: "new"},
	)
	r := newTestRegistry(t, st)
	list := r.List()
	if list[0].ID != "id-1" || list[1].ID != "keep" {
		t.Errorf("ids = %q, %q", list[0].ID, list[1].ID)
	}
}

func TestRoundTripThroughFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	fs := store.NewFileStore(path)
	r := newTestRegistry(t, fs)
	ctx := context.Background()
	_, _ = r.CreateSession(ctx, "Dune", "18:00", 2)
	_, _ = r.CreateSession(ctx, "Alien", "21:00", 5)
	_, _ = r.AddBooking(ctx, 1, "Ripley")
	_, _ = r.AddBooking(ctx, 1, "Dallas")

	reloaded := newTestRegistry(t, store.NewFileStore(path))
	if !reflect.DeepEqual(reloaded.List(), r.List()) {
		t.Errorf("reloaded registry differs\n got: %+v\nwant: %+v", reloaded.List(), r.List())
	}
}

func TestConcurrentAddsAreSerialised(t *testing.T) {
	st := store.NewMemoryStore(model.Session{ID: "x", SeatsAmount: 100, Bookings: []string{}})
	r := newTestRegistry(t, st)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := r.AddBooking(ctx, 0, fmt.Sprintf("guest-%d", i)); err != nil {
				t.Errorf("AddBooking: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if got := len(r.List()[0].Bookings); got != n {
		t.Errorf("bookings = %d, want %d", got, n)
	}
	if got := len(st.Snapshot()[0].Bookings); got != n {
		t.Errorf("persisted bookings = %d, want %d", got, n)
	}
}

func TestListReturnsCopy(t *testing.T) {
	st := store.NewMemoryStore(model.Session{ID: "x", Bookings: []string{"a"}})
	r := newTestRegistry(t, st)
	list := r.List()
	list[0].Bookings[0] = "mutated"
	if r.List()[0].Bookings[0] != "a" {
		t.Error("List must return a deep copy")
	}
}
