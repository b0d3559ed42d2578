package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"gopkg.in/yaml.v3"

	"github.com/iliyamo/cinema-session-booking/internal/handler"
	"github.com/iliyamo/cinema-session-booking/internal/mirror"
	"github.com/iliyamo/cinema-session-booking/internal/model"
	"github.com/iliyamo/cinema-session-booking/internal/registry"
	"github.com/iliyamo/cinema-session-booking/internal/router"
	"github.com/iliyamo/cinema-session-booking/internal/store"
)

func newServer(t *testing.T, initial ...model.Session) (*httptest.Server, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore(initial...)
	reg, err := registry.New(context.Background(), st, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("registry.New: %v", err)
	}
	e := echo.New()
	router.RegisterRoutes(e, handler.NewSessionHandler(reg, nil), router.Middlewares{})
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv, st
}

// run executes bookctl with input fed to the prompts.
func run(t *testing.T, srv *httptest.Server, input string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(strings.NewReader(input))
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--server", srv.URL}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestBookingLifecycle(t *testing.T) {
	srv, st := newServer(t)

	out, err := run(t, srv, "", "session", "add", "--title", "Dune", "--time", "18:00", "--seats", "2")
	if err != nil || !strings.Contains(out, "created session MS0") {
		t.Fatalf("session add: %q, %v", out, err)
	}
	if _, err := run(t, srv, "", "booking", "add", "--session", "MS0", "--name", "Smith"); err != nil {
		t.Fatalf("booking add: %v", err)
	}
	out, err = run(t, srv, "Lee\n", "booking", "add", "--session", "MS0")
	if err != nil {
		t.Fatalf("prompted booking add: %v", err)
	}
	if !strings.Contains(out, "Enter your surname:") || !strings.Contains(out, "Lee") {
		t.Errorf("prompted add output = %q", out)
	}
	if _, err := run(t, srv, "", "booking", "edit", "--booking", "MS0-T0", "--name", "Jones"); err != nil {
		t.Fatalf("booking edit: %v", err)
	}
	if _, err := run(t, srv, "", "booking", "delete", "--booking", "MS0-T1", "--yes"); err != nil {
		t.Fatalf("booking delete: %v", err)
	}

	got := st.Snapshot()
	if len(got) != 1 || len(got[0].Bookings) != 1 || got[0].Bookings[0] != "Jones" {
		t.Errorf("stored sessions = %+v", got)
	}
}

func TestDeleteDeclinedLeavesBooking(t *testing.T) {
	srv, st := newServer(t, model.Session{MovieTitle: "Dune", SeatsAmount: 3, Bookings: []string{"Smith"}})

	out, err := run(t, srv, "n\n", "booking", "delete", "--booking", "MS0-T0")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Booking 'Smith' will be deleted. Continue?") {
		t.Errorf("confirmation not asked: %q", out)
	}
	if st.Writes() != 0 {
		t.Errorf("declined delete wrote %d times", st.Writes())
	}

	if _, err := run(t, srv, "y\n", "booking", "delete", "--booking", "MS0-T0"); err != nil {
		t.Fatal(err)
	}
	if got := st.Snapshot(); len(got[0].Bookings) != 0 {
		t.Errorf("bookings after confirmed delete = %v", got[0].Bookings)
	}
}

func TestEditKeepsNameOnEmptyAnswer(t *testing.T) {
	srv, st := newServer(t, model.Session{MovieTitle: "Dune", SeatsAmount: 3, Bookings: []string{"Smith"}})
	if _, err := run(t, srv, "\n", "booking", "edit", "--booking", "MS0-T0"); err != nil {
		t.Fatal(err)
	}
	if st.Writes() != 0 {
		t.Errorf("unchanged edit wrote %d times", st.Writes())
	}
}

func TestUnknownTargets(t *testing.T) {
	srv, _ := newServer(t, model.Session{MovieTitle: "Dune", SeatsAmount: 3})

	_, err := run(t, srv, "", "booking", "add", "--session", "MS7", "--name", "Smith")
	if !errors.Is(err, mirror.ErrUnknownSession) {
		t.Errorf("add to MS7: err = %v", err)
	}
	_, err = run(t, srv, "", "booking", "edit", "--booking", "MS0-T0", "--name", "Lee")
	if !errors.Is(err, mirror.ErrUnknownBooking) {
		t.Errorf("edit MS0-T0: err = %v", err)
	}
}

func TestListFormats(t *testing.T) {
	srv, _ := newServer(t, model.Session{MovieTitle: "Dune", Time: "18:00", SeatsAmount: 1, Bookings: []string{"Smith"}})

	out, err := run(t, srv, "", "list", "-o", "json")
	if err != nil {
		t.Fatal(err)
	}
	var fromJSON []sessionOut
	if err := json.Unmarshal([]byte(out), &fromJSON); err != nil {
		t.Fatalf("json output: %v\n%s", err, out)
	}
	if len(fromJSON) != 1 || fromJSON[0].Tag != "MS0" || fromJSON[0].SeatsAvailable != 0 || fromJSON[0].Bookings[0].ID != "MS0-T0" {
		t.Errorf("json = %+v", fromJSON)
	}

	out, err = run(t, srv, "", "list", "-o", "yaml")
	if err != nil {
		t.Fatal(err)
	}
	var fromYAML []sessionOut
	if err := yaml.Unmarshal([]byte(out), &fromYAML); err != nil {
		t.Fatalf("yaml output: %v\n%s", err, out)
	}
	if len(fromYAML) != 1 || fromYAML[0].MovieTitle != "Dune" {
		t.Errorf("yaml = %+v", fromYAML)
	}

	out, err = run(t, srv, "", "list", "-o", "html")
	if err != nil || !strings.Contains(out, `class="session-booking-text">Smith<`) {
		t.Errorf("html = %q, %v", out, err)
	}

	out, err = run(t, srv, "", "list")
	if err != nil || !strings.Contains(out, "Seats: 0 (full)") {
		t.Errorf("table = %q, %v", out, err)
	}

	if _, err := run(t, srv, "", "list", "-o", "xml"); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestSessionAddRejectsBadSeats(t *testing.T) {
	srv, st := newServer(t)
	if _, err := run(t, srv, "", "session", "add", "--title", "Dune", "--time", "18:00", "--seats", "many"); err == nil {
		t.Error("non-numeric seats should fail")
	}
	if st.Writes() != 0 {
		t.Error("rejected session was written")
	}
}
