package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHandleMessageAppendsLines(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	c := &Consumer{LogDir: dir}

	events := []SessionEvent{
		{Type: SessionCreated, SessionIndex: 0, SessionID: "s1", MovieTitle: "Dune", Time: "18:00", SeatsAmount: 2, SeatsAvailable: 2, BookingIndex: -1, OccurredAt: "t0"},
		{Type: BookingEdited, SessionIndex: 0, SessionID: "s1", MovieTitle: "Dune", BookingIndex: 0, BookingName: "Smythe", PreviousName: "Smith", OccurredAt: "t1"},
	}
	for _, ev := range events {
		body, _ := json.Marshal(ev)
		if err := c.HandleMessage(body); err != nil {
			t.Fatalf("HandleMessage: %v", err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "booking.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), data)
	}
	if !strings.Contains(lines[0], "session.created") || !strings.Contains(lines[0], `movie="Dune"`) {
		t.Errorf("unexpected first line: %s", lines[0])
	}
	if !strings.Contains(lines[1], `previous="Smith"`) || !strings.Contains(lines[1], `name="Smythe"`) {
		t.Errorf("unexpected second line: %s", lines[1])
	}
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	c := &Consumer{LogDir: t.TempDir()}
	if err := c.HandleMessage([]byte("not json")); err == nil {
		t.Error("expected unmarshal error")
	}
	if err := c.HandleMessage([]byte(`{}`)); err == nil {
		t.Error("expected error for event without type")
	}
}
