package handler

import (
	"errors"   // errors.Is maps registry sentinels to status codes
	"fmt"      // fmt builds the info messages
	"net/http" // HTTP status codes
	"strconv"  // parsing positional path parameters

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-session-booking/internal/model"
	"github.com/iliyamo/cinema-session-booking/internal/queue"
	"github.com/iliyamo/cinema-session-booking/internal/registry"
	"github.com/iliyamo/cinema-session-booking/internal/service"
)

// SessionHandler exposes the session registry over REST.  Sessions and
// bookings are addressed by their position, so a path such as
// /sessions/0/bookings/2 means "third booking of the first session".
// Every response body is JSON; success and error bodies alike carry a
// human readable "info" field.
type SessionHandler struct {
	Registry *registry.Registry // authoritative session collection
	Events   *service.Notifier  // optional domain event publisher
}

// NewSessionHandler constructs a SessionHandler and panics if the registry is nil.
func NewSessionHandler(reg *registry.Registry, events *service.Notifier) *SessionHandler {
	if reg == nil {
		panic("nil registry passed to NewSessionHandler")
	}
	return &SessionHandler{Registry: reg, Events: events}
}

func info(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"info": msg})
}

// ListSessions handles GET /sessions and returns every session in order.
func (h *SessionHandler) ListSessions(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Registry.List())
}

// GetSession handles GET /sessions/:sessionId and returns one session.
func (h *SessionHandler) GetSession(c echo.Context) error {
	rawSession := c.Param("sessionId")
	notFound := fmt.Sprintf("There is no session with id = %s", rawSession)
	si, ok := parseIndex(rawSession)
	if !ok {
		return info(c, http.StatusNotFound, notFound)
	}
	s, err := h.Registry.Get(si)
	if err != nil {
		return h.fail(c, err, notFound)
	}
	return c.JSON(http.StatusOK, s)
}

// CreateSession handles POST /sessions.  The new session is appended at
// the end; title, time and seat count are not validated.
func (h *SessionHandler) CreateSession(c echo.Context) error {
	var body struct {
		MovieTitle  string          `json:"movieTitle"`
		Time        string          `json:"time"`
		SeatsAmount model.SeatCount `json:"seatsAmount"`
	}
	if err := c.Bind(&body); err != nil {
		return info(c, http.StatusBadRequest, "invalid request body")
	}
	ch, err := h.Registry.CreateSession(c.Request().Context(), body.MovieTitle, body.Time, body.SeatsAmount)
	if err != nil {
		return h.fail(c, err, "")
	}
	h.Events.Notify(queue.SessionCreated, ch)
	return info(c, http.StatusOK, fmt.Sprintf("Session for movie '%s' was successfully created", body.MovieTitle))
}

// AddBooking handles POST /sessions/:sessionId/bookings.  The booking is
// appended even when the session has no seats left.
func (h *SessionHandler) AddBooking(c echo.Context) error {
	rawSession := c.Param("sessionId")
	notFound := fmt.Sprintf("There is no session with id = %s", rawSession)
	si, ok := parseIndex(rawSession)
	if !ok {
		return info(c, http.StatusNotFound, notFound)
	}
	var body struct {
		BookingName string `json:"bookingName"`
	}
	if err := c.Bind(&body); err != nil {
		return info(c, http.StatusBadRequest, "invalid request body")
	}
	ch, err := h.Registry.AddBooking(c.Request().Context(), si, body.BookingName)
	if err != nil {
		return h.fail(c, err, notFound)
	}
	h.Events.Notify(queue.BookingAdded, ch)
	return info(c, http.StatusOK, fmt.Sprintf("Booking for '%s' was successfully added in session '%s'",
		body.BookingName, ch.Session.MovieTitle))
}

// EditBooking handles PUT /sessions/:sessionId/bookings/:bookingId and
// replaces the booking name in place.  The body field keeps the historical
// spelling "newbookingName".
func (h *SessionHandler) EditBooking(c echo.Context) error {
	si, bi, notFound, ok := bookingPath(c)
	if !ok {
		return info(c, http.StatusNotFound, notFound)
	}
	var body struct {
		NewBookingName string `json:"newbookingName"`
	}
	if err := c.Bind(&body); err != nil {
		return info(c, http.StatusBadRequest, "invalid request body")
	}
	ch, err := h.Registry.EditBooking(c.Request().Context(), si, bi, body.NewBookingName)
	if err != nil {
		return h.fail(c, err, notFound)
	}
	h.Events.Notify(queue.BookingEdited, ch)
	return info(c, http.StatusOK, fmt.Sprintf("booking №%d was successfully edited in session '%s'",
		bi, ch.Session.MovieTitle))
}

// DeleteBooking handles DELETE /sessions/:sessionId/bookings/:bookingId.
// Later bookings of the session move down one position.
func (h *SessionHandler) DeleteBooking(c echo.Context) error {
	si, bi, notFound, ok := bookingPath(c)
	if !ok {
		return info(c, http.StatusNotFound, notFound)
	}
	ch, err := h.Registry.DeleteBooking(c.Request().Context(), si, bi)
	if err != nil {
		return h.fail(c, err, notFound)
	}
	h.Events.Notify(queue.BookingDeleted, ch)
	return info(c, http.StatusOK, fmt.Sprintf("booking '%s' was successfully deleted from session '%s'",
		ch.BookingName, ch.Session.MovieTitle))
}

// fail maps registry errors onto responses.
func (h *SessionHandler) fail(c echo.Context, err error, notFound string) error {
	switch {
	case errors.Is(err, registry.ErrNotFound):
		return info(c, http.StatusNotFound, notFound)
	case errors.Is(err, registry.ErrPersist):
		c.Logger().Errorf("persist failed: %v", err)
		return info(c, http.StatusInternalServerError, "sessions could not be saved")
	default:
		c.Logger().Errorf("unexpected registry error: %v", err)
		return info(c, http.StatusInternalServerError, "internal error")
	}
}

// bookingPath parses :sessionId and :bookingId.  ok is false when either
// is not an integer; such ids can never be in range.
func bookingPath(c echo.Context) (si, bi int, notFound string, ok bool) {
	rawSession, rawBooking := c.Param("sessionId"), c.Param("bookingId")
	notFound = fmt.Sprintf("There is no session with id = %s or booking with id = %s", rawSession, rawBooking)
	si, ok1 := parseIndex(rawSession)
	bi, ok2 := parseIndex(rawBooking)
	return si, bi, notFound, ok1 && ok2
}

func parseIndex(raw string) (int, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
