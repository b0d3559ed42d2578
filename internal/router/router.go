package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/cinema-session-booking/internal/handler" // session handlers
)

// Middlewares groups the optional middlewares wrapped around the session
// routes.  Nil entries are skipped.
type Middlewares struct {
	Cache      echo.MiddlewareFunc // serves GET /sessions from Redis
	Invalidate echo.MiddlewareFunc // purges the cache after a mutation
	RateLimit  echo.MiddlewareFunc // token bucket in front of mutations
}

// RegisterRoutes registers the health check and the session REST surface.
// Read and write routes get different middleware stacks: only GET is
// cached, only mutations are rate limited and trigger invalidation.
func RegisterRoutes(e *echo.Echo, h *handler.SessionHandler, mw Middlewares) {
	e.GET("/healthz", h.Health)

	e.GET("/sessions", h.ListSessions, compact(mw.Cache)...)
	// Not cached: cache keys are built from the route pattern, not the id.
	e.GET("/sessions/:sessionId", h.GetSession)

	writes := compact(mw.RateLimit, mw.Invalidate)
	e.POST("/sessions", h.CreateSession, writes...)
	e.POST("/sessions/:sessionId/bookings", h.AddBooking, writes...)
	e.PUT("/sessions/:sessionId/bookings/:bookingId", h.EditBooking, writes...)
	e.DELETE("/sessions/:sessionId/bookings/:bookingId", h.DeleteBooking, writes...)
}

// RegisterStatic serves the front-end assets in dir at the site root.
func RegisterStatic(e *echo.Echo, dir string) {
	if dir == "" {
		return
	}
	e.Static("/", dir)
}

func compact(mws ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(mws))
	for _, m := range mws {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}
