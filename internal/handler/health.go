package handler // declare the package name; contains HTTP handlers

import (
	"net/http" // net/http provides status codes and response helpers

	"github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Health is a health‑check endpoint used by load balancers and monitoring
// systems.  It reports "ok" together with the number of sessions held in
// memory, which also proves the registry finished loading.
func (h *SessionHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "sessions": h.Registry.Len()})
}
