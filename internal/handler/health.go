package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

var startedAt = time.Now()

// Health reports liveness. Used by load balancers and the web client's
// connectivity probe; intentionally unauthenticated.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(startedAt).Seconds(),
	})
}
