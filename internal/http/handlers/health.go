package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HandleHealthz returns a simple health check response. When a database is
// configured it must answer a ping.
func (h *Handlers) HandleHealthz(c *echo.Context) error {
	if h.DB != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.DB.Ping(ctx); err != nil {
			c.Logger().Warn("health check database ping failed", "error", err)
			return c.String(http.StatusServiceUnavailable, "database unavailable")
		}
	}
	return c.String(http.StatusOK, "ok")
}

func (h *Handlers) HandleRoot(c *echo.Context) error {
	return c.Redirect(http.StatusSeeOther, "/moderation")
}
