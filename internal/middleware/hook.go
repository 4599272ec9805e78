package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"archivemail/internal/core"

	"github.com/labstack/echo/v4"
)

// HookTokenHeader carries the shared secret on archive hook calls.
const HookTokenHeader = "X-Hook-Token"

func HookAuth(cfg *core.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.HookToken == "" {
				return echo.NewHTTPError(http.StatusForbidden, "Hooks are disabled")
			}
			got := c.Request().Header.Get(HookTokenHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(cfg.HookToken)) != 1 {
				slog.Warn("Rejected hook call", "ip", c.RealIP(), "path", c.Path())
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid hook token")
			}
			return next(c)
		}
	}
}
