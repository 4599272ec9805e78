package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"archivemail/internal/core"

	"github.com/labstack/echo/v4"
)

// SessionCookie holds the sealed admin session token.
const SessionCookie = "archivemail_session"

// Context keys set by AuthMiddleware.
const (
	AdminIDKey = "admin_id"
	LoginKey   = "login"
	TokenKey   = "session_token"
)

func AuthMiddleware(cfg *core.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Login required")
			}

			token, err := core.OpenToken(cookie.Value, cfg.ServerSecret)
			if err != nil {
				slog.Warn("Failed to open session cookie", "ip", c.RealIP(), "error", err)
				return echo.NewHTTPError(http.StatusUnauthorized, "Login required")
			}

			ctx := c.Request().Context()
			session, err := core.GetSession(ctx, token)
			if errors.Is(err, core.ErrNotFound) {
				return echo.NewHTTPError(http.StatusUnauthorized, "Session expired")
			}
			if err != nil {
				slog.Error("Redis error in auth middleware", "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
			}

			c.Set(AdminIDKey, session.UserID)
			c.Set(LoginKey, session.Login)
			c.Set(TokenKey, token)
			return next(c)
		}
	}
}

// AdminMiddleware rejects sessions whose user is gone or no longer an admin.
func AdminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := c.Get(AdminIDKey).(int64)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Login required")
		}

		user, err := core.GetUser(c.Request().Context(), id)
		if errors.Is(err, core.ErrNotFound) {
			return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
		}
		if err != nil {
			slog.Error("Failed to fetch user in admin middleware", "user_id", id, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
		}

		if !user.Admin() {
			slog.Warn("Unauthorized admin access attempt", "login", user.Login, "ip", c.RealIP())
			return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
		}
		return next(c)
	}
}
