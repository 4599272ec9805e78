package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"archivemail/internal/core"
	"archivemail/internal/middleware"

	"github.com/labstack/echo/v4"
)

const (
	loginMaxAttempts = 10
	loginWindow      = 5 * time.Minute
)

type AuthHandler struct {
	Cfg *core.Config
}

// Login checks login, password and, for admins with TOTP enrolled, the
// one-time code, then sets the session cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	login := c.FormValue("login")
	password := c.FormValue("password")
	clientIP := c.RealIP()

	if !core.CheckRateLimit(ctx, "login_ip", clientIP, loginMaxAttempts, loginWindow) {
		core.LogAudit(ctx, "LOGIN_RATE_LIMITED", login, clientIP, nil)
		return echo.NewHTTPError(http.StatusTooManyRequests, "Too many attempts from this IP.")
	}

	user, err := core.GetUserByLogin(ctx, login)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		slog.Error("Failed to load user for login", "login", login, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}
	if err != nil || !user.Admin() || !core.CheckPasswordHash(password, user.Password) {
		core.LoginFailedTotal.Inc()
		core.LogAudit(ctx, "LOGIN_FAILED", login, clientIP, nil)
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	if !core.ValidateTOTP(c.FormValue("otp"), user.TOTPSecret) {
		core.LoginFailedTotal.Inc()
		core.LogAudit(ctx, "2FA_FAILED", login, clientIP, nil)
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid one-time code")
	}

	validity := time.Duration(h.Cfg.SessionValidityMinutes) * time.Minute
	token, err := core.IssueSession(ctx, user, clientIP, validity)
	if err != nil {
		slog.Error("Failed to store session", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}
	sealed, err := core.SealToken(token, h.Cfg.ServerSecret)
	if err != nil {
		slog.Error("Session token encryption failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    sealed,
		Path:     "/admin",
		Domain:   h.Cfg.CookieDomain,
		Expires:  time.Now().Add(validity),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})

	core.ResetRateLimit(ctx, "login_ip", clientIP)
	core.LoginSuccessTotal.Inc()
	core.LogAudit(ctx, "LOGIN_SUCCESS", login, clientIP, nil)
	return c.JSON(http.StatusOK, map[string]interface{}{"id": user.ID, "login": user.Login})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	if token, ok := c.Get(middleware.TokenKey).(string); ok {
		if err := core.DeleteSession(ctx, token); err != nil {
			slog.Error("Failed to delete session", "error", err)
		}
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/admin",
		Domain:   h.Cfg.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
	})

	login, _ := c.Get(middleware.LoginKey).(string)
	core.LogAudit(ctx, "LOGOUT", login, c.RealIP(), nil)
	return c.NoContent(http.StatusNoContent)
}
