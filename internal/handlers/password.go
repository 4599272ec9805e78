package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"archivemail/internal/core"
	"archivemail/internal/mailer"
	"archivemail/internal/middleware"

	"github.com/labstack/echo/v4"
)

type PasswordHandler struct {
	Cfg    *core.Config
	Mailer *mailer.AdminMailer
}

// Setup sends an admin a new password setup link.
func (h *PasswordHandler) Setup(c echo.Context) error {
	ctx := c.Request().Context()
	login := c.FormValue("login")
	if login == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Login is required")
	}

	admin, err := core.GetUserByLogin(ctx, login)
	if errors.Is(err, core.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "No such admin")
	}
	if err != nil {
		slog.Error("Failed to load admin", "login", login, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}
	if !admin.Admin() {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "User is not an admin")
	}

	msg, err := h.Mailer.SendPasswordSetup(ctx, admin)
	if err != nil {
		slog.Error("Failed to send password setup mail", "login", login, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "Could not send password setup mail")
	}

	actor, _ := c.Get(middleware.LoginKey).(string)
	core.LogAudit(ctx, "PASSWORD_SETUP_SENT", actor, c.RealIP(), map[string]interface{}{"target": login})
	return c.JSON(http.StatusAccepted, map[string]interface{}{"login": login, "to": msg.To})
}

// Redeem consumes a setup token and stores the new password. The token is
// only consumed once the password passes validation.
func (h *PasswordHandler) Redeem(c echo.Context) error {
	ctx := c.Request().Context()
	token := c.FormValue("reset_password_token")
	password := c.FormValue("password")

	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Token is required")
	}
	if password != c.FormValue("password_confirmation") {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Passwords do not match"})
	}
	if err := core.ValidatePassword(password, h.Cfg); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	id, err := core.RedeemPasswordToken(ctx, token)
	if errors.Is(err, core.ErrInvalidToken) {
		return echo.NewHTTPError(http.StatusNotFound, "Invalid or expired password token")
	}
	if err != nil {
		slog.Error("Failed to redeem password token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}

	// The account may have been deleted since the token was issued.
	admin, err := core.GetUser(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Invalid or expired password token")
	}
	if err != nil {
		slog.Error("Failed to load admin", "user_id", id, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}

	if err := core.SetPassword(ctx, id, password); err != nil {
		slog.Error("Failed to store password", "user_id", id, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}

	core.LogAudit(ctx, "PASSWORD_SET", admin.Login, c.RealIP(), nil)
	return c.JSON(http.StatusOK, map[string]string{"login": admin.Login, "next": h.Cfg.PublicURL + "/admin/login"})
}
