package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"archivemail/internal/core"
	"archivemail/internal/mailer"
	"archivemail/internal/middleware"

	"github.com/labstack/echo/v4"
)

type AdminHandler struct {
	Cfg    *core.Config
	Mailer *mailer.AdminMailer
}

// CreateAdmin adds an admin account and mails it a password setup link.
func (h *AdminHandler) CreateAdmin(c echo.Context) error {
	ctx := c.Request().Context()
	login := c.FormValue("login")
	email := c.FormValue("email")
	if login == "" || email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Login and email are required")
	}

	admin, err := core.CreateUser(ctx, login, email, true)
	if errors.Is(err, core.ErrUserExists) {
		return c.JSON(http.StatusConflict, map[string]string{"error": "Login already taken"})
	}
	if errors.Is(err, core.ErrInvalidEmail) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid email address")
	}
	if err != nil {
		slog.Error("Failed to create admin", "login", login, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}

	actor, _ := c.Get(middleware.LoginKey).(string)
	core.LogAudit(ctx, "ADMIN_CREATE_ADMIN", actor, c.RealIP(), map[string]interface{}{"target": login})

	if _, err := h.Mailer.SendPasswordSetup(ctx, admin); err != nil {
		slog.Error("Failed to send password setup mail", "login", login, "error", err)
		return c.JSON(http.StatusCreated, map[string]interface{}{"id": admin.ID, "login": login, "mail_sent": false})
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"id": admin.ID, "login": login, "mail_sent": true})
}

// DeleteUser removes an account, e.g. one confirmed as spam. Later spam
// alerts leave it out.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user id")
	}
	self, _ := c.Get(middleware.AdminIDKey).(int64)
	if id == self {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot delete yourself")
	}

	err = core.DeleteUser(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "No such user")
	}
	if err != nil {
		slog.Error("Failed to delete user", "user_id", id, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}

	actor, _ := c.Get(middleware.LoginKey).(string)
	core.LogAudit(ctx, "ADMIN_DELETE_USER", actor, c.RealIP(), map[string]interface{}{"target": id})
	return c.NoContent(http.StatusNoContent)
}

// Audit returns the most recent audit entries, newest first.
func (h *AdminHandler) Audit(c echo.Context) error {
	limit := int64(100)
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid limit")
		}
		limit = min(n, 1000)
	}

	logs, err := core.RecentAudit(c.Request().Context(), limit)
	if err != nil {
		slog.Error("Failed to read audit log", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}
	return c.JSON(http.StatusOK, logs)
}
