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

type SpamHandler struct {
	Mailer *mailer.AdminMailer
}

// Alert takes a spam report, keyed by user id in report order, and mails
// the digest. 204 means every reported user was already gone.
func (h *SpamHandler) Alert(c echo.Context) error {
	var report mailer.SpamReport
	if err := (&echo.DefaultBinder{}).BindBody(c, &report); err != nil {
		return err
	}

	ctx := c.Request().Context()
	actor, _ := c.Get(middleware.LoginKey).(string)

	msg, err := h.Mailer.SendSpamAlert(ctx, report)
	if errors.Is(err, mailer.ErrNothingToSend) {
		return c.NoContent(http.StatusNoContent)
	}
	if err != nil {
		slog.Error("Spam alert failed", "entries", len(report), "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "Could not send spam alert")
	}

	core.LogAudit(ctx, "SPAM_ALERT_SENT", actor, c.RealIP(), map[string]interface{}{"entries": len(report)})
	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"message_id": msg.ID,
		"to":         msg.To,
	})
}
