package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"archivemail/internal/core"
	"archivemail/internal/mailer"

	"github.com/labstack/echo/v4"
)

// CommentHookHandler receives the archive's comment callbacks.
type CommentHookHandler struct {
	Mailer *mailer.AdminMailer
}

func (h *CommentHookHandler) Created(c echo.Context) error {
	return h.notify(c, h.Mailer.CommentNotification)
}

func (h *CommentHookHandler) Edited(c echo.Context) error {
	return h.notify(c, h.Mailer.EditedCommentNotification)
}

func (h *CommentHookHandler) notify(c echo.Context, send func(context.Context, int64) (*mailer.Message, error)) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment id")
	}

	msg, err := send(c.Request().Context(), id)
	switch {
	case errors.Is(err, core.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Unknown comment")
	case errors.Is(err, mailer.ErrNotAdminPost):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "Comment is not on an admin post")
	case err != nil:
		slog.Error("Comment notification failed", "comment_id", id, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "Could not send notification")
	}

	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"message_id": msg.ID,
		"subject":    msg.Subject,
	})
}
