package handlers

import (
	"log/slog"
	"net/http"

	"archivemail/internal/core"
	"archivemail/internal/mailer"
	"archivemail/internal/middleware"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires every route of the admin mail service.
func NewRouter(cfg *core.Config, m *mailer.AdminMailer) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.Secure())
	e.Use(echoMiddleware.BodyLimit("1M"))
	e.Use(requestLogger())
	e.HTTPErrorHandler = jsonErrorHandler

	authHandler := &AuthHandler{Cfg: cfg}
	passwordHandler := &PasswordHandler{Cfg: cfg, Mailer: m}
	adminHandler := &AdminHandler{Cfg: cfg, Mailer: m}
	spamHandler := &SpamHandler{Mailer: m}
	hookHandler := &CommentHookHandler{Mailer: m}
	healthHandler := &HealthHandler{Cfg: cfg}

	e.GET("/health", healthHandler.Check)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.POST("/admin/login", authHandler.Login)
	e.POST("/admin/password", passwordHandler.Redeem)

	session := e.Group("/admin", middleware.AuthMiddleware(cfg))
	session.POST("/logout", authHandler.Logout)

	admin := session.Group("", middleware.AdminMiddleware)
	admin.POST("/password/setup", passwordHandler.Setup)
	admin.POST("/admins", adminHandler.CreateAdmin)
	admin.DELETE("/users/:id", adminHandler.DeleteUser)
	admin.GET("/audit", adminHandler.Audit)
	admin.POST("/spam_alert", spamHandler.Alert)

	hooks := e.Group("/hooks", middleware.HookAuth(cfg))
	hooks.POST("/comments/:id", hookHandler.Created)
	hooks.POST("/comments/:id/edited", hookHandler.Edited)

	return e
}

func requestLogger() echo.MiddlewareFunc {
	return echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURIPath:  true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			slog.Info("request",
				"method", v.Method,
				"path", v.URIPath,
				"status", v.Status,
				"latency", v.Latency,
				"ip", v.RemoteIP,
			)
			return nil
		},
	})
}

func jsonErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := http.StatusText(code)
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if s, ok := he.Message.(string); ok {
			message = s
		} else {
			message = http.StatusText(code)
		}
	} else {
		slog.Error("Unhandled error", "path", c.Path(), "error", err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, map[string]string{"error": message})
	}
	if err != nil {
		slog.Error("Failed to write error response", "error", err)
	}
}
