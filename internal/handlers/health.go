package handlers

import (
	"net/http"
	"runtime"
	"time"

	"archivemail/internal/core"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

type HealthHandler struct {
	Cfg *core.Config
}

type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]string      `json:"checks"`
	System    map[string]interface{} `json:"system"`
}

func (h *HealthHandler) Check(c echo.Context) error {
	ctx := c.Request().Context()
	status := "OK"
	checks := make(map[string]string)

	stores := []struct {
		name   string
		client *redis.Client
	}{
		{"redis_user", core.UserDB},
		{"redis_token", core.TokenDB},
		{"redis_content", core.ContentDB},
	}
	failed := 0
	for _, s := range stores {
		if s.client == nil {
			checks[s.name] = "FAIL: not initialized"
			failed++
			continue
		}
		if err := s.client.Ping(ctx).Err(); err != nil {
			checks[s.name] = "FAIL: " + err.Error()
			failed++
			continue
		}
		checks[s.name] = "OK"
	}
	if failed > 0 {
		status = "DEGRADED"
	}
	if failed == len(stores) {
		status = "FAIL"
	}

	switch {
	case h.Cfg.MailDryRun:
		checks["smtp"] = "WARN: dry run"
	case h.Cfg.SMTPHost == "":
		checks["smtp"] = "WARN: not configured"
	default:
		checks["smtp"] = "OK"
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	systemInfo := map[string]interface{}{
		"goroutines":     runtime.NumGoroutine(),
		"memory_alloc":   m.Alloc / 1024 / 1024, // MB
		"go_version":     runtime.Version(),
		"uptime_seconds": int(time.Since(core.StartTime).Seconds()),
	}

	httpStatus := http.StatusOK
	if status == "FAIL" {
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, HealthStatus{
		Status:    status,
		Timestamp: time.Now().Format(time.RFC3339),
		Checks:    checks,
		System:    systemInfo,
	})
}
