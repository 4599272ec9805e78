package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"archivemail/internal/core"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler(t *testing.T) {
	setupHandlersTest(t)
	e := echo.New()

	t.Run("Healthy", func(t *testing.T) {
		h := &HealthHandler{Cfg: testConfig()}
		c, rec := createTestContext(e, http.MethodGet, "/health", nil)
		require.NoError(t, h.Check(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var status HealthStatus
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
		assert.Equal(t, "OK", status.Status)
		assert.Equal(t, "OK", status.Checks["redis_user"])
		assert.Equal(t, "WARN: not configured", status.Checks["smtp"])
	})

	t.Run("Redis down", func(t *testing.T) {
		core.UseClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1}))

		cfg := testConfig()
		cfg.MailDryRun = true
		h := &HealthHandler{Cfg: cfg}
		c, rec := createTestContext(e, http.MethodGet, "/health", nil)
		require.NoError(t, h.Check(c))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var status HealthStatus
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
		assert.Equal(t, "FAIL", status.Status)
		assert.Equal(t, "WARN: dry run", status.Checks["smtp"])
	})
}
