package handlers

import (
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"archivemail/internal/core"
	"archivemail/internal/mailer"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const testSecret = "32byte-secret-key-for-testing-!!"

var (
	globalTestMu    sync.Mutex
	sharedMiniredis *miniredis.Miniredis
)

// setupHandlersTest points every store at a flushed shared miniredis and
// holds a lock until the test ends, since the stores are package globals.
func setupHandlersTest(t *testing.T) {
	t.Helper()
	globalTestMu.Lock()
	if sharedMiniredis == nil {
		s, err := miniredis.Run()
		if err != nil {
			globalTestMu.Unlock()
			t.Fatalf("failed to run miniredis: %v", err)
		}
		sharedMiniredis = s
	}

	core.UseClient(redis.NewClient(&redis.Options{Addr: sharedMiniredis.Addr()}))
	sharedMiniredis.FlushAll()

	t.Cleanup(func() {
		globalTestMu.Unlock()
	})
}

func testConfig() *core.Config {
	return &core.Config{
		ServerSecret:           testSecret,
		SessionValidityMinutes: 60,
		PasswordTokenHours:     72,
		MinPasswordLength:      12,
		PublicURL:              "http://www.example.com",
		HookToken:              "hook-secret",
		AppShortName:           "AO3",
		AdminAddress:           "admin@example.org",
		SpamAlertAddress:       "spam@example.org",
		MailFrom:               "do-not-reply@example.org",
	}
}

func newTestMailer(t *testing.T, cfg *core.Config) (*mailer.AdminMailer, *mailer.RecordingSender) {
	t.Helper()
	sender := &mailer.RecordingSender{}
	m, err := mailer.NewAdminMailer(cfg, core.RedisArchive{}, sender)
	if err != nil {
		t.Fatalf("failed to build mailer: %v", err)
	}
	return m, sender
}

func createTestContext(e *echo.Echo, method, path string, f url.Values) (echo.Context, *httptest.ResponseRecorder) {
	var body io.Reader
	if f != nil {
		body = strings.NewReader(f.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if f != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	req.RemoteAddr = "127.0.0.1:1234"

	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func createJSONContext(e *echo.Echo, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.RemoteAddr = "127.0.0.1:1234"

	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	return he.Code
}
