package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonLogger(buf *bytes.Buffer) *slog.Logger {
	return NewLogger(buf, slog.LevelDebug, true)
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestSecureHandlerMasksKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key      string
		value    string
		wantMask bool
	}{
		{"password", "correct horse battery", true},
		{"Password", "x", true},
		{"new_password", "x", true},
		{"token", "abc", true},
		{"reset_password_token", "abc", true},
		{"otp", "123456", true},
		{"totp_secret", "JBSWY3DPEHPK3PXP", true},
		{"cookie", "archivemail_session=abc", true},
		{"server_secret", "0123456789abcdef", true},
		{"login", "testadmin", false},
		{"subject", "[AO3] Potential spam alert", false},
		{"kind", "spam_alert", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			jsonLogger(&buf).Info("event", tt.key, tt.value)

			got := decode(t, &buf)[tt.key]
			if tt.wantMask {
				assert.Equal(t, MaskValue, got)
			} else {
				assert.Equal(t, tt.value, got)
			}
		})
	}
}

func TestSecureHandlerMasksValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"hex token", "3f2a9c0d4e5b6a7f8091a2b3c4d5e6f70011223344556677", MaskValue},
		{"bearer", "Bearer abc.def", MaskValue},
		{"bcrypt hash", "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW", MaskValue},
		{"setup link", "http://www.example.com/admin/password/edit?reset_password_token=abc123", "http://www.example.com/admin/password/edit?reset_password_token=" + MaskValue},
		{"plain", "http://www.example.com/admin/login", "http://www.example.com/admin/login"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			jsonLogger(&buf).Info("event", "value", tt.value)
			assert.Equal(t, tt.want, decode(t, &buf)["value"])
		})
	}
}

func TestSecureHandlerGroupsAndWith(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer

	logger := jsonLogger(&buf).With("token", "abc", "login", "testadmin").WithGroup("req")
	logger.Info("event", slog.Group("form", "password", "hunter2", "login", "mo"))

	out := decode(t, &buf)
	assert.Equal(t, MaskValue, out["token"])
	assert.Equal(t, "testadmin", out["login"])

	req, ok := out["req"].(map[string]interface{})
	require.True(t, ok)
	form, ok := req["form"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, MaskValue, form["password"])
	assert.Equal(t, "mo", form["login"])
}

func TestNewLoggerLevel(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer

	logger := NewLogger(&buf, slog.LevelWarn, false)
	logger.Info("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn("shown", "password", "hunter2")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), MaskValue)
	assert.NotContains(t, buf.String(), "hunter2")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("loud"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}
