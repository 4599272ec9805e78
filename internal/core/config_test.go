package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("SERVER_SECRET", "testsecret1234567890123456789012")
	t.Setenv("APP_SHORT_NAME", "AO3")
	t.Setenv("SPAM_ALERT_ADDRESS", "spam@archive.test")
	t.Setenv("PARENTS_WITH_IMAGE_SAFETY_MODE", "AdminPost, Chapter")
	t.Setenv("PUBLIC_URL", "https://archive.test/")
	t.Setenv("ARCHIVE_CONFIG", "")
	t.Setenv("HOOK_TOKEN", "hook-secret")
	t.Setenv("LOG_JSON", "true")
	t.Setenv("MAIL_DRY_RUN", "yes")

	cfg := LoadConfig()

	assert.Equal(t, "testsecret1234567890123456789012", cfg.ServerSecret)
	assert.Equal(t, "spam@archive.test", cfg.SpamAlertAddress)
	assert.Equal(t, []string{"AdminPost", "Chapter"}, cfg.ImageSafetyParents)
	assert.Equal(t, "https://archive.test", cfg.PublicURL)
	assert.Equal(t, "hook-secret", cfg.HookToken)
	assert.True(t, cfg.LogJSON)
	assert.False(t, cfg.MailDryRun, "unparsable bools fall back")
	assert.NoError(t, cfg.Validate())

	// Test fallback
	_ = os.Unsetenv("REDIS_PORT")
	cfg2 := LoadConfig()
	if cfg2.RedisPort != "6379" {
		t.Errorf("Expected default REDIS_PORT 6379, got %s", cfg2.RedisPort)
	}
}

func TestApplyArchiveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.yml")
	content := `app_short_name: OTW
spam_alert_address: abuse@otw.test
parents_with_image_safety_mode:
  - AdminPost
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg := &Config{AppShortName: "AO3", AdminAddress: "admin@ao3.test", ImageSafetyParents: []string{"Tag"}}
	require.NoError(t, cfg.ApplyArchiveFile(path))

	assert.Equal(t, "OTW", cfg.AppShortName)
	assert.Equal(t, "abuse@otw.test", cfg.SpamAlertAddress)
	assert.Equal(t, "admin@ao3.test", cfg.AdminAddress, "unset keys keep the env value")
	assert.Equal(t, []string{"AdminPost"}, cfg.ImageSafetyParents)

	t.Run("missing file", func(t *testing.T) {
		assert.Error(t, cfg.ApplyArchiveFile(filepath.Join(t.TempDir(), "nope.yml")))
	})

	t.Run("bad yaml", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.yml")
		require.NoError(t, os.WriteFile(bad, []byte("app_short_name: [unterminated"), 0o600))
		assert.Error(t, cfg.ApplyArchiveFile(bad))
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			ServerSecret:      "0123456789abcdef",
			AppShortName:      "AO3",
			MailFrom:          "do-not-reply@ao3.test",
			SpamAlertAddress:  "spam@ao3.test",
			AdminAddress:      "admin@ao3.test",
			MinPasswordLength: 8,
		}
	}

	assert.NoError(t, valid().Validate())

	cfg := valid()
	cfg.ServerSecret = "short"
	assert.ErrorIs(t, cfg.Validate(), ErrMissingSecret)
	assert.NoError(t, cfg.ValidateMail(), "mail settings do not need the server secret")

	cfg = valid()
	cfg.SpamAlertAddress = ""
	assert.ErrorIs(t, cfg.Validate(), ErrMissingSpamAlertAddr)

	cfg = valid()
	cfg.MinPasswordLength = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidPasswordLength)
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_INT", "123")
	t.Setenv("TEST_BOOL", "true")
	t.Setenv("TEST_SLICE", "a,b,,c")
	t.Setenv("TEST_EMPTY_SLICE", "")

	if v := getEnvInt("TEST_INT", 0); v != 123 {
		t.Errorf("getEnvInt failed, got %d", v)
	}
	if v := getEnvBool("TEST_BOOL", false); v != true {
		t.Errorf("getEnvBool failed")
	}
	vSlice := getEnvSlice("TEST_SLICE", []string{})
	if len(vSlice) != 3 || vSlice[0] != "a" {
		t.Errorf("getEnvSlice failed")
	}
	assert.Empty(t, getEnvSlice("TEST_EMPTY_SLICE", []string{"fallback"}))

	// Fallbacks
	if v := getEnvInt("NONEXISTENT", 456); v != 456 {
		t.Errorf("getEnvInt fallback failed")
	}
	assert.Equal(t, []string{"x"}, getEnvSlice("NONEXISTENT", []string{"x"}))
}
