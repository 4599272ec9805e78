package core

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ServerSecret           string
	RedisHost              string
	RedisPort              string
	RedisPassword          string
	ListenAddr             string
	CookieDomain           string
	SessionValidityMinutes int
	PasswordTokenHours     int
	MinPasswordLength      int
	PublicURL              string
	// HookToken authenticates the archive's comment hooks. Hooks are
	// refused while it is empty.
	HookToken string

	AppShortName     string
	AdminAddress     string
	SpamAlertAddress string
	MailFrom         string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	// MailDryRun logs messages instead of delivering them.
	MailDryRun bool

	// ImageSafetyParents lists the parent types whose comments have embedded
	// images replaced by their URL in notification mail.
	ImageSafetyParents []string

	ArchiveConfigPath string

	LogLevel string
	LogJSON  bool
}

// ArchiveFile is the optional YAML file named by ARCHIVE_CONFIG. Non-empty
// values override the environment.
type ArchiveFile struct {
	AppShortName               string   `yaml:"app_short_name"`
	AdminAddress               string   `yaml:"admin_address"`
	SpamAlertAddress           string   `yaml:"spam_alert_address"`
	MailFrom                   string   `yaml:"mail_from"`
	PublicURL                  string   `yaml:"public_url"`
	ParentsWithImageSafetyMode []string `yaml:"parents_with_image_safety_mode"`
}

var (
	ErrMissingSecret         = errors.New("SERVER_SECRET must be 16, 24 or 32 bytes")
	ErrMissingAppShortName   = errors.New("APP_SHORT_NAME is required")
	ErrMissingMailFrom       = errors.New("MAIL_FROM is required")
	ErrMissingSpamAlertAddr  = errors.New("SPAM_ALERT_ADDRESS is required")
	ErrMissingAdminAddress   = errors.New("ADMIN_ADDRESS is required")
	ErrInvalidPasswordLength = errors.New("MIN_PASSWORD_LENGTH must be positive")
)

func LoadConfig() *Config {
	if err := godotenv.Load(); err == nil {
		slog.Debug("Loaded environment from .env")
	}

	cfg := &Config{
		ServerSecret:           getEnv("SERVER_SECRET", ""),
		RedisHost:              getEnv("REDIS_HOST", "archivemail-redis"),
		RedisPort:              getEnv("REDIS_PORT", "6379"),
		RedisPassword:          getEnv("REDIS_PASSWORD", ""),
		ListenAddr:             getEnv("LISTEN_ADDR", ":8080"),
		CookieDomain:           getEnv("COOKIE_DOMAIN", ""),
		SessionValidityMinutes: getEnvInt("SESSION_VALIDITY_MINUTES", 720),
		PasswordTokenHours:     getEnvInt("PASSWORD_TOKEN_HOURS", 72),
		MinPasswordLength:      getEnvInt("MIN_PASSWORD_LENGTH", 12),
		PublicURL:              strings.TrimRight(getEnv("PUBLIC_URL", "http://www.example.com"), "/"),
		HookToken:              getEnv("HOOK_TOKEN", ""),
		AppShortName:           getEnv("APP_SHORT_NAME", "AO3"),
		AdminAddress:           getEnv("ADMIN_ADDRESS", "admin@example.org"),
		SpamAlertAddress:       getEnv("SPAM_ALERT_ADDRESS", "spam@example.org"),
		MailFrom:               getEnv("MAIL_FROM", "do-not-reply@example.org"),
		SMTPHost:               getEnv("SMTP_HOST", ""),
		SMTPPort:               getEnvInt("SMTP_PORT", 587),
		SMTPUser:               getEnv("SMTP_USER", ""),
		SMTPPass:               getEnv("SMTP_PASS", ""),
		MailDryRun:             getEnvBool("MAIL_DRY_RUN", false),
		ImageSafetyParents:     getEnvSlice("PARENTS_WITH_IMAGE_SAFETY_MODE", []string{}),
		ArchiveConfigPath:      getEnv("ARCHIVE_CONFIG", ""),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		LogJSON:                getEnvBool("LOG_JSON", false),
	}

	if cfg.ArchiveConfigPath != "" {
		if err := cfg.ApplyArchiveFile(cfg.ArchiveConfigPath); err != nil {
			slog.Warn("Ignoring archive config file", "path", cfg.ArchiveConfigPath, "error", err)
		}
	}

	return cfg
}

// ApplyArchiveFile merges the YAML file at path into cfg.
func (c *Config) ApplyArchiveFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // operator supplied path
	if err != nil {
		return err
	}

	var f ArchiveFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if f.AppShortName != "" {
		c.AppShortName = f.AppShortName
	}
	if f.AdminAddress != "" {
		c.AdminAddress = f.AdminAddress
	}
	if f.SpamAlertAddress != "" {
		c.SpamAlertAddress = f.SpamAlertAddress
	}
	if f.MailFrom != "" {
		c.MailFrom = f.MailFrom
	}
	if f.PublicURL != "" {
		c.PublicURL = strings.TrimRight(f.PublicURL, "/")
	}
	if f.ParentsWithImageSafetyMode != nil {
		c.ImageSafetyParents = f.ParentsWithImageSafetyMode
	}
	return nil
}

// Validate returns the first problem found. The server refuses to start on
// error; the CLI only needs the mail settings.
func (c *Config) Validate() error {
	switch len(c.ServerSecret) {
	case 16, 24, 32:
	default:
		return ErrMissingSecret
	}
	return c.ValidateMail()
}

func (c *Config) ValidateMail() error {
	if c.AppShortName == "" {
		return ErrMissingAppShortName
	}
	if c.MailFrom == "" {
		return ErrMissingMailFrom
	}
	if c.SpamAlertAddress == "" {
		return ErrMissingSpamAlertAddr
	}
	if c.AdminAddress == "" {
		return ErrMissingAdminAddress
	}
	if c.MinPasswordLength <= 0 {
		return ErrInvalidPasswordLength
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvSlice splits a comma separated value. An explicitly empty variable
// yields an empty slice rather than the fallback.
func getEnvSlice(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
