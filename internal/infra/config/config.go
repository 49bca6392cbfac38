package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"complaint_notification_engine/internal/app"
)

// AppConfig holds all configuration for the engine deployment.
type AppConfig struct {
	DatabaseURL        string
	StreamBaseURL      string
	StreamPollInterval time.Duration
	LogLevel           string
	Environment        string

	// Identity of the viewer this deployment derives notifications for.
	ViewerUID   string
	ViewerEmail string
	ViewerRole  string

	// Engine tunables; see app.Config.
	OwnerLedgerCap            int
	HandlerLedgerCap          int
	AdminLedgerCap            int
	SeenCap                   int
	UndoWindowSeconds         int
	AdminSuppressSelfAuthored bool

	// Retention sweep over persisted scope state.
	RetentionTTL      time.Duration
	CronSpecRetention string
}

func intEnv(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return v, nil
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.StreamBaseURL = os.Getenv("STREAM_BASE_URL")
	if cfg.StreamBaseURL == "" {
		return nil, fmt.Errorf("STREAM_BASE_URL is not set")
	}

	pollSeconds, err := intEnv("STREAM_POLL_INTERVAL_SECONDS", 5)
	if err != nil {
		return nil, err
	}
	cfg.StreamPollInterval = time.Duration(pollSeconds) * time.Second

	cfg.ViewerUID = os.Getenv("VIEWER_UID")
	cfg.ViewerEmail = os.Getenv("VIEWER_EMAIL")
	cfg.ViewerRole = os.Getenv("VIEWER_ROLE")
	if cfg.ViewerRole == "" {
		return nil, fmt.Errorf("VIEWER_ROLE is not set")
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	defaults := app.DefaultConfig()
	if cfg.OwnerLedgerCap, err = intEnv("OWNER_LEDGER_CAP", defaults.OwnerLedgerCap); err != nil {
		return nil, err
	}
	if cfg.HandlerLedgerCap, err = intEnv("HANDLER_LEDGER_CAP", defaults.HandlerLedgerCap); err != nil {
		return nil, err
	}
	if cfg.AdminLedgerCap, err = intEnv("ADMIN_LEDGER_CAP", defaults.AdminLedgerCap); err != nil {
		return nil, err
	}
	if cfg.SeenCap, err = intEnv("SEEN_ID_CAP", defaults.SeenCap); err != nil {
		return nil, err
	}
	if cfg.UndoWindowSeconds, err = intEnv("UNDO_WINDOW_SECONDS", int(defaults.UndoWindow.Seconds())); err != nil {
		return nil, err
	}
	cfg.AdminSuppressSelfAuthored = strings.ToLower(os.Getenv("ADMIN_SUPPRESS_SELF_AUTHORED")) == "true"

	retentionDays, err := intEnv("STATE_RETENTION_DAYS", 90)
	if err != nil {
		return nil, err
	}
	cfg.RetentionTTL = time.Duration(retentionDays) * 24 * time.Hour

	cfg.CronSpecRetention = os.Getenv("CRON_SPEC_RETENTION")
	if cfg.CronSpecRetention == "" {
		cfg.CronSpecRetention = "0 4 * * *" // Default: 4:00 AM daily
	}

	return cfg, nil
}

// Engine maps the loaded values onto the engine's own config.
func (c *AppConfig) Engine() app.Config {
	return app.Config{
		OwnerLedgerCap:            c.OwnerLedgerCap,
		HandlerLedgerCap:          c.HandlerLedgerCap,
		AdminLedgerCap:            c.AdminLedgerCap,
		SeenCap:                   c.SeenCap,
		UndoWindow:                time.Duration(c.UndoWindowSeconds) * time.Second,
		AdminSuppressSelfAuthored: c.AdminSuppressSelfAuthored,
	}
}
