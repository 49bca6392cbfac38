package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/engine")
	t.Setenv("STREAM_BASE_URL", "http://localhost:8080")
	t.Setenv("VIEWER_ROLE", "student")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 5*time.Second, cfg.StreamPollInterval)
	assert.Equal(t, 200, cfg.OwnerLedgerCap)
	assert.Equal(t, 100, cfg.HandlerLedgerCap)
	assert.Equal(t, 100, cfg.AdminLedgerCap)
	assert.Equal(t, 500, cfg.SeenCap)
	assert.Equal(t, 10, cfg.UndoWindowSeconds)
	assert.False(t, cfg.AdminSuppressSelfAuthored)
	assert.Equal(t, 90*24*time.Hour, cfg.RetentionTTL)
	assert.Equal(t, "0 4 * * *", cfg.CronSpecRetention)
}

func TestLoad_MissingRequiredVariables(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("STREAM_BASE_URL", "")
	t.Setenv("VIEWER_ROLE", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost/engine")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STREAM_BASE_URL")

	t.Setenv("STREAM_BASE_URL", "http://localhost:8080")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VIEWER_ROLE")
}

func TestLoad_InvalidIntegerIsAnError(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OWNER_LEDGER_CAP", "lots")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OWNER_LEDGER_CAP")
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("VIEWER_UID", "u-1")
	t.Setenv("VIEWER_EMAIL", "owner@example.com")
	t.Setenv("OWNER_LEDGER_CAP", "50")
	t.Setenv("UNDO_WINDOW_SECONDS", "3")
	t.Setenv("ADMIN_SUPPRESS_SELF_AUTHORED", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "u-1", cfg.ViewerUID)
	assert.Equal(t, 50, cfg.OwnerLedgerCap)
	assert.True(t, cfg.AdminSuppressSelfAuthored)

	engine := cfg.Engine()
	assert.Equal(t, 50, engine.OwnerLedgerCap)
	assert.Equal(t, 3*time.Second, engine.UndoWindow)
	assert.True(t, engine.AdminSuppressSelfAuthored)
}
