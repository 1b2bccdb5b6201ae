package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 80, cfg.Auth.StaleDays)
	assert.Equal(t, "cred.json", cfg.Auth.CredentialFile)
	assert.Equal(t, []string{"User.Read", "Files.ReadWrite"}, cfg.Auth.Scopes)
	assert.Equal(t, "Jobs/JobTracker.xlsx", cfg.Drive.TrackerPath)
	assert.Equal(t, "JobTable", cfg.Drive.TrackerTable)
	assert.Equal(t, "memory", cfg.Session.Backend)
	assert.Equal(t, 80*24*time.Hour, cfg.StaleAfter())
}

func TestLoadConfig_YAMLWithEnvExpansion(t *testing.T) {
	t.Setenv("JOBDESK_TEST_CLIENT", "client-123")

	path := writeConfig(t, `
auth:
  client_id: ${JOBDESK_TEST_CLIENT}
  stale_days: 90
graph:
  base_url: http://localhost:9999/v1.0/
drive:
  tracker_table: Applications
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "client-123", cfg.Auth.ClientID)
	assert.Equal(t, 90, cfg.Auth.StaleDays)
	assert.Equal(t, "http://localhost:9999/v1.0", cfg.Graph.BaseURL)
	assert.Equal(t, "Applications", cfg.Drive.TrackerTable)
	// untouched sections keep their defaults
	assert.Equal(t, "Jobs/JobTracker.xlsx", cfg.Drive.TrackerPath)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9000\nsession:\n  backend: memory\n")

	t.Setenv("PORT", "9100")
	t.Setenv("SESSION_BACKEND", "Redis")
	t.Setenv("CREDENTIAL_STALE_DAYS", "85")
	t.Setenv("ARCHIVE_ENABLED", "1")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Session.Backend)
	assert.Equal(t, 85, cfg.Auth.StaleDays)
	assert.True(t, cfg.Archive.Enabled)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [unterminated")

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestNormalize_ClampsNonPositiveValues(t *testing.T) {
	cfg := Default()
	cfg.Auth.StaleDays = 0
	cfg.Graph.RateLimit = -1

	cfg.normalize()

	assert.Equal(t, 80, cfg.Auth.StaleDays)
	assert.Equal(t, 120, cfg.Graph.RateLimit)
}

func TestNormalize_ClampsStaleDaysToRange(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-5, 80},
		{30, 80},
		{80, 80},
		{87, 87},
		{90, 90},
		{365, 90},
	}

	for _, tt := range tests {
		cfg := Default()
		cfg.Auth.StaleDays = tt.in
		cfg.normalize()
		assert.Equal(t, tt.want, cfg.Auth.StaleDays, "stale_days %d", tt.in)
	}
}

func TestLoadConfig_StaleDaysFromEnvIsClamped(t *testing.T) {
	t.Setenv("CREDENTIAL_STALE_DAYS", "365")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 90, cfg.Auth.StaleDays)
}

func TestExpandEnvVars_LeavesUnknownVariables(t *testing.T) {
	t.Setenv("JOBDESK_KNOWN", "yes")

	got := expandEnvVars("a=${JOBDESK_KNOWN} b=$JOBDESK_KNOWN c=${JOBDESK_UNKNOWN_VAR}")
	assert.Equal(t, "a=yes b=yes c=${JOBDESK_UNKNOWN_VAR}", got)
}
