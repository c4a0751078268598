package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "appsegura", cfg.App.Name)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "secure_session", cfg.Session.CookieName)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.WindowDuration)
	assert.Equal(t, 5, cfg.RateLimit.LoginMaxAttempts)
	assert.NotEmpty(t, cfg.Encryption.KeyFile)
	assert.True(t, cfg.Telemetry.Enabled)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APPSEGURA_APP_PORT", "9191")
	t.Setenv("APPSEGURA_SESSION_COOKIE_NAME", "alt_session")
	t.Setenv("APPSEGURA_RATE_LIMIT_LOGIN_MAX_ATTEMPTS", "7")
	t.Setenv("APPSEGURA_ENCRYPTION_KEY_FILE", "/tmp/alt.key")
	t.Setenv("APPSEGURA_TELEMETRY_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.App.Port)
	assert.Equal(t, "alt_session", cfg.Session.CookieName)
	assert.Equal(t, 7, cfg.RateLimit.LoginMaxAttempts)
	assert.Equal(t, "/tmp/alt.key", cfg.Encryption.KeyFile)
	assert.False(t, cfg.Telemetry.Enabled)
}
