package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidConfig(t *testing.T) *AppConfig {
	t.Helper()
	t.Setenv("GITHUB_CLIENT_ID", "Iv1.test")
	t.Setenv("GITHUB_CLIENT_SECRET", "shhh")
	return NewConfig()
}

func TestConfigDefaults(t *testing.T) {
	cfg := newValidConfig(t)

	assert.Equal(t, "5000", cfg.GetServerPort())
	assert.Equal(t, "http://localhost:3000", cfg.GetFrontendURL())
	assert.Equal(t, 2*time.Hour, cfg.GetSessionShortLifetime())
	assert.Equal(t, 720*time.Hour, cfg.GetSessionExtendedLifetime())
	assert.Equal(t, 30, cfg.GetSearchPageSize())
	assert.Equal(t, 34, cfg.GetSearchPageCap())
	assert.Equal(t, 50, cfg.GetVisitCapacity())
	assert.Equal(t, 720*time.Hour, cfg.GetVisitRetention())
	assert.False(t, cfg.IsProduction())
}

func TestConfigEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("SESSION_SHORT_LIFETIME", "15m")
	t.Setenv("VISIT_CAPACITY", "5")
	t.Setenv("ENVIRONMENT", "production")

	cfg := newValidConfig(t)

	assert.Equal(t, "9999", cfg.GetServerPort())
	assert.Equal(t, 15*time.Minute, cfg.GetSessionShortLifetime())
	assert.Equal(t, 5, cfg.GetVisitCapacity())
	assert.True(t, cfg.IsProduction())
}

func TestConfigRedirectURLTracksPort(t *testing.T) {
	t.Setenv("SERVER_PORT", "8123")
	cfg := newValidConfig(t)
	assert.Equal(t, "http://localhost:8123/auth/github/callback", cfg.GetOAuthRedirectURL())
}

func TestConfigValidate(t *testing.T) {
	t.Run("ValidConfigPasses", func(t *testing.T) {
		cfg := newValidConfig(t)
		require.NoError(t, cfg.Validate())
	})

	t.Run("MissingOAuthCredentialsFail", func(t *testing.T) {
		t.Setenv("GITHUB_CLIENT_ID", "")
		t.Setenv("GITHUB_CLIENT_SECRET", "")
		cfg := NewConfig()
		assert.Error(t, cfg.Validate())
	})

	t.Run("UnknownEnvironmentFails", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "qa")
		cfg := newValidConfig(t)
		assert.Error(t, cfg.Validate())
	})

	t.Run("ExtendedShorterThanDefaultFails", func(t *testing.T) {
		t.Setenv("SESSION_SHORT_LIFETIME", "2h")
		t.Setenv("SESSION_EXTENDED_LIFETIME", "1h")
		cfg := newValidConfig(t)
		assert.Error(t, cfg.Validate())
	})
}
