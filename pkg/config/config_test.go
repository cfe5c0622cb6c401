package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/gooners")
	t.Setenv("ENV", "development")
	t.Setenv("SESSION_SECRET", "")

	cfg, _, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, devSessionSecret, cfg.SessionSecret)
	assert.Equal(t, 720*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	assert.False(t, cfg.AllowsAnyOrigin())
	assert.Equal(t, 10, cfg.RateLimitRPS)
	assert.False(t, cfg.LogJSON)
}

func TestLoadRequiresSecretOutsideDevelopment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/gooners")
	t.Setenv("ENV", "production")
	t.Setenv("SESSION_SECRET", "")

	_, _, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, _, err := Load()
	require.Error(t, err)
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/gooners")
	t.Setenv("ENV", "production")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("RATE_LIMIT_RPS", "3")

	cfg, _, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 3, cfg.RateLimitRPS)
	assert.True(t, cfg.LogJSON)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/gooners")
	t.Setenv("SESSION_TTL", "forever")

	_, _, err := Load()
	require.Error(t, err)
}
