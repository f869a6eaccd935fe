package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("REALTIME_BACKPLANE", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "complaint-service", cfg.App.Name)
	require.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	require.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	require.Equal(t, []string{"*"}, cfg.App.CORSOrigins)
	require.Equal(t, BackplaneLocal, cfg.Realtime.Backplane)
	require.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL())
	require.False(t, cfg.Seed.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("HTTP_CORS_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "15")
	t.Setenv("AUTH_BCRYPT_COST", "not-a-number")
	t.Setenv("REALTIME_BACKPLANE", "REDIS")
	t.Setenv("SEED_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "9000", cfg.App.Port)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.App.CORSOrigins)
	require.Equal(t, 15*time.Minute, cfg.Auth.TokenTTL())
	require.Equal(t, 12, cfg.Auth.BcryptCost)
	require.Equal(t, BackplaneRedis, cfg.Realtime.Backplane)
	require.True(t, cfg.Seed.Enabled)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Run("redis db", func(t *testing.T) {
		t.Setenv("REDIS_DB", "x")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("default secret in production", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		t.Setenv("AUTH_JWT_SECRET", "")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("unknown backplane", func(t *testing.T) {
		t.Setenv("REALTIME_BACKPLANE", "kafka")
		_, err := Load()
		require.Error(t, err)
	})
}
