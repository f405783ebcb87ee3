package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("MARKETGATE_ADDR", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("ENVIRONMENT", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, 5*time.Minute, cfg.Sweeper.Interval)
	assert.Equal(t, time.Hour, cfg.Sweeper.IdleTTL)
	assert.True(t, cfg.Throttle.Enabled)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://admin.example.com ,")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8")
	t.Setenv("SWEEP_INTERVAL", "30s")
	t.Setenv("GLOBAL_THROTTLE_RPS", "50")
	t.Setenv("GLOBAL_THROTTLE_ENABLED", "false")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, []string{"10.0.0.0/8"}, cfg.TrustedProxies)
	assert.Equal(t, 30*time.Second, cfg.Sweeper.Interval)
	assert.Equal(t, 50.0, cfg.Throttle.RPS)
	assert.False(t, cfg.Throttle.Enabled)
}

func TestFromEnvRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"SWEEP_INTERVAL":        "soon",
		"SWEEP_IDLE_TTL":        "-1m",
		"GLOBAL_THROTTLE_BURST": "0",
		"GLOBAL_THROTTLE_RPS":   "fast",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := FromEnv()
			assert.ErrorContains(t, err, key)
		})
	}
}
