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

func TestLoadConfig_FileWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
postgres:
  dsn: postgres://file
nats:
  url: nats://file:4222
challonge:
  api_key: file-key
  timeout: 5s
  requests_per_second: 1.5
  burst: 3
observability:
  metrics_address: ":9100"
`)
	t.Setenv("NATS_URL", "nats://env:4222")
	t.Setenv("CHALLONGE_API_KEY", "env-key")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://file", cfg.Postgres.DSN)
	assert.Equal(t, "nats://env:4222", cfg.NATS.URL)
	assert.Equal(t, "env-key", cfg.Challonge.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Challonge.Timeout)
	assert.Equal(t, 1.5, cfg.Challonge.RequestsPerSecond)
	assert.Equal(t, 3, cfg.Challonge.Burst)
	assert.Equal(t, ":9100", cfg.Observability.MetricsAddress)
	assert.Equal(t, "tourney-bot", cfg.Observability.ServiceName)
	assert.Equal(t, "info", cfg.Observability.LogLevel)
}

func TestLoadConfig_EnvOnly(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	t.Run("requires database url", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		t.Setenv("NATS_URL", "nats://env:4222")
		_, err := LoadConfig(missing)
		assert.ErrorContains(t, err, "DATABASE_URL")
	})

	t.Run("nats url is optional", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://env")
		t.Setenv("NATS_URL", "")
		cfg, err := LoadConfig(missing)
		require.NoError(t, err)
		assert.Empty(t, cfg.NATS.URL)
	})

	t.Run("loads", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://env")
		t.Setenv("NATS_URL", "nats://env:4222")
		t.Setenv("CHALLONGE_TIMEOUT", "15s")
		t.Setenv("LOG_LEVEL", "debug")

		cfg, err := LoadConfig(missing)
		require.NoError(t, err)
		assert.Equal(t, "postgres://env", cfg.Postgres.DSN)
		assert.Equal(t, 15*time.Second, cfg.Challonge.Timeout)
		assert.Equal(t, "debug", cfg.Observability.LogLevel)
	})
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "postgres: [")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}
