package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

const base = `
app:
  http_addr: ":9090"
session:
  idle_ttl: 15m
upstream:
  base_url: http://api.local/v1
redis:
  addr: localhost:6379
`

func TestLoad_LayersFilesAndEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", base)
	writeFile(t, dir, "staging.yaml", `
app:
  log_level: debug
upstream:
  timeout: 3s
`)
	t.Setenv("STOREFRONT_REDIS__ENABLED", "true")
	t.Setenv("STOREFRONT_SECURITY__JWT_SECRET", "s3cret")

	cfg, err := Load(dir, "staging")
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.App.HTTPAddr)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, 15*time.Minute, cfg.Session.IdleTTL)
	assert.Equal(t, 3*time.Second, cfg.Upstream.Timeout)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "s3cret", cfg.Security.JWTSecret)
}

func TestLoad_DefaultsAndMissingEnvFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "upstream:\n  base_url: http://api.local\n")

	cfg, err := Load(dir, "does-not-exist")
	require.NoError(t, err)

	assert.Equal(t, "storefront-go", cfg.App.Name)
	assert.Equal(t, ":8080", cfg.App.HTTPAddr)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTTL)
	assert.Equal(t, time.Minute, cfg.Session.SweepInterval)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, []string{"*"}, cfg.HTTP.CORSOrigins)
}

func TestLoad_MissingBase(t *testing.T) {
	_, err := Load(t.TempDir(), "")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := map[string]struct {
		mutate  func(*Config)
		wantErr string
	}{
		"ok": {
			mutate: func(*Config) {},
		},
		"missing upstream": {
			mutate:  func(c *Config) { c.Upstream.BaseURL = "" },
			wantErr: "upstream.base_url",
		},
		"rabbit without url": {
			mutate:  func(c *Config) { c.Rabbit.Enabled = true; c.Postgres.DSN = "postgres://x" },
			wantErr: "rabbitmq.url",
		},
		"rabbit without postgres": {
			mutate:  func(c *Config) { c.Rabbit.Enabled = true; c.Rabbit.URL = "amqp://x" },
			wantErr: "postgres.dsn",
		},
		"redis without addr": {
			mutate:  func(c *Config) { c.Redis.Enabled = true },
			wantErr: "redis.addr",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var cfg Config
			cfg.Upstream.BaseURL = "http://api.local"
			tc.mutate(&cfg)

			err := cfg.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestLoad_RepositoryConfigs(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs"), "docker")
	require.NoError(t, err)

	assert.True(t, cfg.Rabbit.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, int32(5), cfg.Postgres.MaxConns)
}
