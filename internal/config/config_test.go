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
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[database]
host = "db"
dbname = "marketplace"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 30*time.Second, cfg.Locks.TTL())
	assert.Equal(t, 30*time.Second, cfg.Locks.SweepInterval())
	assert.Equal(t, 3, cfg.Locks.MaxTxRetries)
	assert.Equal(t, 20*time.Millisecond, cfg.Locks.RetryBackoff())
	assert.Equal(t, 1.0, cfg.Pricing.MinPrice)
	assert.Equal(t, 90, cfg.Pricing.MaxFutureDays)
	assert.Equal(t, 0.5, cfg.Pricing.MaxIncreasePerChange)
	assert.Equal(t, 0.25, cfg.Pricing.ApprovalThreshold)
	assert.Equal(t, "PKR", cfg.Pricing.DefaultCurrency)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("RABBITMQ_URL", "amqp://u:p@mq:5672/")

	path := writeConfig(t, `
[database]
host = "db"
dbname = "marketplace"
password = "from-file"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Database.Password)
	assert.Equal(t, "redis:6380", cfg.Redis.Addr)
	assert.Equal(t, "amqp://u:p@mq:5672/", cfg.RabbitMQ.URL)
	assert.Contains(t, cfg.Database.DSN(), "password=secret")
}

func TestLoad_Invalid(t *testing.T) {
	path := writeConfig(t, `
[server]
http_port = 70000

[pricing]
approval_threshold = 0.6
max_increase_per_change = 0.5
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.http_port")
	assert.Contains(t, err.Error(), "database.host is required")
	assert.Contains(t, err.Error(), "pricing.approval_threshold")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestLocksConfig_SweepIntervalExplicit(t *testing.T) {
	l := LocksConfig{TTLSeconds: 30, SweepIntervalSeconds: 5}
	assert.Equal(t, 5*time.Second, l.SweepInterval())
}

func TestLoad_CatalogRequiresBaseURL(t *testing.T) {
	path := writeConfig(t, `
[database]
host = "db"
dbname = "marketplace"

[catalog]
enabled = true
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog.base_url")
}
