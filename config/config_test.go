package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "logistics-api", cfg.Server.ServiceName)
	assert.Equal(t, "127.0.0.1", cfg.Redis.Host)
	assert.Equal(t, "6379", cfg.Redis.Port)
	assert.Equal(t, 5*time.Second, cfg.Redis.Timeout)
	assert.Equal(t, "localhost", cfg.RabbitMQ.Host)
	assert.Equal(t, 5672, cfg.RabbitMQ.Port)
	assert.Equal(t, "logistics_queue", cfg.RabbitMQ.Queue)
	assert.Equal(t, 5*time.Second, cfg.RabbitMQ.Timeout)
	assert.Equal(t, 600*time.Second, cfg.Cache.EquipmentsTTL)
	assert.Equal(t, time.Hour, cfg.Cache.DispatchTTL)
	assert.Equal(t, 30*time.Second, cfg.Sensors.CacheTTL)
	assert.Equal(t, 5*time.Second, cfg.Sensors.ForwardTimeout)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("server:\n  port: \"9090\"\nrabbitmq:\n  queue: other_queue\ncache:\n  equipmentsTTL: 2m\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	t.Setenv("RABBITMQ_HOST", "broker.internal")
	t.Setenv("RABBITMQ_PORT", "5673")
	t.Setenv("PYTHON_API_URL", "http://events:5000")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "other_queue", cfg.RabbitMQ.Queue)
	assert.Equal(t, 2*time.Minute, cfg.Cache.EquipmentsTTL)
	assert.Equal(t, "broker.internal", cfg.RabbitMQ.Host)
	assert.Equal(t, 5673, cfg.RabbitMQ.Port)
	assert.Equal(t, "http://events:5000", cfg.Sensors.EventsURL)
}

func TestLoadConfigDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("REDIS_HOST=cache.internal\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("REDIS_HOST") })

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "cache.internal", cfg.Redis.Host)
}

func TestLoadConfigMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [unclosed"), 0o600))

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}
