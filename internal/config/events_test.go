package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEventsConfigDefaults(t *testing.T) {
	cfg, err := LoadEventsConfig(t.TempDir())
	require.NoError(t, err)

	assert.False(t, cfg.RabbitMQ.Enabled)
	assert.Equal(t, "pos.events", cfg.RabbitMQ.Exchange)
	assert.Equal(t, "pos.audit", cfg.RabbitMQ.AuditQueue)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "pos-events", cfg.Kafka.Topic)
	assert.Equal(t, 12*time.Hour, cfg.CartTTL)
}

func TestLoadEventsConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
rabbitmq:
  enabled: true
  exchange: resto.events
kafka:
  brokers:
    - k1:9092
    - k2:9092
cart:
  ttl: 30m
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "events.yaml"), yaml, 0o644))
	t.Setenv("EVENTS_KAFKA_TOPIC", "resto-events")

	cfg, err := LoadEventsConfig(dir)
	require.NoError(t, err)

	assert.True(t, cfg.RabbitMQ.Enabled)
	assert.Equal(t, "resto.events", cfg.RabbitMQ.Exchange)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "resto-events", cfg.Kafka.Topic)
	assert.Equal(t, 30*time.Minute, cfg.CartTTL)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a:1", "b:2", "c:3"}, splitList([]string{"a:1, b:2", " c:3 ", ""}))
	assert.Nil(t, splitList(nil))
}
