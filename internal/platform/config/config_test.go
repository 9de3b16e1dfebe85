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

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 6, cfg.Lifecycle.SuspensionTerminationThreshold)
	assert.Equal(t, 3, cfg.Lifecycle.RejectionBlacklistThreshold)
	assert.Equal(t, 5*time.Minute, cfg.Lifecycle.ReconcileInterval)
	assert.Empty(t, cfg.Database.URL)
	assert.Zero(t, cfg.Redis.RejectionTTL)
	assert.Equal(t, "provider-lifecycle", cfg.Kafka.Topic)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("REJECTION_BLACKLIST_THRESHOLD", "5")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("REDIS_REJECTION_TTL", "720h")
	t.Setenv("DATABASE_URL", "postgres://caregate@localhost:5432/caregate")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "40")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://caregate@localhost:5432/caregate", cfg.Database.URL)
	assert.Equal(t, 40, cfg.Database.MaxOpenConns)
	assert.Equal(t, 720*time.Hour, cfg.Redis.RejectionTTL)

	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5, cfg.Lifecycle.RejectionBlacklistThreshold)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
}

func TestLoadRejectsNonPositiveThreshold(t *testing.T) {
	t.Setenv("SUSPENSION_TERMINATION_THRESHOLD", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUSPENSION_TERMINATION_THRESHOLD")
}

func TestLoadRejectsNonPositiveIntervals(t *testing.T) {
	for _, name := range []string{"RECONCILE_INTERVAL", "BLACKLIST_CLEANUP_INTERVAL", "EVENT_FLUSH_INTERVAL"} {
		t.Run(name, func(t *testing.T) {
			t.Setenv(name, "0s")

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), name)
		})
	}
}

func TestLoadRejectsNegativeRejectionTTL(t *testing.T) {
	t.Setenv("REDIS_REJECTION_TTL", "-1h")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_REJECTION_TTL")
}
