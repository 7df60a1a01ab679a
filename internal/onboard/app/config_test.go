package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	require.Equal(t, "onboard", cfg.Issuer)
	require.Equal(t, "onboard.db", cfg.DatabaseFile)
	require.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	require.Equal(t, "tenant-invitations", cfg.KafkaTopic)
	require.Equal(t, 5, cfg.MaxDeliveries)
	require.Equal(t, 15*time.Second, cfg.RetryInterval)
	require.Equal(t, time.Second, cfg.RetryBackoffUnit)
	require.Equal(t, 8080, cfg.Port)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("ONBOARD_KAFKA_BROKERS", "broker-a:9092, broker-b:9092")
	t.Setenv("ONBOARD_RETRY_BACKOFF_UNIT", "2s")
	t.Setenv("ONBOARD_MAX_DELIVERIES", "3")
	t.Setenv("ONBOARD_DEDUP_TTL", "300")

	cfg := LoadConfig()
	require.Equal(t, []string{"broker-a:9092", "broker-b:9092"}, cfg.KafkaBrokers)
	require.Equal(t, 2*time.Second, cfg.RetryBackoffUnit)
	require.Equal(t, 3, cfg.MaxDeliveries)

	// Bare integers parse as seconds.
	require.Equal(t, 5*time.Minute, cfg.DedupTTL)
}
