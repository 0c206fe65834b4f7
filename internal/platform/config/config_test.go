package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"COOPREG_ADDR", "DATABASE_URL", "REDIS_URL", "KAFKA_BROKERS", "JWT_SIGNING_KEY", "RATE_LIMIT_PER_MINUTE"} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "coopreg", cfg.Server.JWTIssuer)
	assert.True(t, cfg.UsesDevSigningKey())
	assert.Empty(t, cfg.Database.URL)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "coopreg.application-status", cfg.Kafka.Topic)
	assert.Equal(t, 120, cfg.RateLimit.PerMinute)
	assert.Equal(t, 2*time.Second, cfg.Outbox.PollInterval)
	assert.Equal(t, 4, cfg.Workflow.BulkAssignConcurrency)
	assert.Equal(t, "manual", cfg.Workflow.DocumentVerifier)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("COOPREG_ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("OUTBOX_POLL_INTERVAL", "500ms")
	t.Setenv("BULK_ASSIGN_CONCURRENCY", "8")
	t.Setenv("DOCUMENT_VERIFIER", "http")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 500*time.Millisecond, cfg.Outbox.PollInterval)
	assert.Equal(t, 8, cfg.Workflow.BulkAssignConcurrency)
	assert.Equal(t, "http", cfg.Workflow.DocumentVerifier)
}

func TestFromEnvReportsMalformedValues(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_MINUTE", "lots")
	t.Setenv("OUTBOX_POLL_INTERVAL", "soon")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RATE_LIMIT_PER_MINUTE")
	assert.Contains(t, err.Error(), "OUTBOX_POLL_INTERVAL")
}

func TestValidate(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	cfg.Workflow.DocumentVerifier = "oracle"
	cfg.RateLimit.PerMinute = 0
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
	assert.Contains(t, err.Error(), "rate limit")
}
