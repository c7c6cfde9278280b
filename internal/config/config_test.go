package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvConfigDefaults(t *testing.T) {
	t.Setenv("GATEWAY_BACKEND", BackendMemory)

	require.NoError(t, LoadEnvConfig())

	cfg := DefaultEnvConfig
	assert.Equal(t, "8080", cfg.APP_PORT)
	assert.Equal(t, BackendMemory, cfg.GATEWAY_BACKEND)
	assert.Equal(t, 3*time.Second, cfg.STREAM_INTERVAL)
	assert.Equal(t, 8, cfg.BATCH_MAX_CONCURRENCY)
	assert.Equal(t, 10*time.Minute, cfg.IDEMPOTENCY_TTL)
	assert.Equal(t, "info", cfg.LOG_LEVEL)
}

func TestLoadEnvConfigOverrides(t *testing.T) {
	t.Setenv("GATEWAY_BACKEND", BackendMemory)
	t.Setenv("STREAM_INTERVAL", "250ms")
	t.Setenv("BATCH_MAX_CONCURRENCY", "3")
	t.Setenv("IDEMPOTENCY_TTL", "30")

	require.NoError(t, LoadEnvConfig())

	assert.Equal(t, 250*time.Millisecond, DefaultEnvConfig.STREAM_INTERVAL)
	assert.Equal(t, 3, DefaultEnvConfig.BATCH_MAX_CONCURRENCY)
	assert.Equal(t, 30*time.Second, DefaultEnvConfig.IDEMPOTENCY_TTL)
}

func TestLoadEnvConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown backend", "GATEWAY_BACKEND", "mongo"},
		{"unknown log level", "LOG_LEVEL", "verbose"},
		{"bad elastic url", "ELASTIC_URL", "not a url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GATEWAY_BACKEND", BackendMemory)
			t.Setenv(tt.key, tt.val)

			assert.Error(t, LoadEnvConfig())
		})
	}
}

func TestDatastoreBackendRequiresProject(t *testing.T) {
	t.Setenv("GATEWAY_BACKEND", BackendDatastore)
	t.Setenv("DATASTORE_PROJECT_ID", "")

	assert.Error(t, LoadEnvConfig())

	t.Setenv("DATASTORE_PROJECT_ID", "demo-project")
	assert.NoError(t, LoadEnvConfig())
}
