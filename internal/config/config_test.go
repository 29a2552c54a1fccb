package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoobzio/herald"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "drain", cfg.ShutdownPolicy)
	assert.Equal(t, herald.PolicyDrain, cfg.Policy())
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.MetricsAddr)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HERALD_LOG_LEVEL", "debug")
	t.Setenv("HERALD_SHUTDOWN_POLICY", "abandon")
	t.Setenv("HERALD_SHUTDOWN_TIMEOUT", "2s")
	t.Setenv("HERALD_METRICS_ADDR", ":9100")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, herald.PolicyAbandon, cfg.Policy())
	assert.Equal(t, 2*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, ":9100", cfg.MetricsAddr)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"policy", "HERALD_SHUTDOWN_POLICY", "later"},
		{"log level", "HERALD_LOG_LEVEL", "trace"},
		{"timeout", "HERALD_SHUTDOWN_TIMEOUT", "0s"},
		{"timeout format", "HERALD_SHUTDOWN_TIMEOUT", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
