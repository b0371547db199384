package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "mc-scenario-pricer", cfg.App.Name)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, 120*time.Second, cfg.API.WriteTimeout)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, "pricing.results", cfg.Kafka.Topic)
	assert.Equal(t, 5_000_000, cfg.Engine.MaxPaths)
	assert.Equal(t, 1_000_000, cfg.Engine.MaxRows)
	assert.Equal(t, int64(1<<20), cfg.API.MaxBodyBytes)
	assert.Equal(t, 2.0, cfg.API.RateLimit)
	assert.Equal(t, 4, cfg.API.RateBurst)
	assert.Equal(t, uint32(5), cfg.Kafka.Breaker.MaxFailures)
	assert.Equal(t, 30*time.Second, cfg.Kafka.Breaker.Timeout)

	params := cfg.SimulationParameters()
	assert.Equal(t, 3.0, params.RiskFreeRate)
	assert.Equal(t, 50000.0, params.Spot)
	assert.Equal(t, 2.5, params.SpotStep)
	assert.Equal(t, 20.0, params.Volatility)
	assert.Equal(t, 10000, params.Paths)
	assert.Equal(t, []float64{4, 5, 6}, params.Maturities)
	assert.Equal(t, []float64{50000, 52000}, params.Strikes)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
app:
  log_level: debug
engine:
  workers: 6
  seed: 1234
simulation:
  s0: 100
  n_paths: 500
  maturities: [1]
  strikes: [90, 100, 110]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, 6, cfg.Engine.Workers)
	assert.Equal(t, uint64(1234), cfg.Engine.Seed)
	assert.Equal(t, 100.0, cfg.Simulation.Spot)
	assert.Equal(t, 500, cfg.Simulation.Paths)
	assert.Equal(t, []float64{1}, cfg.Simulation.Maturities)
	assert.Equal(t, []float64{90, 100, 110}, cfg.Simulation.Strikes)
	// untouched keys keep their defaults
	assert.Equal(t, 20.0, cfg.Simulation.Volatility)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("MCPRICER_SIMULATION_N_PATHS", "2500")
	t.Setenv("MCPRICER_KAFKA_ENABLED", "true")
	t.Setenv("MCPRICER_API_PORT", "9999")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 2500, cfg.Simulation.Paths)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, 9999, cfg.API.Port)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app: [unterminated"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
