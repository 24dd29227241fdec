package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/scenepool/pkg/errors"
)

func TestResolveConfigDefaults(t *testing.T) {
	v := viper.New()
	cmd := newSimulateCommand(v)
	require.NoError(t, cmd.ParseFlags(nil))

	cfg, err := resolveConfig(cmd, v)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Pool.MaxPreloadCount)
	assert.Equal(t, "catalog.yaml", cfg.Catalog.Path)
	assert.False(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.Tracing.Enabled)
}

func TestResolveConfigFlagsAndEnv(t *testing.T) {
	t.Setenv("SCENEPOOL_LOGGING_LEVEL", "debug")
	t.Setenv("SCENEPOOL_METRICS_NAMESPACE", "game")

	v := viper.New()
	cmd := newSimulateCommand(v)
	require.NoError(t, cmd.ParseFlags([]string{"--metrics-addr", ":9191", "--max-preload", "7", "--trace"}))

	cfg, err := resolveConfig(cmd, v)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Pool.MaxPreloadCount)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":9191", cfg.Metrics.Address)
	assert.Equal(t, "game", cfg.Metrics.Namespace)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Tracing.Enabled)
}

func TestResolveConfigFileThenOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenepool.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
pool:
  max_preload_count: 12
  warmup:
    - template: fx/spark
      count: 4
catalog:
  path: from-file.yaml
tracing:
  sampling_rate: 0.5
`), 0o600))
	t.Setenv("SCENEPOOL_CATALOG_PATH", "from-env.yaml")

	v := viper.New()
	cmd := newSimulateCommand(v)
	cmd.Flags().String("config", "", "")
	require.NoError(t, cmd.ParseFlags([]string{"--config", path}))

	cfg, err := resolveConfig(cmd, v)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Pool.MaxPreloadCount)
	require.Len(t, cfg.Pool.Warmup, 1)
	assert.Equal(t, "fx/spark", cfg.Pool.Warmup[0].Template)
	assert.Equal(t, "from-env.yaml", cfg.Catalog.Path)
	assert.InDelta(t, 0.5, cfg.Tracing.SamplingRate, 1e-9)
}

func TestResolveConfigRejectsInvalidValues(t *testing.T) {
	t.Setenv("SCENEPOOL_TRACING_SAMPLING_RATE", "2")

	v := viper.New()
	cmd := newSimulateCommand(v)
	require.NoError(t, cmd.ParseFlags(nil))

	_, err := resolveConfig(cmd, v)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}
