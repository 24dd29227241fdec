package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/scenepool/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero preload", func(c *Config) { c.Pool.MaxPreloadCount = 0 }, "max_preload_count"},
		{"blank warmup template", func(c *Config) {
			c.Pool.Warmup = []WarmupEntry{{Template: "  ", Count: 1}}
		}, "pool.warmup[0].template"},
		{"negative warmup count", func(c *Config) {
			c.Pool.Warmup = []WarmupEntry{{Template: "a", Count: -1}}
		}, "cannot be negative"},
		{"bad encoding", func(c *Config) { c.Logging.Encoding = "xml" }, "logging.encoding"},
		{"metrics without address", func(c *Config) {
			c.Metrics.Enabled = true
			c.Metrics.Address = ""
		}, "metrics.address"},
		{"sampling rate", func(c *Config) { c.Tracing.SamplingRate = -0.1 }, "sampling_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	t.Setenv("SCENEPOOL_TEST_CATALOG", "/data/catalog.yaml.zst")

	path := filepath.Join(t.TempDir(), "scenepool.yaml")
	content := `
pool:
  max_preload_count: 80
  warmup:
    - template: fx/spark
      count: 30
catalog:
  path: ${SCENEPOOL_TEST_CATALOG}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 80, cfg.Pool.MaxPreloadCount)
	require.Len(t, cfg.Pool.Warmup, 1)
	assert.Equal(t, "fx/spark", cfg.Pool.Warmup[0].Template)
	assert.Equal(t, 30, cfg.Pool.Warmup[0].Count)
	assert.Equal(t, "/data/catalog.yaml.zst", cfg.Catalog.Path)
	// untouched sections keep their defaults
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "scenepool", cfg.Tracing.ServiceName)
}

func TestLoadValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pool:\n  max_preload_count: -3\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pool: [unterminated"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.Pool.Warmup = []WarmupEntry{{Template: "enemy/grunt", Count: 12}}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("SP_A", "alpha")
	t.Setenv("SP_SELF", "${SP_SELF}")

	assert.Equal(t, "x=alpha y=", substituteEnvVars("x=${SP_A} y=${SP_UNSET_VAR}"))
	// expanded values are not re-scanned
	assert.Equal(t, "${SP_SELF}", substituteEnvVars("${SP_SELF}"))
	assert.Equal(t, "open ${brace", substituteEnvVars("open ${brace"))
}
