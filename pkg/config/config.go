package config

import (
	"fmt"
	"strings"

	"github.com/ajitpratap0/scenepool/pkg/errors"
	"github.com/ajitpratap0/scenepool/pkg/pool"
)

// Config is the top-level scenepool configuration.
type Config struct {
	// Pool settings control warm-up and preload limits
	Pool PoolConfig `yaml:"pool" json:"pool" mapstructure:"pool"`

	// Catalog locates template definitions
	Catalog CatalogConfig `yaml:"catalog" json:"catalog" mapstructure:"catalog"`

	// Logging configures the structured logger
	Logging LoggingConfig `yaml:"logging" json:"logging" mapstructure:"logging"`

	// Metrics configures Prometheus exposition
	Metrics MetricsConfig `yaml:"metrics" json:"metrics" mapstructure:"metrics"`

	// Tracing configures OpenTelemetry spans around template loads
	Tracing TracingConfig `yaml:"tracing" json:"tracing" mapstructure:"tracing"`
}

// PoolConfig contains pool behavior settings.
type PoolConfig struct {
	// MaxPreloadCount caps how many instances a single warm-up call creates
	MaxPreloadCount int `yaml:"max_preload_count" json:"max_preload_count" mapstructure:"max_preload_count"`
	// Warmup lists templates prepared when the pool starts
	Warmup []WarmupEntry `yaml:"warmup" json:"warmup" mapstructure:"warmup"`
}

// WarmupEntry requests count idle instances of a template.
type WarmupEntry struct {
	Template string `yaml:"template" json:"template" mapstructure:"template"`
	Count    int    `yaml:"count" json:"count" mapstructure:"count"`
}

// CatalogConfig locates the template catalog.
type CatalogConfig struct {
	// Path to a YAML or JSON catalog, optionally .zst or .lz4 compressed
	Path string `yaml:"path" json:"path" mapstructure:"path"`
}

// LoggingConfig contains logger settings.
type LoggingConfig struct {
	Level       string `yaml:"level" json:"level" mapstructure:"level"`
	Encoding    string `yaml:"encoding" json:"encoding" mapstructure:"encoding"`
	Development bool   `yaml:"development" json:"development" mapstructure:"development"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	Address   string `yaml:"address" json:"address" mapstructure:"address"`
	Namespace string `yaml:"namespace" json:"namespace" mapstructure:"namespace"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	ServiceName  string  `yaml:"service_name" json:"service_name" mapstructure:"service_name"`
	SamplingRate float64 `yaml:"sampling_rate" json:"sampling_rate" mapstructure:"sampling_rate"`
}

// Default returns a Config with production-ready defaults.
func Default() *Config {
	return &Config{
		Pool: PoolConfig{
			MaxPreloadCount: pool.DefaultMaxPreloadCount,
		},
		Catalog: CatalogConfig{
			Path: "catalog.yaml",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "json",
		},
		Metrics: MetricsConfig{
			Enabled:   false,
			Address:   ":9090",
			Namespace: "scenepool",
		},
		Tracing: TracingConfig{
			Enabled:      false,
			ServiceName:  "scenepool",
			SamplingRate: 1.0,
		},
	}
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.Pool.MaxPreloadCount <= 0 {
		return invalid("pool.max_preload_count must be positive")
	}
	for i, w := range c.Pool.Warmup {
		if strings.TrimSpace(w.Template) == "" {
			return invalid(fmt.Sprintf("pool.warmup[%d].template is required", i))
		}
		if w.Count < 0 {
			return invalid(fmt.Sprintf("pool.warmup[%d].count cannot be negative", i))
		}
	}
	switch c.Logging.Encoding {
	case "", "json", "console":
	default:
		return invalid(fmt.Sprintf("logging.encoding %q must be json or console", c.Logging.Encoding))
	}
	if c.Metrics.Enabled && c.Metrics.Address == "" {
		return invalid("metrics.address is required when metrics are enabled")
	}
	if c.Tracing.SamplingRate < 0 || c.Tracing.SamplingRate > 1 {
		return invalid("tracing.sampling_rate must be between 0 and 1")
	}
	return nil
}

// WarmupTotal returns the number of instances the warm-up list requests,
// with each entry clamped to the preload limit.
func (p *PoolConfig) WarmupTotal() int {
	total := 0
	for _, w := range p.Warmup {
		n := w.Count
		if n > p.MaxPreloadCount {
			n = p.MaxPreloadCount
		}
		total += n
	}
	return total
}

func invalid(msg string) error {
	return errors.New(errors.ErrorTypeConfig, msg)
}
