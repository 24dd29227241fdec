package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ajitpratap0/scenepool/pkg/config"
	"github.com/ajitpratap0/scenepool/pkg/errors"
)

// envPrefix namespaces environment overrides: SCENEPOOL_CATALOG_PATH
// overrides catalog.path.
const envPrefix = "SCENEPOOL"

// overridable lists the configuration keys that flags and environment
// variables may override.
var overridable = []string{
	"pool.max_preload_count",
	"catalog.path",
	"logging.level",
	"logging.encoding",
	"logging.development",
	"metrics.enabled",
	"metrics.address",
	"metrics.namespace",
	"tracing.enabled",
	"tracing.service_name",
	"tracing.sampling_rate",
}

func bindFlag(v *viper.Viper, key string, flag *pflag.Flag) {
	if flag == nil {
		return
	}
	_ = v.BindPFlag(key, flag)
}

// resolveConfig layers defaults, the optional YAML file, environment
// variables and explicitly set flags, in increasing precedence.
func resolveConfig(cmd *cobra.Command, v *viper.Viper) (*config.Config, error) {
	cfg := config.Default()

	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		if err := config.LoadInto(path, cfg); err != nil {
			return nil, err
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range overridable {
		_ = v.BindEnv(key)
	}

	if v.IsSet("pool.max_preload_count") {
		cfg.Pool.MaxPreloadCount = v.GetInt("pool.max_preload_count")
	}
	if v.IsSet("catalog.path") {
		cfg.Catalog.Path = v.GetString("catalog.path")
	}
	if v.IsSet("logging.level") {
		cfg.Logging.Level = v.GetString("logging.level")
	}
	if v.IsSet("logging.encoding") {
		cfg.Logging.Encoding = v.GetString("logging.encoding")
	}
	if v.IsSet("logging.development") {
		cfg.Logging.Development = v.GetBool("logging.development")
	}
	if v.IsSet("metrics.address") {
		cfg.Metrics.Address = v.GetString("metrics.address")
		cfg.Metrics.Enabled = cfg.Metrics.Address != ""
	}
	if v.IsSet("metrics.enabled") {
		cfg.Metrics.Enabled = v.GetBool("metrics.enabled")
	}
	if v.IsSet("metrics.namespace") {
		cfg.Metrics.Namespace = v.GetString("metrics.namespace")
	}
	if v.IsSet("tracing.enabled") {
		cfg.Tracing.Enabled = v.GetBool("tracing.enabled")
	}
	if v.IsSet("tracing.service_name") {
		cfg.Tracing.ServiceName = v.GetString("tracing.service_name")
	}
	if v.IsSet("tracing.sampling_rate") {
		cfg.Tracing.SamplingRate = v.GetFloat64("tracing.sampling_rate")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid configuration")
	}
	return cfg, nil
}
