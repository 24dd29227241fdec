// Package config provides configuration management for scenepool.
//
// A single Config structure covers the pool, the template catalog it loads
// from, and the observability stack around it.
//
// # Sections
//
//   - Pool: preload limit and templates to warm up at startup
//   - Catalog: where template definitions are read from
//   - Logging: level, encoding, development mode
//   - Metrics: Prometheus exposition address and namespace
//   - Tracing: OpenTelemetry service name and sampling rate
//
// # Loading
//
//	cfg, err := config.Load("scenepool.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Load starts from Default, overlays the file, and validates the result.
// Validation failures are *errors.Error values of type config.
//
// # Environment Variable Substitution
//
//	# scenepool.yaml
//	catalog:
//	  path: ${SCENEPOOL_CATALOG}
//	pool:
//	  max_preload_count: 80
//	  warmup:
//	    - template: fx/spark
//	      count: 30
//
// References to unset variables expand to the empty string.
package config
