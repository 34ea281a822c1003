// Package config provides runtime configuration from environment variables.
//
// # Overview
//
// This package loads and validates the CSTYLE_* environment variables. They
// sit between the .cstyle.yaml file (rule selection, see pkg/linter) and
// command-line flags in precedence, and supply the flag defaults.
//
// # Configuration Structure
//
// Check settings:
//
//	CSTYLE_CONFIG="ci/cstyle.yaml"
//	CSTYLE_WORKERS="8"            # default: number of CPUs
//	CSTYLE_FORMAT="record"        # text, record, json, github
//	CSTYLE_MAX_SEVERITY="warning" # error, warning, info
//	CSTYLE_COLOR="true"           # ignored when NO_COLOR is set
//
// Watch settings:
//
//	CSTYLE_CACHE_SIZE="1024"
//	CSTYLE_CACHE_TTL="10m"
//	CSTYLE_WATCH_DEBOUNCE="200ms"
//
// Observability settings:
//
//	CSTYLE_LOG_LEVEL="warn"  # debug, info, warn, error
//	CSTYLE_LOG_FORMAT="text" # text, json
//	CSTYLE_METRICS_FILE="/var/lib/node_exporter/cstyle.prom"
//	CSTYLE_OTEL_ENABLED="true"
//	CSTYLE_OTEL_ENDPOINT="otel-collector:4317"
//
// # Usage Example
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("Workers: %d\n", cfg.Check.Workers)
//
// # Related Packages
//
//   - pkg/cli: Uses these values as flag defaults
//   - pkg/observability: Uses observability configuration
package config
