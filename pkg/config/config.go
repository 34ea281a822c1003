package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/platinummonkey/cstyle/pkg/observability"
)

// Config holds the runtime settings taken from the environment. Rule
// selection lives in the YAML file (see linter.Config); these settings sit
// between the YAML file and command-line flags in precedence.
type Config struct {
	// Check configuration
	Check CheckConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// CheckConfig holds settings for check and watch runs
type CheckConfig struct {
	ConfigFile    string
	Workers       int
	Format        string // empty when unset
	MaxSeverity   string // empty when unset
	Color         bool
	CacheSize     int
	CacheTTL      time.Duration
	WatchDebounce time.Duration
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel  observability.LogLevel
	LogFormat observability.LogFormat

	// Metrics
	MetricsFile string

	// OpenTelemetry
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool // Use insecure gRPC connection
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	obs, err := loadObservabilityConfig()
	if err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	cfg := &Config{
		Check:         loadCheckConfig(),
		Observability: obs,
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadCheckConfig loads check settings from environment
func loadCheckConfig() CheckConfig {
	_, noColor := os.LookupEnv("NO_COLOR")
	return CheckConfig{
		ConfigFile:    getEnv("CSTYLE_CONFIG", ""),
		Workers:       getEnvInt("CSTYLE_WORKERS", runtime.NumCPU()),
		Format:        getEnv("CSTYLE_FORMAT", ""),
		MaxSeverity:   getEnv("CSTYLE_MAX_SEVERITY", ""),
		Color:         getEnvBool("CSTYLE_COLOR", false) && !noColor,
		CacheSize:     getEnvInt("CSTYLE_CACHE_SIZE", 1024),
		CacheTTL:      getEnvDuration("CSTYLE_CACHE_TTL", 10*time.Minute),
		WatchDebounce: getEnvDuration("CSTYLE_WATCH_DEBOUNCE", 200*time.Millisecond),
	}
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() (ObservabilityConfig, error) {
	level, err := observability.ParseLogLevel(getEnv("CSTYLE_LOG_LEVEL", "warn"))
	if err != nil {
		return ObservabilityConfig{}, fmt.Errorf("CSTYLE_LOG_LEVEL: %w", err)
	}

	return ObservabilityConfig{
		LogLevel:           level,
		LogFormat:          observability.LogFormat(strings.ToLower(getEnv("CSTYLE_LOG_FORMAT", string(observability.TextFormat)))),
		MetricsFile:        getEnv("CSTYLE_METRICS_FILE", ""),
		OTelEnabled:        getEnvBool("CSTYLE_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("CSTYLE_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("CSTYLE_OTEL_SERVICE_NAME", "cstyle"),
		OTelServiceVersion: getEnv("CSTYLE_OTEL_SERVICE_VERSION", "dev"),
		OTelInsecure:       getEnvBool("CSTYLE_OTEL_INSECURE", true),
	}, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Check.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Check.Workers)
	}
	if c.Check.CacheSize < 1 {
		return fmt.Errorf("cache size must be at least 1, got %d", c.Check.CacheSize)
	}

	switch c.Observability.LogFormat {
	case observability.TextFormat, observability.JSONFormat:
	default:
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Observability.LogFormat)
	}

	// Validate OpenTelemetry config
	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// OTel returns the OpenTelemetry settings for observability.InitOTel
func (c *Config) OTel() observability.OTelConfig {
	return observability.OTelConfig{
		Enabled:        c.Observability.OTelEnabled,
		Endpoint:       c.Observability.OTelEndpoint,
		ServiceName:    c.Observability.OTelServiceName,
		ServiceVersion: c.Observability.OTelServiceVersion,
		Insecure:       c.Observability.OTelInsecure,
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
