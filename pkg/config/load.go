package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "URLCAT_"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// Environment variables are not consulted; use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides (URLCAT_SECTION_FIELD). Environment variables
// always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// LoadConfigOrDefault behaves like LoadConfigWithEnvOverrides, except that an
// empty path or a missing file yields the defaults (with overrides applied).
func LoadConfigOrDefault(path string) (*Config, error) {
	if path != "" {
		cfg, err := LoadConfigWithEnvOverrides(path)
		if err == nil || !errors.Is(err, fs.ErrNotExist) {
			return cfg, err
		}
	}

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Rules overrides
	envString("RULES_FILE", &cfg.Rules.File)
	envString("RULES_ENCODING", &cfg.Rules.Encoding)
	envInt64("RULES_MAX_FILE_SIZE", &cfg.Rules.MaxFileSize)
	envInt("RULES_MAX_DEPTH", &cfg.Rules.MaxDepth)
	envBool("RULES_STRICT", &cfg.Rules.Strict)
	envBool("RULES_WATCH", &cfg.Rules.Watch)
	envDuration("RULES_DEBOUNCE", &cfg.Rules.Debounce)
	envString("RULES_RELOAD_SCHEDULE", &cfg.Rules.ReloadSchedule)

	// Input overrides
	envString("INPUT_ENCODING", &cfg.Input.Encoding)
	envString("INPUT_DELIMITER", &cfg.Input.Delimiter)
	envInt("INPUT_IGNORE_LINES", &cfg.Input.IgnoreLines)
	if val := os.Getenv(EnvPrefix + "INPUT_FIELDS"); val != "" {
		cfg.Input.Fields = splitList(val)
	}

	// Output overrides
	envString("OUTPUT_PATH", &cfg.Output.Path)
	envString("OUTPUT_FORMAT", &cfg.Output.Format)
	envString("OUTPUT_ENCODING", &cfg.Output.Encoding)

	envInt("WORKERS", &cfg.Workers)

	// Server overrides
	envString("SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	envDuration("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	envDuration("SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout)
	envDuration("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	envInt("SERVER_MAX_HEADER_BYTES", &cfg.Server.MaxHeaderBytes)
	envInt("SERVER_MAX_BATCH_SIZE", &cfg.Server.MaxBatchSize)
	envBool("SERVER_TLS_ENABLED", &cfg.Server.TLS.Enabled)
	envString("SERVER_TLS_CERT_FILE", &cfg.Server.TLS.CertFile)
	envString("SERVER_TLS_KEY_FILE", &cfg.Server.TLS.KeyFile)
	envString("SERVER_TLS_MIN_VERSION", &cfg.Server.TLS.MinVersion)
	envString("SERVER_TLS_CLIENT_CA_FILE", &cfg.Server.TLS.ClientCAFile)
	envFloat("SERVER_RATE_LIMIT_REQUESTS_PER_SECOND", &cfg.Server.RateLimit.RequestsPerSecond)
	envInt("SERVER_RATE_LIMIT_BURST", &cfg.Server.RateLimit.Burst)
	envInt("SERVER_RATE_LIMIT_MAX_CONCURRENT", &cfg.Server.RateLimit.MaxConcurrent)
	if val := os.Getenv(EnvPrefix + "SERVER_RELOAD_API_KEYS"); val != "" {
		cfg.Server.ReloadAPIKeys = splitList(val)
	}

	// Logging overrides
	envString("LOGGING_LEVEL", &cfg.Logging.Level)
	envString("LOGGING_FORMAT", &cfg.Logging.Format)
	envBool("LOGGING_ADD_SOURCE", &cfg.Logging.AddSource)
	envBool("LOGGING_REDACT_QUERY", &cfg.Logging.RedactQuery)

	// Metrics overrides
	envBool("METRICS_ENABLED", &cfg.Metrics.Enabled)
	envString("METRICS_PATH", &cfg.Metrics.Path)
	envString("METRICS_NAMESPACE", &cfg.Metrics.Namespace)
	envString("METRICS_SUBSYSTEM", &cfg.Metrics.Subsystem)

	// Tracing overrides
	envBool("TRACING_ENABLED", &cfg.Tracing.Enabled)
	envString("TRACING_SAMPLER", &cfg.Tracing.Sampler)
	envFloat("TRACING_SAMPLE_RATIO", &cfg.Tracing.SampleRatio)
	envString("TRACING_ENDPOINT", &cfg.Tracing.Endpoint)
	envString("TRACING_SERVICE_NAME", &cfg.Tracing.ServiceName)
	envBool("TRACING_INSECURE", &cfg.Tracing.Insecure)
	envDuration("TRACING_TIMEOUT", &cfg.Tracing.Timeout)
}

func envString(name string, dst *string) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		*dst = val
	}
}

func envInt(name string, dst *int) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func envInt64(name string, dst *int64) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			*dst = i
		}
	}
}

func envFloat(name string, dst *float64) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			*dst = f
		}
	}
}

func envBool(name string, dst *bool) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envDuration(name string, dst *time.Duration) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}

// splitList splits a comma separated list, dropping empty items.
func splitList(val string) []string {
	var items []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
