package config

import (
	"fmt"
	"net"
	"strings"
	"unicode/utf8"

	"github.com/robfig/cron/v3"

	"mercator-hq/urlcat/pkg/charset"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateRules(&cfg.Rules)...)
	errs = append(errs, validateInput(&cfg.Input)...)
	errs = append(errs, validateOutput(&cfg.Output)...)
	if cfg.Workers < 0 {
		errs = append(errs, FieldError{Field: "workers", Message: "must not be negative"})
	}
	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)
	errs = append(errs, validateMetrics(&cfg.Metrics)...)
	errs = append(errs, validateTracing(&cfg.Tracing)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateRules(cfg *RulesConfig) []FieldError {
	var errs []FieldError

	if cfg.File == "" {
		errs = append(errs, FieldError{Field: "rules.file", Message: "must not be empty"})
	}
	if _, err := charset.Lookup(cfg.Encoding); err != nil {
		errs = append(errs, FieldError{Field: "rules.encoding", Message: err.Error()})
	}
	if cfg.MaxFileSize < 0 {
		errs = append(errs, FieldError{Field: "rules.max_file_size", Message: "must not be negative"})
	}
	if cfg.MaxDepth < 1 {
		errs = append(errs, FieldError{Field: "rules.max_depth", Message: "must be at least 1"})
	}
	if cfg.Debounce < 0 {
		errs = append(errs, FieldError{Field: "rules.debounce", Message: "must not be negative"})
	}
	if cfg.ReloadSchedule != "" {
		if _, err := cron.ParseStandard(cfg.ReloadSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "rules.reload_schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}

	return errs
}

func validateInput(cfg *InputConfig) []FieldError {
	var errs []FieldError

	if _, err := charset.Lookup(cfg.Encoding); err != nil {
		errs = append(errs, FieldError{Field: "input.encoding", Message: err.Error()})
	}
	if utf8.RuneCountInString(cfg.Delimiter) != 1 {
		errs = append(errs, FieldError{Field: "input.delimiter", Message: "must be exactly one character"})
	} else if cfg.Delimiter == "\"" || cfg.Delimiter == "\n" || cfg.Delimiter == "\r" {
		errs = append(errs, FieldError{Field: "input.delimiter", Message: fmt.Sprintf("%q cannot be used as delimiter", cfg.Delimiter)})
	}
	if cfg.IgnoreLines < 0 {
		errs = append(errs, FieldError{Field: "input.ignore_lines", Message: "must not be negative"})
	}
	for i, field := range cfg.Fields {
		if strings.TrimSpace(field) == "" {
			errs = append(errs, FieldError{Field: fmt.Sprintf("input.fields[%d]", i), Message: "must not be empty"})
		}
	}

	return errs
}

func validateOutput(cfg *OutputConfig) []FieldError {
	var errs []FieldError

	switch cfg.Format {
	case "csv", "jsonl", "sqlite":
	default:
		errs = append(errs, FieldError{
			Field:   "output.format",
			Message: fmt.Sprintf("must be one of csv, jsonl, sqlite (got %q)", cfg.Format),
		})
	}
	if cfg.Path == "" {
		errs = append(errs, FieldError{Field: "output.path", Message: "must not be empty"})
	}
	if _, err := charset.Lookup(cfg.Encoding); err != nil {
		errs = append(errs, FieldError{Field: "output.encoding", Message: err.Error()})
	}

	return errs
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("invalid address %q: %v", cfg.ListenAddress, err),
		})
	}
	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.read_timeout", Message: "must not be negative"})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.write_timeout", Message: "must not be negative"})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.idle_timeout", Message: "must not be negative"})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.shutdown_timeout", Message: "must not be negative"})
	}
	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{Field: "server.max_header_bytes", Message: "must not be negative"})
	}
	if cfg.MaxBatchSize < 1 {
		errs = append(errs, FieldError{Field: "server.max_batch_size", Message: "must be at least 1"})
	}

	if cfg.TLS.Enabled {
		if cfg.TLS.CertFile == "" {
			errs = append(errs, FieldError{Field: "server.tls.cert_file", Message: "required when TLS is enabled"})
		}
		if cfg.TLS.KeyFile == "" {
			errs = append(errs, FieldError{Field: "server.tls.key_file", Message: "required when TLS is enabled"})
		}
		if cfg.TLS.MinVersion != "1.2" && cfg.TLS.MinVersion != "1.3" {
			errs = append(errs, FieldError{
				Field:   "server.tls.min_version",
				Message: fmt.Sprintf("unsupported TLS version %q (must be 1.2 or 1.3)", cfg.TLS.MinVersion),
			})
		}
		if cfg.TLS.ReloadInterval < 0 {
			errs = append(errs, FieldError{Field: "server.tls.cert_reload_interval", Message: "must not be negative"})
		}
	}

	if cfg.RateLimit.RequestsPerSecond < 0 {
		errs = append(errs, FieldError{Field: "server.rate_limit.requests_per_second", Message: "must not be negative"})
	}
	if cfg.RateLimit.Burst < 0 {
		errs = append(errs, FieldError{Field: "server.rate_limit.burst", Message: "must not be negative"})
	}
	if cfg.RateLimit.MaxConcurrent < 0 {
		errs = append(errs, FieldError{Field: "server.rate_limit.max_concurrent", Message: "must not be negative"})
	}
	for i, entry := range cfg.ReloadAPIKeys {
		if _, key, ok := strings.Cut(entry, ":"); (ok && key == "") || entry == "" {
			errs = append(errs, FieldError{Field: fmt.Sprintf("server.reload_api_keys[%d]", i), Message: "key must not be empty"})
		}
	}

	return errs
}

func validateLogging(cfg *LoggingConfig) []FieldError {
	var errs []FieldError

	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "logging.level",
			Message: fmt.Sprintf("must be one of debug, info, warn, error (got %q)", cfg.Level),
		})
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text", "console":
	default:
		errs = append(errs, FieldError{
			Field:   "logging.format",
			Message: fmt.Sprintf("must be one of json, text, console (got %q)", cfg.Format),
		})
	}

	return errs
}

func validateMetrics(cfg *MetricsConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return errs
	}
	if !strings.HasPrefix(cfg.Path, "/") {
		errs = append(errs, FieldError{Field: "metrics.path", Message: "must start with /"})
	}
	for i := 1; i < len(cfg.DurationBuckets); i++ {
		if cfg.DurationBuckets[i] <= cfg.DurationBuckets[i-1] {
			errs = append(errs, FieldError{Field: "metrics.duration_buckets", Message: "must be strictly increasing"})
			break
		}
	}

	return errs
}

func validateTracing(cfg *TracingConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return errs
	}
	if cfg.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	switch cfg.Sampler {
	case "always", "never", "ratio":
	default:
		errs = append(errs, FieldError{
			Field:   "tracing.sampler",
			Message: fmt.Sprintf("must be one of always, never, ratio (got %q)", cfg.Sampler),
		})
	}
	if cfg.SampleRatio < 0 || cfg.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}
	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{Field: "tracing.timeout", Message: "must not be negative"})
	}

	return errs
}
