package config

import "time"

// Config is the root configuration structure for urlcat.
type Config struct {
	// Rules configures where rules come from and how they are reloaded.
	Rules RulesConfig `yaml:"rules"`

	// Input configures how batch CSV input is read.
	Input InputConfig `yaml:"input"`

	// Output configures where batch results are written.
	Output OutputConfig `yaml:"output"`

	// Workers is the number of concurrent evaluation workers for batch runs.
	// Zero selects one worker per CPU.
	Workers int `yaml:"workers"`

	// Server configures the HTTP API.
	Server ServerConfig `yaml:"server"`

	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures the Prometheus collector.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing configures OpenTelemetry span export.
	Tracing TracingConfig `yaml:"tracing"`
}

// RulesConfig contains configuration for the categorization rule file.
type RulesConfig struct {
	// File is the path of the rule file.
	// Default: "categorization.txt"
	File string `yaml:"file"`

	// Encoding is the character encoding of the rule file.
	// Default: "utf-8"
	Encoding string `yaml:"encoding"`

	// MaxFileSize is the largest rule file accepted, in bytes.
	// Default: 10485760 (10MB)
	MaxFileSize int64 `yaml:"max_file_size"`

	// MaxDepth is the deepest boolean nesting accepted.
	// Default: 64
	MaxDepth int `yaml:"max_depth"`

	// Strict makes lint warnings fail a load.
	// Default: false
	Strict bool `yaml:"strict"`

	// Watch reloads the rules when the file changes.
	// Default: false
	Watch bool `yaml:"watch"`

	// Debounce is the quiet period after a file event before reloading.
	// Default: 100ms
	Debounce time.Duration `yaml:"debounce"`

	// ReloadSchedule is an optional standard cron expression for periodic reloads.
	// Default: "" (disabled)
	ReloadSchedule string `yaml:"reload_schedule"`
}

// InputConfig contains configuration for batch CSV input.
type InputConfig struct {
	// Encoding is the character encoding of the input file (WHATWG label).
	// Default: "utf-8"
	Encoding string `yaml:"encoding"`

	// Delimiter is the single-character field separator.
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// IgnoreLines is the number of raw lines skipped before the header row.
	// Default: 0
	IgnoreLines int `yaml:"ignore_lines"`

	// Fields lists the columns holding URLs to categorize.
	Fields []string `yaml:"fields"`
}

// OutputConfig contains configuration for batch results.
type OutputConfig struct {
	// Path is the output file.
	// Default: "result.csv"
	Path string `yaml:"path"`

	// Format is one of "csv", "jsonl" or "sqlite".
	// Default: "csv"
	Format string `yaml:"format"`

	// Encoding is the character encoding of CSV output.
	// Default: the input encoding
	Encoding string `yaml:"encoding"`
}

// ServerConfig contains configuration for the HTTP API.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum time to wait for the next keep-alive request.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits the size of request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxBatchSize is the largest number of URLs accepted by one POST /v1/categorize.
	// Default: 1000
	MaxBatchSize int `yaml:"max_batch_size"`

	// TLS serves HTTPS when enabled.
	TLS TLSConfig `yaml:"tls"`

	// RateLimit throttles the /v1 API per client address.
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// ReloadAPIKeys protect POST /v1/rules/reload when set. Entries are
	// "key" or "name:key".
	ReloadAPIKeys []string `yaml:"reload_api_keys"`
}

// TLSConfig contains HTTPS settings for the API server.
type TLSConfig struct {
	// Enabled switches the listener to TLS.
	Enabled bool `yaml:"enabled"`

	// CertFile is the PEM-encoded certificate chain.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the PEM-encoded private key.
	KeyFile string `yaml:"key_file"`

	// MinVersion is "1.2" or "1.3".
	// Default: "1.3"
	MinVersion string `yaml:"min_version"`

	// ClientCAFile enables mutual TLS when set: clients must present a
	// certificate signed by one of these CAs.
	ClientCAFile string `yaml:"client_ca_file"`

	// ReloadInterval is how often the certificate files are checked for
	// changes. Zero disables reloading.
	// Default: 5m
	ReloadInterval time.Duration `yaml:"cert_reload_interval"`
}

// RateLimitConfig throttles API clients. Zero values disable a limit.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained request rate per client address.
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// Burst is the number of requests a client may send at once.
	// Default: twice RequestsPerSecond
	Burst int `yaml:"burst"`

	// MaxConcurrent caps in-flight API requests across all clients.
	MaxConcurrent int `yaml:"max_concurrent"`
}

// Enabled reports whether any limit is configured.
func (c RateLimitConfig) Enabled() bool {
	return c.RequestsPerSecond > 0 || c.MaxConcurrent > 0
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum level: "debug", "info", "warn" or "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is "json", "text" or "console".
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactQuery masks sensitive query parameters of logged URLs.
	// Default: true
	RedactQuery bool `yaml:"redact_query"`

	// SensitiveParams overrides the words marking a query parameter as sensitive.
	SensitiveParams []string `yaml:"sensitive_params"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path of the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "urlcat"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "categorizer"
	Subsystem string `yaml:"subsystem"`

	// DurationBuckets defines histogram buckets for evaluation duration (seconds).
	// Default: exponential from 1µs to ~16ms
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector address.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "urlcat"
	ServiceName string `yaml:"service_name"`

	// Insecure disables TLS for the collector connection.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export call.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}
