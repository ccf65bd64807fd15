package config

import (
	"math"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for configuration fields.
const (
	// Rules defaults
	DefaultRulesFile        = "categorization.txt"
	DefaultEncoding         = "utf-8"
	DefaultRulesMaxFileSize = int64(10 * 1024 * 1024)
	DefaultRulesMaxDepth    = 64
	DefaultRulesDebounce    = 100 * time.Millisecond

	// Input/output defaults
	DefaultDelimiter    = ","
	DefaultOutputPath   = "result.csv"
	DefaultOutputFormat = "csv"

	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB
	DefaultMaxBatchSize    = 1000
	DefaultTLSMinVersion   = "1.3"
	DefaultTLSReload       = 5 * time.Minute

	// Logging defaults
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"
	DefaultRedactQuery = true

	// Metrics defaults
	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "urlcat"
	DefaultMetricsSubsystem = "categorizer"

	// Tracing defaults
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingServiceName = "urlcat"
	DefaultTracingTimeout     = 10 * time.Second
)

// NewDefaultConfig returns a configuration with every default applied.
func NewDefaultConfig() *Config {
	cfg := &Config{
		Logging: LoggingConfig{RedactQuery: DefaultRedactQuery},
		Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults.
// Booleans whose default is true are handled by decode, see LoadConfig.
func ApplyDefaults(cfg *Config) {
	// Rules defaults
	if cfg.Rules.File == "" {
		cfg.Rules.File = DefaultRulesFile
	}
	if cfg.Rules.Encoding == "" {
		cfg.Rules.Encoding = DefaultEncoding
	}
	if cfg.Rules.MaxFileSize == 0 {
		cfg.Rules.MaxFileSize = DefaultRulesMaxFileSize
	}
	if cfg.Rules.MaxDepth == 0 {
		cfg.Rules.MaxDepth = DefaultRulesMaxDepth
	}
	if cfg.Rules.Debounce == 0 {
		cfg.Rules.Debounce = DefaultRulesDebounce
	}

	// Input defaults
	if cfg.Input.Encoding == "" {
		cfg.Input.Encoding = DefaultEncoding
	}
	if cfg.Input.Delimiter == "" {
		cfg.Input.Delimiter = DefaultDelimiter
	}

	// Output defaults
	if cfg.Output.Path == "" {
		cfg.Output.Path = DefaultOutputPath
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = DefaultOutputFormat
	}
	if cfg.Output.Encoding == "" {
		cfg.Output.Encoding = cfg.Input.Encoding
	}

	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.MaxBatchSize == 0 {
		cfg.Server.MaxBatchSize = DefaultMaxBatchSize
	}
	if cfg.Server.TLS.MinVersion == "" {
		cfg.Server.TLS.MinVersion = DefaultTLSMinVersion
	}
	if cfg.Server.TLS.ReloadInterval == 0 {
		cfg.Server.TLS.ReloadInterval = DefaultTLSReload
	}
	if cfg.Server.RateLimit.RequestsPerSecond > 0 && cfg.Server.RateLimit.Burst == 0 {
		cfg.Server.RateLimit.Burst = int(math.Ceil(cfg.Server.RateLimit.RequestsPerSecond * 2))
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}

	// Metrics defaults
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = DefaultMetricsSubsystem
	}

	// Tracing defaults
	if cfg.Tracing.Sampler == "" {
		cfg.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Tracing.SampleRatio == 0 && cfg.Tracing.Sampler == "ratio" {
		cfg.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Tracing.Timeout == 0 {
		cfg.Tracing.Timeout = DefaultTracingTimeout
	}
}

// decode parses YAML over a configuration whose true-by-default booleans are
// already set, so that only an explicit "false" turns them off.
func decode(data []byte) (*Config, error) {
	cfg := &Config{
		Logging: LoggingConfig{RedactQuery: DefaultRedactQuery},
		Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
