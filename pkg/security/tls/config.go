package tls

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log/slog"
	"os"

	"mercator-hq/urlcat/pkg/config"
)

// NewServerConfig builds a server TLS configuration from cfg. It returns
// nil values when TLS is disabled. The reloader serves the certificate and
// must be run to pick up changes on disk.
func NewServerConfig(cfg *config.TLSConfig, logger *slog.Logger) (*tls.Config, *CertificateReloader, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil, nil
	}
	if cfg.CertFile == "" || cfg.KeyFile == "" {
		return nil, nil, fmt.Errorf("cert_file and key_file are required when TLS is enabled")
	}

	minVersion, err := ParseVersion(cfg.MinVersion)
	if err != nil {
		return nil, nil, err
	}

	reloader := NewCertificateReloader(cfg.CertFile, cfg.KeyFile, cfg.ReloadInterval, logger)
	if err := reloader.Load(); err != nil {
		return nil, nil, err
	}

	// #nosec G402 - MinVersion is limited to 1.2 and 1.3 by ParseVersion
	tlsConfig := &tls.Config{
		MinVersion:     minVersion,
		GetCertificate: reloader.GetCertificateFunc(),
	}

	if cfg.ClientCAFile != "" {
		pool, err := loadCertPool(cfg.ClientCAFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to configure mTLS: %w", err)
		}
		tlsConfig.ClientCAs = pool
		tlsConfig.ClientAuth = tls.RequireAndVerifyClientCert
	}

	return tlsConfig, reloader, nil
}

// ParseVersion converts "1.2" or "1.3" to a tls version constant. An empty
// string selects TLS 1.3.
func ParseVersion(v string) (uint16, error) {
	switch v {
	case "1.3", "":
		return tls.VersionTLS13, nil
	case "1.2":
		return tls.VersionTLS12, nil
	default:
		return 0, fmt.Errorf("unsupported TLS version %q (must be 1.2 or 1.3)", v)
	}
}

func loadCertPool(path string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read client CA: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in %s", path)
	}
	return pool, nil
}
