package tls

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// CertificateReloader serves a certificate and reloads it when the files
// on disk change.
type CertificateReloader struct {
	certFile string
	keyFile  string
	interval time.Duration
	logger   *slog.Logger

	mu       sync.RWMutex
	cert     *tls.Certificate
	certTime time.Time
	keyTime  time.Time
}

// NewCertificateReloader creates a reloader polling every interval.
func NewCertificateReloader(certFile, keyFile string, interval time.Duration, logger *slog.Logger) *CertificateReloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &CertificateReloader{
		certFile: certFile,
		keyFile:  keyFile,
		interval: interval,
		logger:   logger.With("component", "tls"),
	}
}

// Run polls for changes until ctx is cancelled. It returns immediately
// when the interval is zero.
func (r *CertificateReloader) Run(ctx context.Context) {
	if r.interval <= 0 {
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !r.changed() {
				continue
			}
			if err := r.Load(); err != nil {
				// The previous certificate keeps being served.
				r.logger.Error("Failed to reload certificate", "cert_file", r.certFile, "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// changed reports whether either file is newer than the loaded pair.
func (r *CertificateReloader) changed() bool {
	certInfo, err := os.Stat(r.certFile)
	if err != nil {
		return false
	}
	keyInfo, err := os.Stat(r.keyFile)
	if err != nil {
		return false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return certInfo.ModTime().After(r.certTime) || keyInfo.ModTime().After(r.keyTime)
}

// Load reads and validates the key pair and makes it current.
func (r *CertificateReloader) Load() error {
	certInfo, err := os.Stat(r.certFile)
	if err != nil {
		return fmt.Errorf("certificate file not found: %w", err)
	}
	keyInfo, err := os.Stat(r.keyFile)
	if err != nil {
		return fmt.Errorf("key file not found: %w", err)
	}

	cert, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		return fmt.Errorf("failed to load certificate: %w", err)
	}
	leaf, err := ValidateCertificate(&cert)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.cert = &cert
	r.certTime = certInfo.ModTime()
	r.keyTime = keyInfo.ModTime()
	r.mu.Unlock()

	attrs := []any{
		"cert_file", r.certFile,
		"subject", leaf.Subject.CommonName,
		"expires_at", leaf.NotAfter.Format(time.RFC3339),
	}
	if ExpiresSoon(leaf) {
		r.logger.Warn("Certificate expiring soon", attrs...)
	} else {
		r.logger.Info("Certificate loaded", attrs...)
	}
	return nil
}

// Certificate returns the current certificate.
func (r *CertificateReloader) Certificate() *tls.Certificate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cert
}

// GetCertificateFunc adapts the reloader to tls.Config.GetCertificate.
func (r *CertificateReloader) GetCertificateFunc() func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
		cert := r.Certificate()
		if cert == nil {
			return nil, fmt.Errorf("no certificate loaded")
		}
		return cert, nil
	}
}
