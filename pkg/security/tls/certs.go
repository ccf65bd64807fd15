package tls

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"time"
)

// expiryWarning is how close to expiry a certificate is logged as a warning.
const expiryWarning = 30 * 24 * time.Hour

// ValidateCertificate checks that the leaf of cert is currently valid and
// returns it parsed.
func ValidateCertificate(cert *tls.Certificate) (*x509.Certificate, error) {
	if cert == nil || len(cert.Certificate) == 0 {
		return nil, fmt.Errorf("certificate chain is empty")
	}

	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return nil, fmt.Errorf("failed to parse certificate: %w", err)
	}

	now := time.Now()
	if now.Before(leaf.NotBefore) {
		return nil, fmt.Errorf("certificate is not yet valid (valid from %s)", leaf.NotBefore.Format(time.RFC3339))
	}
	if now.After(leaf.NotAfter) {
		return nil, fmt.Errorf("certificate expired on %s", leaf.NotAfter.Format(time.RFC3339))
	}
	return leaf, nil
}

// ExpiresSoon reports whether leaf expires within the warning window.
func ExpiresSoon(leaf *x509.Certificate) bool {
	return time.Until(leaf.NotAfter) < expiryWarning
}
