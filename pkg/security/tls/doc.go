// Package tls builds the HTTPS configuration of the categorization server.
//
// Certificates are loaded through a CertificateReloader so that renewed
// certificates are picked up without a restart. Setting a client CA file
// turns on mutual TLS.
//
//	tlsConfig, reloader, err := tls.NewServerConfig(&cfg.Server.TLS, logger)
//	if err != nil {
//	    return err
//	}
//	go reloader.Run(ctx)
//	srv.TLSConfig = tlsConfig
package tls
