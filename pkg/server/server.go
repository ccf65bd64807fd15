package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/urlcat/pkg/config"
	"mercator-hq/urlcat/pkg/limits/ratelimit"
	"mercator-hq/urlcat/pkg/rules/manager"
	"mercator-hq/urlcat/pkg/security/auth"
	sectls "mercator-hq/urlcat/pkg/security/tls"
	"mercator-hq/urlcat/pkg/telemetry/health"
	"mercator-hq/urlcat/pkg/telemetry/metrics"
	"mercator-hq/urlcat/pkg/telemetry/tracing"
)

// Rules provides the active ruleset. *manager.Manager implements it.
type Rules interface {
	Current() *manager.Ruleset
	Reload() (*manager.Ruleset, error)
}

// Server serves the categorization API.
type Server struct {
	config    *config.ServerConfig
	metrics   *config.MetricsConfig
	rules     Rules
	collector *metrics.Collector
	logger    *slog.Logger
	tracer    trace.Tracer
	health    *health.Checker
	limiter   *ratelimit.Limiter
	adminAuth *auth.Middleware

	mu         sync.RWMutex
	httpServer *http.Server
	listener   net.Listener
	isRunning  bool
}

// New creates a server. Collector may be nil, which disables /metrics.
func New(cfg *config.Config, rules Rules, collector *metrics.Collector, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		config:    &cfg.Server,
		metrics:   &cfg.Metrics,
		rules:     rules,
		collector: collector,
		logger:    logger.With("component", "server"),
		tracer:    otel.Tracer("mercator-hq/urlcat/server"),
		health:    health.New(healthCheckTimeout),
	}
	s.health.Register("rules", s.checkRules)
	if cfg.Server.RateLimit.Enabled() {
		s.limiter = ratelimit.New(cfg.Server.RateLimit)
	}
	if len(cfg.Server.ReloadAPIKeys) > 0 {
		validator, err := auth.NewValidator(cfg.Server.ReloadAPIKeys)
		if err != nil {
			// An unusable key list locks the endpoint rather than opening it.
			s.logger.Error("Invalid reload API keys, reload endpoint disabled", "error", err)
			validator, _ = auth.NewValidator(nil)
		}
		s.adminAuth = auth.NewMiddleware(validator, s.logger, func(w http.ResponseWriter, r *http.Request, message string) {
			writeError(w, r, http.StatusUnauthorized, ErrorTypeUnauthorized, message)
		})
	}
	return s
}

// healthCheckTimeout bounds each readiness check.
const healthCheckTimeout = 2 * time.Second

// Health returns the readiness checker so callers can register more checks.
func (s *Server) Health() *health.Checker {
	return s.health
}

// Start listens on the configured address and serves until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}

	tlsConfig, reloader, err := sectls.NewServerConfig(&s.config.TLS, s.logger)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to configure TLS: %w", err)
	}

	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}

	s.httpServer = &http.Server{
		Handler:        s.Handler(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
		TLSConfig:      tlsConfig,
	}
	s.listener = ln
	s.isRunning = true
	srv := s.httpServer
	s.mu.Unlock()

	if reloader != nil {
		go reloader.Run(ctx)
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("Starting categorization server", "address", ln.Addr().String(), "tls", tlsConfig != nil)
		var err error
		if tlsConfig != nil {
			err = srv.ServeTLS(ln, "", "")
		} else {
			err = srv.Serve(ln)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Context cancelled, initiating shutdown")
		return s.shutdown()
	case err, ok := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		if ok {
			return err
		}
		return nil
	}
}

func (s *Server) shutdown() error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	s.logger.Info("Initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	var shutdownErr error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("Error during server shutdown", "error", err)
		shutdownErr = fmt.Errorf("server shutdown error: %w", err)
	}

	s.mu.Lock()
	s.isRunning = false
	s.mu.Unlock()

	s.logger.Info("Categorization server stopped")
	return shutdownErr
}

// IsRunning returns true if the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Addr returns the bound listen address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Handler returns the routed handler with its middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /v1/categorize", s.instrument("categorize", s.rateLimit(http.HandlerFunc(s.handleCategorizeGet))))
	mux.Handle("POST /v1/categorize", s.instrument("categorize_batch", s.rateLimit(http.HandlerFunc(s.handleCategorizePost))))
	mux.Handle("GET /v1/rules", s.instrument("rules", s.rateLimit(http.HandlerFunc(s.handleRules))))
	mux.Handle("POST /v1/rules/reload", s.instrument("rules_reload", s.rateLimit(s.admin(http.HandlerFunc(s.handleReload)))))
	mux.HandleFunc("GET /health", s.health.LivenessHandler())
	mux.HandleFunc("GET /ready", s.health.ReadinessHandler())

	if s.collector.Enabled() {
		mux.Handle("GET "+s.metrics.Path, s.collector.Handler())
	}

	var handler http.Handler = mux
	handler = loggingMiddleware(s.logger)(handler)
	handler = tracing.HTTPMiddleware(handler)
	handler = requestIDMiddleware(handler)
	handler = recoveryMiddleware(s.logger)(handler)
	return handler
}
