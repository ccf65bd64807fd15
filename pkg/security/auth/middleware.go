package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// APIKeyHeader is the alternative to a bearer token.
const APIKeyHeader = "X-API-Key"

type contextKey string

// #nosec G101 - context key name, not a credential
const callerKey contextKey = "api_caller"

// Middleware rejects requests without a valid API key.
type Middleware struct {
	validator    *Validator
	logger       *slog.Logger
	unauthorized func(w http.ResponseWriter, r *http.Request, message string)
}

// NewMiddleware creates the middleware. unauthorized writes the 401
// response; nil selects a plain text body.
func NewMiddleware(validator *Validator, logger *slog.Logger, unauthorized func(http.ResponseWriter, *http.Request, string)) *Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	if unauthorized == nil {
		unauthorized = func(w http.ResponseWriter, r *http.Request, message string) {
			http.Error(w, message, http.StatusUnauthorized)
		}
	}
	return &Middleware{
		validator:    validator,
		logger:       logger.With("component", "auth"),
		unauthorized: unauthorized,
	}
}

// Handle wraps next with API key authentication.
func (m *Middleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := extractKey(r)
		if key == "" {
			m.logger.WarnContext(r.Context(), "Missing API key", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
			w.Header().Set("WWW-Authenticate", `Bearer realm="urlcat"`)
			m.unauthorized(w, r, "missing API key")
			return
		}

		caller, err := m.validator.Validate(key)
		if err != nil {
			m.logger.WarnContext(r.Context(), "Invalid API key", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
			w.Header().Set("WWW-Authenticate", `Bearer realm="urlcat", error="invalid_token"`)
			m.unauthorized(w, r, err.Error())
			return
		}

		m.logger.DebugContext(r.Context(), "API key authenticated", "caller", caller, "path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), callerKey, caller)))
	})
}

// Caller returns the authenticated caller name stored by Handle.
func Caller(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(callerKey).(string)
	return name, ok
}

func extractKey(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	return r.Header.Get(APIKeyHeader)
}
