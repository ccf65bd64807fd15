package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// RulesetKey is the context key for the ID of the ruleset serving a request.
	RulesetKey contextKey = "ruleset_id"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithRuleset adds a ruleset ID to the context.
func WithRuleset(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RulesetKey, id)
}

// GetRuleset retrieves the ruleset ID from the context.
func GetRuleset(ctx context.Context) string {
	if id, ok := ctx.Value(RulesetKey).(string); ok {
		return id
	}
	return ""
}

// extractContextFields extracts common fields from context for logging.
func extractContextFields(ctx context.Context) []slog.Attr {
	var fields []slog.Attr

	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, slog.String(string(RequestIDKey), requestID))
	}
	if id := GetRuleset(ctx); id != "" {
		fields = append(fields, slog.String(string(RulesetKey), id))
	}

	return fields
}

// contextHandler adds context fields to every record logged with a context.
type contextHandler struct {
	slog.Handler
}

func newContextHandler(h slog.Handler) *contextHandler {
	return &contextHandler{Handler: h}
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if fields := extractContextFields(ctx); len(fields) > 0 {
		r = r.Clone()
		r.AddAttrs(fields...)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return newContextHandler(h.Handler.WithAttrs(attrs))
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return newContextHandler(h.Handler.WithGroup(name))
}
