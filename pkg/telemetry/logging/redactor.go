package logging

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
)

// Redacted replaces the value of a sensitive query parameter.
const Redacted = "REDACTED"

// DefaultSensitiveParams lists the words that mark a query parameter as sensitive.
var DefaultSensitiveParams = []string{
	"token", "secret", "password", "passwd", "pwd",
	"key", "auth", "session", "signature", "sig",
}

// Redactor masks secrets carried in URLs.
type Redactor struct {
	words []string
}

// NewRedactor creates a Redactor. An empty list selects DefaultSensitiveParams.
func NewRedactor(words []string) *Redactor {
	if len(words) == 0 {
		words = DefaultSensitiveParams
	}
	lower := make([]string, len(words))
	for i, w := range words {
		lower[i] = strings.ToLower(w)
	}
	return &Redactor{words: lower}
}

// RedactURL masks the password of the user info and the values of sensitive
// query parameters. Unparseable input is returned unchanged.
func (r *Redactor) RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	changed := false
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), Redacted)
		changed = true
	}

	if u.RawQuery != "" {
		parts := strings.Split(u.RawQuery, "&")
		for i, part := range parts {
			name, _, hasValue := strings.Cut(part, "=")
			if hasValue && r.isSensitiveKey(name) {
				parts[i] = name + "=" + Redacted
				changed = true
			}
		}
		u.RawQuery = strings.Join(parts, "&")
	}

	if !changed {
		return raw
	}
	return u.String()
}

// isSensitiveKey checks if a parameter name indicates sensitive data.
func (r *Redactor) isSensitiveKey(key string) bool {
	if decoded, err := url.QueryUnescape(key); err == nil {
		key = decoded
	}
	lowerKey := strings.ToLower(key)
	for _, sensitive := range r.words {
		if strings.Contains(lowerKey, sensitive) {
			return true
		}
	}
	return false
}

// isURLKey reports whether an attribute key names a URL.
func isURLKey(key string) bool {
	return key == "url" || strings.HasSuffix(key, "_url")
}

func (r *Redactor) redactAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString && isURLKey(a.Key) {
		return slog.String(a.Key, r.RedactURL(a.Value.String()))
	}
	return a
}

// redactHandler rewrites URL attributes before they reach the wrapped handler.
type redactHandler struct {
	slog.Handler
	redactor *Redactor
}

func newRedactHandler(h slog.Handler, r *Redactor) *redactHandler {
	return &redactHandler{Handler: h, redactor: r}
}

func (h *redactHandler) Handle(ctx context.Context, r slog.Record) error {
	clean := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		clean.AddAttrs(h.redactor.redactAttr(a))
		return true
	})
	return h.Handler.Handle(ctx, clean)
}

func (h *redactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = h.redactor.redactAttr(a)
	}
	return newRedactHandler(h.Handler.WithAttrs(redacted), h.redactor)
}

func (h *redactHandler) WithGroup(name string) slog.Handler {
	return newRedactHandler(h.Handler.WithGroup(name), h.redactor)
}
