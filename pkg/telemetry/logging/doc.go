// Package logging builds the structured loggers used across urlcat.
//
// # Overview
//
// The package wraps Go's standard log/slog package to provide:
//   - JSON, text and console output formats
//   - Request IDs taken from the context on every *Context call
//   - Redaction of secrets carried in URL query strings
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:       "info",
//	    Format:      "json",
//	    RedactQuery: true,
//	})
//
//	logger.Info("categorized",
//	    "url", "https://example.com/?token=abc", // logged as token=REDACTED
//	    "segment", "search",
//	)
//
//	ctx := logging.WithRequestID(ctx, "req-123")
//	logger.InfoContext(ctx, "request handled") // includes request_id
//
// # Redaction
//
// When RedactQuery is enabled, string attributes whose key is "url" (or ends in
// "_url") have the values of sensitive query parameters replaced. A parameter is
// sensitive when its name contains one of the configured words (token, secret,
// password, key, auth, session, signature by default).
package logging
