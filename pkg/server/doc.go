// Package server exposes URL categorization over HTTP.
//
// # Routes
//
//   - GET  /v1/categorize?url=...  categorize one URL
//   - POST /v1/categorize          categorize a batch: {"urls": ["...", ...]}
//   - GET  /v1/rules               describe the active ruleset
//   - POST /v1/rules/reload        reload the rule file
//   - GET  /health                 liveness probe (always 200)
//   - GET  /ready                  readiness probe (200 once rules are loaded)
//   - GET  /metrics                Prometheus metrics, when enabled
//
// Every request gets an X-Request-ID (the client's, or a generated UUID)
// that is echoed in the response and attached to log records. Handlers read
// the active ruleset once per request, so a concurrent reload never mixes
// two rule versions in one response.
//
// # Access control
//
// With server.rate_limit set, /v1 routes are throttled per client address
// and answer 429 with Retry-After. With server.reload_api_keys set, the
// reload route requires "Authorization: Bearer <key>" or X-API-Key.
// server.tls switches the listener to HTTPS.
//
// # Errors
//
// Failures are returned as JSON:
//
//	{"error": {"message": "...", "type": "invalid_request", "request_id": "..."}}
//
// # Shutdown
//
// Start blocks until its context is cancelled, then stops accepting
// connections and waits up to the configured shutdown timeout for in-flight
// requests.
package server
