// Package telemetry groups the observability packages of urlcat.
//
//   - logging: structured slog loggers with URL redaction
//   - metrics: Prometheus collectors for evaluations, rule reloads and HTTP
//   - tracing: OpenTelemetry tracing exported over OTLP/gRPC
//   - health: liveness and readiness probes
//
// Every package accepts nil or disabled configuration and degrades to a
// no-op, so batch commands can share code with the server.
package telemetry
