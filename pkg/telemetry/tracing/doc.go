// Package tracing wires OpenTelemetry span export for urlcat.
//
// A disabled configuration yields a no-op tracer, so callers can create
// spans unconditionally. When enabled, spans are batched to an OTLP gRPC
// collector and W3C Trace Context is propagated over HTTP:
//
//	tracer, err := tracing.New(&cfg.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	handler = tracing.HTTPMiddleware(handler)
//
// Span attribute keys shared by the server and the batch runner live in
// attributes.go.
package tracing
