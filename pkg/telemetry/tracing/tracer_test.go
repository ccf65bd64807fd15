package tracing

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"mercator-hq/urlcat/pkg/config"
)

// TestNew tests tracer construction for disabled and invalid configurations.
func TestNew(t *testing.T) {
	if _, err := New(nil, "test"); err == nil {
		t.Error("New(nil) should fail")
	}

	tracer, err := New(&config.TracingConfig{Enabled: false}, "test")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if tracer.Enabled() {
		t.Error("disabled tracer reports Enabled")
	}

	_, span := tracer.Start(context.Background(), "noop")
	if span.SpanContext().IsValid() {
		t.Error("disabled tracer produced a valid span context")
	}
	span.End()

	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

// TestNew_Enabled tests that an enabled tracer builds an OTLP exporter
// without reaching the collector.
func TestNew_Enabled(t *testing.T) {
	tracer, err := New(&config.TracingConfig{
		Enabled:     true,
		Sampler:     SamplerAlways,
		Endpoint:    "127.0.0.1:4317",
		ServiceName: "urlcat-test",
		Insecure:    true,
	}, "test")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !tracer.Enabled() {
		t.Error("enabled tracer reports disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = tracer.Shutdown(ctx)
}

// TestTracer_ExportsSpans tests that ended spans reach the exporter with
// their attributes and status.
func TestTracer_ExportsSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := newTracer(&config.TracingConfig{
		Enabled:     true,
		Sampler:     SamplerAlways,
		ServiceName: "urlcat-test",
	}, "1.2.3", exporter)
	if err != nil {
		t.Fatalf("newTracer() error = %v", err)
	}
	defer tracer.Shutdown(context.Background())

	ctx, parent := tracer.Start(context.Background(), "categorize_batch")
	parent.SetAttributes(RulesetAttributes("abc", 3)...)
	SetFailures(parent, 1)

	_, child := tracer.Start(ctx, "categorize")
	SetStatus(child, errors.New("boom"))
	child.End()
	SetStatus(parent, nil)
	parent.End()

	if err := tracer.ForceFlush(context.Background()); err != nil {
		t.Fatalf("ForceFlush() error = %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("exported %d spans, want 2", len(spans))
	}

	byName := make(map[string]tracetest.SpanStub)
	for _, s := range spans {
		byName[s.Name] = s
	}

	got := byName["categorize"]
	if got.Status.Code != codes.Error || got.Status.Description != "boom" {
		t.Errorf("child status = %+v", got.Status)
	}
	if got.Parent.SpanID() != byName["categorize_batch"].SpanContext.SpanID() {
		t.Error("child span is not linked to its parent")
	}

	attrs := make(map[string]any)
	for _, kv := range byName["categorize_batch"].Attributes {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	if attrs[string(AttrRulesetID)] != "abc" {
		t.Errorf("ruleset attribute = %v", attrs[string(AttrRulesetID)])
	}
	if attrs[string(AttrURLCount)] != int64(3) || attrs[string(AttrFailed)] != int64(1) {
		t.Errorf("count attributes = %v", attrs)
	}
}

// TestCreateSampler tests sampler selection and ratio validation.
func TestCreateSampler(t *testing.T) {
	tests := []struct {
		strategy string
		ratio    float64
		wantErr  bool
	}{
		{strategy: SamplerAlways},
		{strategy: SamplerNever},
		{strategy: SamplerRatio, ratio: 0.5},
		{strategy: SamplerRatio, ratio: 1.5, wantErr: true},
		{strategy: SamplerRatio, ratio: -0.1, wantErr: true},
		{strategy: "sometimes", wantErr: true},
	}

	for _, tt := range tests {
		sampler, err := createSampler(tt.strategy, tt.ratio)
		if (err != nil) != tt.wantErr {
			t.Errorf("createSampler(%q, %v) error = %v, wantErr %v", tt.strategy, tt.ratio, err, tt.wantErr)
			continue
		}
		if err == nil && sampler == nil {
			t.Errorf("createSampler(%q) returned nil sampler", tt.strategy)
		}
	}
}
