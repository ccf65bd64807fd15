package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	AttrRulesetID = attribute.Key("urlcat.ruleset_id")
	AttrURLCount  = attribute.Key("urlcat.urls")
	AttrFailed    = attribute.Key("urlcat.failed")
	AttrWorkers   = attribute.Key("urlcat.workers")
	AttrTasks     = attribute.Key("urlcat.tasks")
	AttrChanged   = attribute.Key("urlcat.ruleset_changed")
)

// RulesetAttributes describes the ruleset a span evaluated against.
func RulesetAttributes(id string, urls int) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrRulesetID.String(id),
		AttrURLCount.Int(urls),
	}
}

// SetFailures records how many evaluations of a span failed.
func SetFailures(span trace.Span, failed int) {
	span.SetAttributes(AttrFailed.Int(failed))
}
