package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/urlcat/pkg/config"
)

// EvaluationMetrics tracks URL categorization.
//
// Metrics:
//   - urlcat_categorizer_evaluations_total: Segment results by segment and category
//   - urlcat_categorizer_evaluation_duration_seconds: Per-URL evaluation duration
//   - urlcat_categorizer_evaluation_errors_total: Failed evaluations by kind
type EvaluationMetrics struct {
	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration prometheus.Histogram
	errorsTotal        *prometheus.CounterVec
}

// NewEvaluationMetrics creates and registers evaluation metrics with the provided registry.
func NewEvaluationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *EvaluationMetrics {
	em := &EvaluationMetrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluations_total",
				Help:      "Total number of segment results, by segment and category",
			},
			[]string{"segment", "category"},
		),

		evaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of one URL evaluation across all segments in seconds",
				Buckets:   cfg.DurationBuckets,
			},
		),

		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluation_errors_total",
				Help:      "Total number of URLs that could not be evaluated",
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(
		em.evaluationsTotal,
		em.evaluationDuration,
		em.errorsTotal,
	)

	return em
}

// RecordResult counts one segment result.
func (em *EvaluationMetrics) RecordResult(segment, category string) {
	em.evaluationsTotal.WithLabelValues(segment, category).Inc()
}

// ObserveDuration records the duration of one URL evaluation.
func (em *EvaluationMetrics) ObserveDuration(d time.Duration) {
	em.evaluationDuration.Observe(d.Seconds())
}

// RecordError counts one failed evaluation.
func (em *EvaluationMetrics) RecordError(kind string) {
	em.errorsTotal.WithLabelValues(kind).Inc()
}
