package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/urlcat/pkg/config"
)

// Reload statuses.
const (
	ReloadSuccess   = "success"
	ReloadFailure   = "failure"
	ReloadUnchanged = "unchanged"
)

// RulesMetrics tracks the loaded ruleset.
//
// Metrics:
//   - urlcat_categorizer_rules_reloads_total: Load attempts by status
//   - urlcat_categorizer_rules_segments: Segments in the active ruleset
//   - urlcat_categorizer_rules_categories: Categories in the active ruleset
type RulesMetrics struct {
	reloadsTotal *prometheus.CounterVec
	segments     prometheus.Gauge
	categories   prometheus.Gauge
}

// NewRulesMetrics creates and registers ruleset metrics with the provided registry.
func NewRulesMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RulesMetrics {
	rm := &RulesMetrics{
		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rules_reloads_total",
				Help:      "Total number of rule file loads, by status",
			},
			[]string{"status"},
		),

		segments: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rules_segments",
				Help:      "Number of segments in the active ruleset",
			},
		),

		categories: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rules_categories",
				Help:      "Number of categories in the active ruleset",
			},
		),
	}

	registry.MustRegister(
		rm.reloadsTotal,
		rm.segments,
		rm.categories,
	)

	return rm
}

// RecordReload counts one load attempt.
func (rm *RulesMetrics) RecordReload(status string) {
	rm.reloadsTotal.WithLabelValues(status).Inc()
}

// SetSize updates the active ruleset gauges.
func (rm *RulesMetrics) SetSize(segments, categories int) {
	rm.segments.Set(float64(segments))
	rm.categories.Set(float64(categories))
}
