package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/urlcat/pkg/categorizer"
	"mercator-hq/urlcat/pkg/config"
)

// maxLabelSets bounds the number of segment/category label pairs. Rule files
// are finite, but each reload may introduce new names.
const maxLabelSets = 10000

// overflowLabel replaces category labels once the cardinality limit is reached.
const overflowLabel = "other"

// Collector owns the registry and every metric family of urlcat.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	evaluationMetrics *EvaluationMetrics
	rulesMetrics      *RulesMetrics
	httpMetrics       *HTTPMetrics

	cardinalityLimiter *CardinalityLimiter
}

var _ categorizer.Recorder = (*Collector)(nil)

// NewCollector creates a collector with the specified configuration and
// Prometheus registry. If registry is nil, a fresh registry is created.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.DurationBuckets) == 0 {
		// Evaluations walk an in-memory tree and should stay well under 10ms
		cfg.DurationBuckets = prometheus.ExponentialBuckets(0.000001, 2, 15) // 1µs to 16ms
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(maxLabelSets),
	}

	c.evaluationMetrics = NewEvaluationMetrics(cfg, registry)
	c.rulesMetrics = NewRulesMetrics(cfg, registry)
	c.httpMetrics = NewHTTPMetrics(cfg, registry)

	return c
}

// Enabled reports whether the collector records anything.
func (c *Collector) Enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordEvaluation records the results of one URL evaluation.
func (c *Collector) RecordEvaluation(results []categorizer.Result, duration time.Duration) {
	if !c.Enabled() {
		return
	}

	for _, r := range results {
		category := r.Category
		if !c.cardinalityLimiter.Allow(r.Segment + "\x00" + category) {
			category = overflowLabel
		}
		c.evaluationMetrics.RecordResult(r.Segment, category)
	}
	c.evaluationMetrics.ObserveDuration(duration)
}

// RecordEvaluationError records a URL that could not be evaluated.
// Kind is "url" for malformed URLs and "selector" for unknown selectors.
func (c *Collector) RecordEvaluationError(kind string) {
	if !c.Enabled() {
		return
	}

	c.evaluationMetrics.RecordError(kind)
}

// RecordReload records a rules load attempt. Status is "success", "failure" or
// "unchanged". Segment and category counts are only applied on success.
func (c *Collector) RecordReload(status string, segments, categories int) {
	if !c.Enabled() {
		return
	}

	c.rulesMetrics.RecordReload(status)
	if status == ReloadSuccess {
		c.rulesMetrics.SetSize(segments, categories)
	}
}

// RecordHTTPRequest records one served HTTP request.
func (c *Collector) RecordHTTPRequest(handler string, code int, duration time.Duration) {
	if !c.Enabled() {
		return
	}

	c.httpMetrics.RecordRequest(handler, code, duration)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label set is allowed. Returns true if the label set
// already exists or if we haven't reached the cardinality limit yet.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
