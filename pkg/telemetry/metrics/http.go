package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/urlcat/pkg/config"
)

// HTTPMetrics tracks the HTTP API.
//
// Metrics:
//   - urlcat_categorizer_http_requests_total: Requests by handler and status code
//   - urlcat_categorizer_http_request_duration_seconds: Request duration by handler
type HTTPMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewHTTPMetrics creates and registers HTTP metrics with the provided registry.
func NewHTTPMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *HTTPMetrics {
	hm := &HTTPMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests, by handler and status code",
			},
			[]string{"handler", "code"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"handler"},
		),
	}

	registry.MustRegister(
		hm.requestsTotal,
		hm.requestDuration,
	)

	return hm
}

// RecordRequest records one served request.
func (hm *HTTPMetrics) RecordRequest(handler string, code int, duration time.Duration) {
	hm.requestsTotal.WithLabelValues(handler, strconv.Itoa(code)).Inc()
	hm.requestDuration.WithLabelValues(handler).Observe(duration.Seconds())
}
