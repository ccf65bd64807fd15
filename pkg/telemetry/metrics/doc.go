// Package metrics exposes urlcat telemetry as Prometheus metrics.
//
// # Metrics
//
// With the default namespace "urlcat" and subsystem "categorizer":
//
//	urlcat_categorizer_evaluations_total{segment,category}   counter
//	urlcat_categorizer_evaluation_duration_seconds           histogram
//	urlcat_categorizer_evaluation_errors_total{kind}         counter
//	urlcat_categorizer_rules_reloads_total{status}           counter
//	urlcat_categorizer_rules_segments                        gauge
//	urlcat_categorizer_rules_categories                      gauge
//	urlcat_categorizer_http_requests_total{handler,code}     counter
//	urlcat_categorizer_http_request_duration_seconds{handler} histogram
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Metrics, nil)
//	evaluator := categorizer.New(root, categorizer.WithRecorder(collector))
//	http.Handle(cfg.Metrics.Path, collector.Handler())
//
// Collector implements categorizer.Recorder. A disabled collector accepts every
// call and records nothing.
package metrics
