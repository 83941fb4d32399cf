package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config contains configuration for metric registration.
type Config struct {
	// Namespace is the metric namespace. Default: "minerva"
	Namespace string
}

// DefaultConfig returns the default metrics configuration.
func DefaultConfig() *Config {
	return &Config{Namespace: "minerva"}
}

// EngineMetrics tracks policy engine activity.
//
// Metrics:
//   - minerva_evaluations_total: evaluations by pack and verdict
//   - minerva_evaluation_duration_seconds: end-to-end evaluation duration
//   - minerva_violations_total: violations by rule and severity
//   - minerva_detector_failures_total: isolated detector failures
//   - minerva_classifier_failsafe_total: fail-safe signals from the
//     external classifier
type EngineMetrics struct {
	registry *prometheus.Registry

	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration *prometheus.HistogramVec
	violationsTotal    *prometheus.CounterVec
	detectorFailures   *prometheus.CounterVec
	classifierFailsafe prometheus.Counter
}

// New creates and registers the engine metrics on a fresh registry that
// also carries the standard Go and process collectors.
func New(cfg *Config) *EngineMetrics {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &EngineMetrics{
		registry: registry,

		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "evaluations_total",
				Help:      "Total number of policy evaluations",
			},
			[]string{"pack_id", "verdict"},
		),

		evaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "evaluation_duration_seconds",
				Help:      "End-to-end evaluation duration in seconds",
				// Detector fan-out may include one network call
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16), // 100µs to ~3s
			},
			[]string{"pack_id"},
		),

		violationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "violations_total",
				Help:      "Total number of violations emitted",
			},
			[]string{"rule_id", "severity"},
		),

		detectorFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "detector_failures_total",
				Help:      "Total number of isolated detector failures",
			},
			[]string{"detector"},
		),

		classifierFailsafe: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "classifier_failsafe_total",
				Help:      "Total number of fail-safe signals emitted by the external classifier",
			},
		),
	}

	registry.MustRegister(
		m.evaluationsTotal,
		m.evaluationDuration,
		m.violationsTotal,
		m.detectorFailures,
		m.classifierFailsafe,
	)

	return m
}

// RecordEvaluation records one completed evaluation.
func (m *EngineMetrics) RecordEvaluation(packID string, compliant bool, duration time.Duration) {
	verdict := "compliant"
	if !compliant {
		verdict = "non_compliant"
	}
	m.evaluationsTotal.WithLabelValues(packID, verdict).Inc()
	m.evaluationDuration.WithLabelValues(packID).Observe(duration.Seconds())
}

// RecordViolation records one emitted violation.
func (m *EngineMetrics) RecordViolation(ruleID, severity string) {
	m.violationsTotal.WithLabelValues(ruleID, severity).Inc()
}

// RecordDetectorFailure records one isolated detector failure.
func (m *EngineMetrics) RecordDetectorFailure(detector string) {
	m.detectorFailures.WithLabelValues(detector).Inc()
}

// RecordClassifierFailsafe records one fail-safe classifier signal.
func (m *EngineMetrics) RecordClassifierFailsafe() {
	m.classifierFailsafe.Inc()
}

// Handler returns the HTTP handler serving the metric registry.
func (m *EngineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
