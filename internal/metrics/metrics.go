// Package metrics records Prometheus metrics for two-sample tests.
//
// A Recorder owns its registry, so several engines (and parallel tests) never
// collide on the global default registry. All methods are safe on a nil
// *Recorder, which records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "kstest"

// Decision labels.
const (
	DecisionRejected = "rejected"
	DecisionRetained = "retained"
)

// Recorder holds the test metrics.
type Recorder struct {
	registry *prometheus.Registry

	// TestsTotal counts completed tests.
	// Labels: strategy, decision (rejected, retained)
	TestsTotal *prometheus.CounterVec

	// ErrorsTotal counts tests that failed before producing a result.
	// Labels: kind (validation, mismatch, internal)
	ErrorsTotal *prometheus.CounterVec

	ConvergenceWarningsTotal prometheus.Counter
	DisagreementsTotal       prometheus.Counter

	// DurationSeconds measures the wall time of one test.
	DurationSeconds prometheus.Histogram

	// SampleSize observes n and m of every test.
	SampleSize prometheus.Histogram
}

// NewRecorder creates a Recorder registered on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		TestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "tests_total",
			Help:      "Completed two-sample tests by strategy and decision",
		}, []string{"strategy", "decision"}),
		ErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "errors_total",
			Help:      "Two-sample tests that failed by error kind",
		}, []string{"kind"}),
		ConvergenceWarningsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "convergence_warnings_total",
			Help:      "Tests whose Kolmogorov series was truncated",
		}),
		DisagreementsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "strategy_disagreements_total",
			Help:      "Tests where the critical value and probability decisions differ",
		}),
		DurationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "test_duration_seconds",
			Help:      "Wall time of one two-sample test",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 14),
		}),
		SampleSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "sample_size",
			Help:      "Size of each sample entering a test",
			Buckets:   prometheus.ExponentialBuckets(1, 10, 8),
		}),
	}
	reg.MustRegister(
		r.TestsTotal,
		r.ErrorsTotal,
		r.ConvergenceWarningsTotal,
		r.DisagreementsTotal,
		r.DurationSeconds,
		r.SampleSize,
	)
	return r
}

// Registry exposes the registry for scraping or export.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveTest records one completed test.
func (r *Recorder) ObserveTest(strategy string, rejected, warned, disagreed bool, n, m int, elapsed time.Duration) {
	if r == nil {
		return
	}
	decision := DecisionRetained
	if rejected {
		decision = DecisionRejected
	}
	r.TestsTotal.WithLabelValues(strategy, decision).Inc()
	if warned {
		r.ConvergenceWarningsTotal.Inc()
	}
	if disagreed {
		r.DisagreementsTotal.Inc()
	}
	r.SampleSize.Observe(float64(n))
	r.SampleSize.Observe(float64(m))
	r.DurationSeconds.Observe(elapsed.Seconds())
}

// ObserveError records a failed test.
func (r *Recorder) ObserveError(kind string) {
	if r == nil {
		return
	}
	r.ErrorsTotal.WithLabelValues(kind).Inc()
}

// WriteTextfile writes the current metrics in the node exporter textfile
// format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
