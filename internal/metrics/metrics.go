// Package metrics exposes Prometheus instrumentation for the streaming
// pipeline and analyzer runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"threatlens/pkg/models"
)

var (
	// IncidentsConsumed counts incident records accepted from the input.
	IncidentsConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "threatlens_incidents_consumed_total",
		Help: "Incident records consumed from the input source.",
	})

	// DecodeFailures counts input payloads that could not be decoded.
	DecodeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "threatlens_decode_failures_total",
		Help: "Input payloads dropped because they failed to decode.",
	})

	// AnalysisRuns counts completed analysis runs.
	AnalysisRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "threatlens_analysis_runs_total",
		Help: "Completed pattern analysis runs.",
	})

	// AnalysisErrors counts detector failures surfaced by runs.
	AnalysisErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "threatlens_analysis_errors_total",
		Help: "Detector errors reported by analysis runs.",
	})

	// AnalysisDuration observes the wall-clock time of one analysis run.
	AnalysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "threatlens_analysis_duration_seconds",
		Help:    "Wall-clock duration of one analysis run.",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
	})

	// PatternsDetected counts emitted patterns by type.
	PatternsDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "threatlens_patterns_detected_total",
		Help: "Patterns emitted by analysis runs, by pattern type.",
	}, []string{"type"})
)

// ObserveRun records the outcome of one analysis run.
func ObserveRun(summary models.Summary, dur time.Duration, failed bool) {
	AnalysisRuns.Inc()
	AnalysisDuration.Observe(dur.Seconds())
	if failed {
		AnalysisErrors.Inc()
	}
	for typ, count := range summary.ByType {
		PatternsDetected.WithLabelValues(string(typ)).Add(float64(count))
	}
}

// Serve exposes /metrics on addr. It blocks, so callers run it in a
// goroutine.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
