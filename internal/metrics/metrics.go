// Package metrics provides Prometheus metrics for the engine, served on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "intelligence_engine"

// Narrative outcomes.
const (
	NarrativeStructured = "structured"
	NarrativeRaw        = "raw"
	NarrativeError      = "error"
	NarrativeDisabled   = "disabled"
)

var (
	// JobsTotal counts jobs reaching each status.
	// Labels: status (pending, running, completed, failed)
	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "transitions_total",
			Help:      "Total number of job status transitions by target status",
		},
		[]string{"status"},
	)

	// AnalysisDuration tracks how long a budget analysis run takes end to end.
	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "cfo",
			Name:      "analysis_duration_seconds",
			Help:      "Duration of budget analysis runs in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// BudgetAlertsTotal counts clients flagged over budget.
	BudgetAlertsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cfo",
			Name:      "budget_alerts_total",
			Help:      "Total number of budget alerts raised",
		},
	)

	// NarrativesTotal counts narrative generation outcomes.
	// Labels: outcome (structured, raw, error, disabled)
	NarrativesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ai",
			Name:      "narratives_total",
			Help:      "Total number of narrative generations by outcome",
		},
		[]string{"outcome"},
	)

	// WorkerQueueDepth is the number of tasks waiting for a worker.
	WorkerQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "queue_depth",
			Help:      "Number of tasks queued and not yet started",
		},
	)

	// WorkerRejectedTotal counts submissions the pool refused.
	// Labels: reason (queue_full, stopped)
	WorkerRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "rejected_total",
			Help:      "Total number of tasks rejected by the worker pool",
		},
		[]string{"reason"},
	)

	// PanicsTotal counts recovered panics.
	// Labels: source (http, worker)
	PanicsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "panics_recovered_total",
			Help:      "Total number of panics recovered by source",
		},
		[]string{"source"},
	)

	// HTTPRequestsTotal counts served requests.
	// Labels: method, route, status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration tracks request latency.
	// Labels: method, route
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Panic sources.
const (
	PanicSourceHTTP   = "http"
	PanicSourceWorker = "worker"
)

// RecordPanic records a recovered panic.
func RecordPanic(source string) {
	PanicsTotal.WithLabelValues(source).Inc()
}

// RecordJobStatus records a job entering status.
func RecordJobStatus(status string) {
	JobsTotal.WithLabelValues(status).Inc()
}

// RecordNarrative records the outcome of a narrative step.
func RecordNarrative(outcome string) {
	NarrativesTotal.WithLabelValues(outcome).Inc()
}

// RecordHTTPRequest records one served request. route is the matched pattern,
// not the raw path, to keep label cardinality bounded.
func RecordHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
