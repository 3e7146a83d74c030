package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Worker metrics
	WorkerExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hermes_worker_executions_total",
			Help: "Total number of worker executions",
		},
		[]string{"worker", "status"}, // status: success|error
	)

	WorkerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hermes_worker_duration_seconds",
			Help:    "Worker execution duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"worker"},
	)

	WorkerLastRun = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hermes_worker_last_run_timestamp",
			Help: "Unix timestamp of last worker execution",
		},
		[]string{"worker"},
	)

	// Quote provider metrics
	ProviderCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hermes_provider_calls_total",
			Help: "Total number of quote provider calls",
		},
		[]string{"provider", "status"}, // status: success|rejected|error
	)

	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hermes_provider_latency_seconds",
			Help:    "Quote provider call latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"provider"},
	)

	SyntheticQuotes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hermes_synthetic_quotes_total",
			Help: "Quotes synthesized because every provider failed",
		},
		[]string{"symbol"},
	)

	// News metrics
	NewsFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hermes_news_fetches_total",
			Help: "Total number of news fetch cycles",
		},
		[]string{"status"}, // status: success|fallback
	)

	// Assistant metrics
	AssistantRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hermes_assistant_requests_total",
			Help: "Total number of assistant conversations",
		},
		[]string{"status"}, // status: success|offline|busy
	)

	AssistantLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hermes_assistant_latency_seconds",
			Help:    "Assistant generation latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"model"},
	)

	// Approval workflow metrics
	ApprovalDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hermes_approval_decisions_total",
			Help: "Total number of approval queue decisions",
		},
		[]string{"decision"}, // decision: approved|rejected
	)

	ApprovalQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hermes_approval_queue_depth",
			Help: "Current number of drafts pending approval",
		},
	)
)

// Init registers all metrics with Prometheus
func Init() {
	prometheus.MustRegister(WorkerExecutions)
	prometheus.MustRegister(WorkerDuration)
	prometheus.MustRegister(WorkerLastRun)

	prometheus.MustRegister(ProviderCalls)
	prometheus.MustRegister(ProviderLatency)
	prometheus.MustRegister(SyntheticQuotes)

	prometheus.MustRegister(NewsFetches)

	prometheus.MustRegister(AssistantRequests)
	prometheus.MustRegister(AssistantLatency)

	prometheus.MustRegister(ApprovalDecisions)
	prometheus.MustRegister(ApprovalQueueDepth)
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordWorkerExecution records a worker execution
func RecordWorkerExecution(worker string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	WorkerExecutions.WithLabelValues(worker, status).Inc()
	WorkerDuration.WithLabelValues(worker).Observe(duration.Seconds())
	WorkerLastRun.WithLabelValues(worker).SetToCurrentTime()
}

// RecordProviderCall records the outcome of one quote provider attempt
func RecordProviderCall(provider, status string, latency time.Duration) {
	ProviderCalls.WithLabelValues(provider, status).Inc()
	ProviderLatency.WithLabelValues(provider).Observe(latency.Seconds())
}
