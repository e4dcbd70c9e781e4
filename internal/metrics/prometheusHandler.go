package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var activePollers = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "active_pollers",
	Help: "Number of jobs currently being polled",
})

var pollChecks = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "poll_checks_total",
	Help: "Result checks made by job pollers labelled by outcome",
}, []string{"outcome"})

var jobsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "jobs_completed_total",
	Help: "Jobs that reached a terminal status",
}, []string{"status"})

var historyRefresh = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "history_refresh_total",
	Help: "History refreshes labelled by outcome",
}, []string{"outcome"})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func IncrementActivePollers() {
	activePollers.Inc()
}

func DecrementActivePollers() {
	activePollers.Dec()
}

func CapturePollCheck(outcome string) {
	pollChecks.WithLabelValues(outcome).Inc()
}

func CaptureJobFinished(status string) {
	jobsFinished.WithLabelValues(status).Inc()
}

func CaptureHistoryRefresh(outcome string) {
	historyRefresh.WithLabelValues(outcome).Inc()
}

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}
