package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce       sync.Once
	upstreamRequests   *prometheus.CounterVec
	upstreamLatency    *prometheus.HistogramVec
	sessionFetches     *prometheus.CounterVec
	noteWriteFailures  prometheus.Counter
	httpRequests       *prometheus.CounterVec
	httpLatencySeconds *prometheus.HistogramVec
)

// RegisterMetrics initialises the Prometheus collectors on the default registry.
func RegisterMetrics() {
	registerOnce.Do(func() {
		upstreamRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cftracker_upstream_requests_total",
			Help: "Codeforces API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"})

		upstreamLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cftracker_upstream_latency_seconds",
			Help:    "Latency distribution for Codeforces API requests.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"})

		sessionFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cftracker_session_fetches_total",
			Help: "Completed session fetches by result (success, failure, superseded).",
		}, []string{"result"})

		noteWriteFailures = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cftracker_note_write_failures_total",
			Help: "Note writes that failed to persist.",
		})

		httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cftracker_http_requests_total",
			Help: "Dashboard API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cftracker_http_latency_seconds",
			Help:    "Latency distribution for dashboard API requests.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}, []string{"method", "route"})

		prometheus.MustRegister(upstreamRequests, upstreamLatency, sessionFetches,
			noteWriteFailures, httpRequests, httpLatencySeconds)
	})
}

// ObserveUpstream records one Codeforces request. Its signature matches
// codeforces.WithObserver.
func ObserveUpstream(endpoint, outcome string, d time.Duration) {
	RegisterMetrics()
	upstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	if outcome != "hit" {
		upstreamLatency.WithLabelValues(endpoint).Observe(d.Seconds())
	}
}

func SessionFetches() *prometheus.CounterVec {
	RegisterMetrics()
	return sessionFetches
}

func NoteWriteFailures() prometheus.Counter {
	RegisterMetrics()
	return noteWriteFailures
}

func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequests
}

func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

func UpstreamRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return upstreamRequests
}
