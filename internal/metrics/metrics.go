// Package metrics keeps the running service counters and exports the
// same outcomes as Prometheus series for scraping on the ops listener.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mockendpoint_requests_total",
		Help: "Simulated requests by outcome and error type",
	}, []string{"outcome", "error_type"})

	responseTime = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mockendpoint_response_time_seconds",
		Help:    "Measured response time including artificial delay",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
	})

	injectedDelay = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mockendpoint_injected_delay_seconds",
		Help:    "Artificial delay applied to admitted requests",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 3, 5},
	})
)

// Snapshot is a point-in-time copy of the core counters.
type Snapshot struct {
	TotalRequests     int64   `json:"total_requests"`
	SuccessCount      int64   `json:"successful_requests"`
	ErrorCount        int64   `json:"failed_requests"`
	AvgResponseTimeMs float64 `json:"avg_response_time_ms"`
}

// Recorder maintains total/success/failure counts and an incrementally
// updated mean response time. Never fails; safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	total   int64
	success int64
	failure int64
	avgMs   float64
}

func NewRecorder() *Recorder { return &Recorder{} }

// RecordOutcome records one completed request. errType is empty for a
// success; delaySeconds is the artificial delay that was applied.
func (r *Recorder) RecordOutcome(errType string, responseTimeMs, delaySeconds float64) {
	r.mu.Lock()
	r.total++
	if errType == "" {
		r.success++
	} else {
		r.failure++
	}
	r.avgMs = (r.avgMs*float64(r.total-1) + responseTimeMs) / float64(r.total)
	r.mu.Unlock()

	outcome := "success"
	if errType != "" {
		outcome = "failure"
	}
	requestsTotal.WithLabelValues(outcome, errType).Inc()
	responseTime.Observe(responseTimeMs / 1000)
	if delaySeconds > 0 {
		injectedDelay.Observe(delaySeconds)
	}
}

// Snapshot returns a consistent copy of the counters: TotalRequests is
// always SuccessCount+ErrorCount at any observation point.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{
		TotalRequests:     r.total,
		SuccessCount:      r.success,
		ErrorCount:        r.failure,
		AvgResponseTimeMs: r.avgMs,
	}
}
