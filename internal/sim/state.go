package sim

import "time"

// WindowSnapshot describes an active outage window.
type WindowSnapshot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// PeriodSnapshot describes an active normal (guaranteed-success) period.
type PeriodSnapshot struct {
	Start      time.Time `json:"start"`
	DurationMs int64     `json:"duration_ms"`
}

// BreakerSnapshot describes the circuit breaker for status payloads.
type BreakerSnapshot struct {
	State               string `json:"state"`
	ErrorWindowSize     int    `json:"error_window_size"`
	RecoveryRemainingMs int64  `json:"recovery_remaining_ms,omitempty"`
}

// StateSnapshot is the aggregate service state exposed on the health
// and ops status endpoints. Counters are consistent: TotalRequests is
// SuccessCount+ErrorCount at every observation point.
type StateSnapshot struct {
	TotalRequests     int64   `json:"total_requests"`
	SuccessCount      int64   `json:"successful_requests"`
	ErrorCount        int64   `json:"failed_requests"`
	AvgResponseTimeMs float64 `json:"avg_response_time_ms"`

	UptimeSeconds  float64 `json:"uptime_seconds"`
	TrackedClients int     `json:"tracked_clients"`

	Breaker      BreakerSnapshot `json:"circuit_breaker"`
	Outage       *WindowSnapshot `json:"outage,omitempty"`
	NormalPeriod *PeriodSnapshot `json:"normal_period,omitempty"`
}

// Snapshot returns the current aggregate state. Reads the gates without
// advancing any lazy transition.
func (p *Pipeline) Snapshot() StateSnapshot {
	now := p.clk.Now()
	m := p.rec.Snapshot()

	snap := StateSnapshot{
		TotalRequests:     m.TotalRequests,
		SuccessCount:      m.SuccessCount,
		ErrorCount:        m.ErrorCount,
		AvgResponseTimeMs: m.AvgResponseTimeMs,
		UptimeSeconds:     now.Sub(p.started).Seconds(),
		TrackedClients:    p.limiter.Len(),
		Breaker: BreakerSnapshot{
			State:               p.brk.State().String(),
			ErrorWindowSize:     p.brk.ErrorCount(now),
			RecoveryRemainingMs: p.brk.RecoveryRemaining(now).Milliseconds(),
		},
	}

	p.mu.Lock()
	if start, end, ok := p.outage.Window(); ok {
		snap.Outage = &WindowSnapshot{Start: start, End: end}
	}
	if start, dur, ok := p.normal.Period(); ok {
		snap.NormalPeriod = &PeriodSnapshot{Start: start, DurationMs: dur.Milliseconds()}
	}
	p.mu.Unlock()

	return snap
}
