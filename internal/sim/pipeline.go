// Package sim contains the request-admission decision pipeline: the
// ordered, stateful gates that decide whether each inbound call is
// rate-limited, hits a simulated outage, trips the circuit breaker,
// receives an injected error or delay, or passes through as a success.
package sim

import (
	"net/url"
	"sync"
	"time"

	"github.com/collinskramp/mao-http-endpoint-mock/internal/breaker"
	"github.com/collinskramp/mao-http-endpoint-mock/internal/clock"
	"github.com/collinskramp/mao-http-endpoint-mock/internal/config"
	"github.com/collinskramp/mao-http-endpoint-mock/internal/decisionlog"
	"github.com/collinskramp/mao-http-endpoint-mock/internal/metrics"
	"github.com/collinskramp/mao-http-endpoint-mock/internal/ratelimit"
	"github.com/collinskramp/mao-http-endpoint-mock/internal/random"
)

// Request is the descriptor the HTTP layer hands to the pipeline.
// Created per call, discarded after the pipeline returns.
type Request struct {
	ID        string
	Method    string
	Path      string
	ClientKey string
	Body      map[string]any
	Query     url.Values
}

// Outcome is the pipeline's decision for one request.
type Outcome struct {
	ErrType           Kind // KindNone on success
	Status            int
	RetryAfter        time.Duration // >0 for rate_limit / service_unavailable
	BreakerState      string        // set for circuit_breaker_open
	RecoveryRemaining time.Duration
	Delay             time.Duration // artificial delay that was applied
	NormalPeriod      bool
	ResponseTime      time.Duration
}

// OK reports whether the request passed every gate.
func (o Outcome) OK() bool { return o.ErrType == KindNone }

// Pipeline orchestrates the admission gates and owns the aggregate
// service state. The schedulers are guarded by one coarse mutex; the
// limiter, breaker, and metrics recorder carry their own locks so the
// ops listener can read them without entering the decision path.
type Pipeline struct {
	cfg config.Config
	clk clock.Clock
	rnd random.Source

	limiter *ratelimit.Limiter
	brk     *breaker.Breaker
	rec     *metrics.Recorder

	mu     sync.Mutex // guards outage, normal
	outage *OutageScheduler
	normal *NormalPeriodScheduler

	inject ErrorInjector
	delay  DelayInjector

	started time.Time
	sleep   func(time.Duration) // swapped out in tests
}

// NewPipeline wires the gates from the config.
func NewPipeline(cfg config.Config, clk clock.Clock, rnd random.Source) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		clk:     clk,
		rnd:     rnd,
		limiter: ratelimit.NewLimiter(cfg.RateLimitMax, cfg.RateLimitWindow(), clk),
		brk: breaker.New(
			cfg.CircuitBreakerThreshold,
			cfg.BreakerWindow(),
			cfg.BreakerRecovery(),
			cfg.CircuitBreakerHalfOpenRequests,
		),
		rec: metrics.NewRecorder(),
		outage: &OutageScheduler{
			Chance: cfg.OutageChance,
			Min:    cfg.MinOutage(),
			Max:    cfg.MaxOutage(),
		},
		normal: &NormalPeriodScheduler{
			Chance: cfg.NormalPeriodChance,
			Min:    cfg.MinNormalPeriod(),
			Max:    cfg.MaxNormalPeriod(),
		},
		inject: ErrorInjector{
			ServerChance:  cfg.ServerErrorChance,
			ClientChance:  cfg.ClientErrorChance,
			TimeoutChance: cfg.TimeoutChance,
		},
		delay: DelayInjector{
			Chance: cfg.SlowResponseChance,
			Min:    cfg.MinSlowDelay(),
			Max:    cfg.MaxSlowDelay(),
		},
		started: clk.Now(),
		sleep:   time.Sleep,
	}
}

// Process runs one request through the gates in order. Every gate after
// the rate limiter can short-circuit; nothing is retried, each gate's
// decision is final for that request. All gates are evaluated against
// the shared now taken once at entry.
func (p *Pipeline) Process(req Request) Outcome {
	now := p.clk.Now()

	// Gate 1: rate limit.
	if !p.limiter.Admit(req.ClientKey) {
		p.brk.RecordFailure(now)
		return p.finish(req, now, Outcome{
			ErrType:    KindRateLimit,
			RetryAfter: p.limiter.Window(),
		})
	}

	// Gate 2: scheduled outage.
	p.mu.Lock()
	available := p.outage.Available(p.rnd, now)
	remaining := p.outage.Remaining(now)
	p.mu.Unlock()
	if !available {
		p.brk.RecordFailure(now)
		return p.finish(req, now, Outcome{
			ErrType:    KindServiceUnavailable,
			RetryAfter: remaining,
		})
	}

	// Gate 3: circuit breaker. The check itself performs the
	// OPEN->HALF_OPEN transition, so the rejection carries the state
	// observed after it.
	if p.brk.ShouldReject(now) {
		p.brk.RecordFailure(now)
		return p.finish(req, now, Outcome{
			ErrType:           KindBreakerOpen,
			BreakerState:      p.brk.State().String(),
			RecoveryRemaining: p.brk.RecoveryRemaining(now),
		})
	}

	// Gate 4: artificial delay, always applied once admission passed
	// the breaker, regardless of the later outcome. The sleep is the
	// pipeline's only suspension point and runs outside every lock.
	delay := p.delay.Compute(p.rnd)
	if delay > 0 {
		p.sleep(delay)
	}

	// Gate 5: normal period, guaranteed success while active.
	p.mu.Lock()
	normalPeriod := p.normal.Active(p.rnd, now)
	p.mu.Unlock()

	if !normalPeriod {
		// Gate 6: injected errors, then the plain network drop.
		if kind := p.inject.Classify(p.rnd.Float64()); kind != KindNone {
			p.brk.RecordFailure(now)
			return p.finish(req, now, Outcome{ErrType: kind, Delay: delay})
		}
		if p.rnd.Float64() > p.cfg.BaseSuccessRate {
			p.brk.RecordFailure(now)
			return p.finish(req, now, Outcome{ErrType: KindNetworkFailure, Delay: delay})
		}
	}

	p.brk.RecordSuccess()
	return p.finish(req, now, Outcome{Delay: delay, NormalPeriod: normalPeriod})
}

// finish stamps the outcome, records it, and emits the decision log.
func (p *Pipeline) finish(req Request, start time.Time, out Outcome) Outcome {
	out.Status = out.ErrType.StatusCode()
	out.ResponseTime = p.clk.Now().Sub(start)
	if out.ResponseTime < out.Delay {
		// A fake clock does not advance across the sleep; the applied
		// delay is still part of the observable response time.
		out.ResponseTime = out.Delay
	}

	rtMs := float64(out.ResponseTime) / float64(time.Millisecond)
	p.rec.RecordOutcome(string(out.ErrType), rtMs, out.Delay.Seconds())

	fields := map[string]any{
		"request_id": req.ID,
		"method":     req.Method,
		"path":       req.Path,
		"client":     req.ClientKey,
		"delay_ms":   out.Delay.Milliseconds(),
	}
	switch out.ErrType {
	case KindNone:
		decisionlog.Log(decisionlog.DecisionSuccess, "request succeeded", fields)
	case KindRateLimit, KindServiceUnavailable, KindBreakerOpen:
		fields["error_type"] = string(out.ErrType)
		decisionlog.Log(decisionlog.DecisionGate, "request rejected", fields)
	default:
		fields["error_type"] = string(out.ErrType)
		decisionlog.Log(decisionlog.DecisionInject, "error injected", fields)
	}
	return out
}

// ResetBreaker forces the circuit breaker CLOSED and clears its error
// window. Serves the manual operator-recovery endpoint.
func (p *Pipeline) ResetBreaker() {
	p.brk.Reset()
	decisionlog.Log(decisionlog.DecisionAdmin, "circuit breaker reset", map[string]any{
		"state": p.brk.State().String(),
	})
}

// Metrics returns the counter snapshot.
func (p *Pipeline) Metrics() metrics.Snapshot { return p.rec.Snapshot() }
