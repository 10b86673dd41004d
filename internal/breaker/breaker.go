// Package breaker implements the three-state circuit breaker that gates
// simulated requests based on recent error density.
package breaker

import (
	"sync"
	"time"
)

// State is the breaker position.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// Breaker trips OPEN once the sliding error window fills to the
// threshold, waits out a recovery timeout, then probes with a limited
// number of HALF_OPEN requests before closing again.
//
// ShouldReject is a transition point, not a pure read: it performs the
// CLOSED->OPEN and OPEN->HALF_OPEN transitions itself. All methods take
// the caller's notion of "now" so transitions stay deterministic under
// a fake clock; healing is only ever observed on the next call.
type Breaker struct {
	mu sync.Mutex

	threshold      int
	window         time.Duration
	recovery       time.Duration
	halfOpenTarget int

	state             State
	errorTimes        []time.Time
	openedAt          time.Time
	halfOpenSuccesses int
}

// New returns a closed breaker.
func New(threshold int, window, recovery time.Duration, halfOpenTarget int) *Breaker {
	return &Breaker{
		threshold:      threshold,
		window:         window,
		recovery:       recovery,
		halfOpenTarget: halfOpenTarget,
	}
}

// ShouldReject reports whether the request arriving at now must be
// rejected, advancing the state machine as a side effect.
func (b *Breaker) ShouldReject(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.prune(now)

	switch b.state {
	case StateOpen:
		if now.Sub(b.openedAt) >= b.recovery {
			// The request that crosses the recovery timeout is
			// itself admitted as the first probe.
			b.state = StateHalfOpen
			b.halfOpenSuccesses = 0
			return false
		}
		return true
	case StateHalfOpen:
		return false
	default:
		if len(b.errorTimes) >= b.threshold {
			b.state = StateOpen
			b.openedAt = now
			return true
		}
		return false
	}
}

// RecordFailure adds a failure at now to the error window. A failure
// while HALF_OPEN reopens the breaker immediately with a fresh timeout.
func (b *Breaker) RecordFailure(now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.prune(now)

	if b.state == StateHalfOpen {
		b.state = StateOpen
		b.openedAt = now
		b.halfOpenSuccesses = 0
		return
	}
	b.errorTimes = append(b.errorTimes, now)
}

// RecordSuccess counts a HALF_OPEN probe success. Reaching the probe
// target closes the breaker and discards the newest half of the error
// window: partial forgiveness rather than a full clear, so a burst of
// old errors still counts against the freshly closed breaker.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateHalfOpen {
		return
	}
	b.halfOpenSuccesses++
	if b.halfOpenSuccesses >= b.halfOpenTarget {
		b.state = StateClosed
		b.errorTimes = b.errorTimes[:len(b.errorTimes)/2]
		b.halfOpenSuccesses = 0
		b.openedAt = time.Time{}
	}
}

// Reset forces the breaker CLOSED and empties the error window. Exposed
// for manual operator recovery.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = StateClosed
	b.errorTimes = nil
	b.openedAt = time.Time{}
	b.halfOpenSuccesses = 0
}

// State returns the current position without advancing transitions.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// ErrorCount returns the error-window size after pruning at now.
func (b *Breaker) ErrorCount(now time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.prune(now)
	return len(b.errorTimes)
}

// RecoveryRemaining returns how long until an OPEN breaker admits its
// first probe; zero in any other state.
func (b *Breaker) RecoveryRemaining(now time.Time) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateOpen {
		return 0
	}
	remaining := b.recovery - now.Sub(b.openedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// prune drops error timestamps older than the sliding window. Callers
// hold b.mu.
func (b *Breaker) prune(now time.Time) {
	cutoff := now.Add(-b.window)
	i := 0
	for i < len(b.errorTimes) && !b.errorTimes[i].After(cutoff) {
		i++
	}
	if i > 0 {
		b.errorTimes = append(b.errorTimes[:0], b.errorTimes[i:]...)
	}
}
