// Package ratelimit implements a per-client sliding-window request
// counter. Denial is the signal; Admit never returns an error.
package ratelimit

import (
	"sync"
	"time"

	"github.com/collinskramp/mao-http-endpoint-mock/internal/clock"
)

// idleWindows is how many rate windows a client may stay silent before
// its entry is swept.
const idleWindows = 10

type entry struct {
	count       int
	windowStart time.Time
	lastSeen    time.Time
}

// Limiter tracks request counts per client key within a fixed window.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*entry

	max    int
	window time.Duration
	clk    clock.Clock

	lastSweep time.Time
}

// NewLimiter returns a limiter allowing max requests per window per key.
func NewLimiter(max int, window time.Duration, clk clock.Clock) *Limiter {
	return &Limiter{
		clients: make(map[string]*entry),
		max:     max,
		window:  window,
		clk:     clk,
	}
}

// Admit reports whether a request from clientKey is allowed right now.
// A window resets once the configured duration has elapsed since the
// window start; within a window, the (max+1)-th request is denied.
func (l *Limiter) Admit(clientKey string) bool {
	now := l.clk.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.maybeSweep(now)

	e, ok := l.clients[clientKey]
	if !ok || now.Sub(e.windowStart) > l.window {
		l.clients[clientKey] = &entry{count: 1, windowStart: now, lastSeen: now}
		return true
	}

	e.count++
	e.lastSeen = now
	return e.count <= l.max
}

// Window returns the configured window length (used for Retry-After).
func (l *Limiter) Window() time.Duration { return l.window }

// Len returns the number of tracked clients.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// maybeSweep drops entries idle for more than idleWindows windows. Runs
// inline at most once per window; there is no background timer.
func (l *Limiter) maybeSweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now
	ttl := time.Duration(idleWindows) * l.window
	for key, e := range l.clients {
		if now.Sub(e.lastSeen) > ttl {
			delete(l.clients, key)
		}
	}
}
