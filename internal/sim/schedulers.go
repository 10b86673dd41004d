package sim

import (
	"time"

	"github.com/collinskramp/mao-http-endpoint-mock/internal/random"
)

// OutageScheduler draws Bernoulli-triggered extended unavailability
// windows. Only one outage may be active at a time; while a window is
// set, no new draw happens. Expiry is detected lazily on the next
// request after the end time: a system under zero traffic never heals
// on a wall-clock schedule, only on next observation.
//
// Not internally locked; owned and guarded by the Pipeline.
type OutageScheduler struct {
	Chance float64
	Min    time.Duration
	Max    time.Duration

	start time.Time
	end   time.Time
}

// Available reports whether the service is up at now, starting or
// clearing an outage window as a side effect.
func (o *OutageScheduler) Available(rnd random.Source, now time.Time) bool {
	if !o.end.IsZero() {
		if now.Before(o.end) {
			return false
		}
		// Window expired; the first request strictly after the end
		// time clears it and is served.
		o.start, o.end = time.Time{}, time.Time{}
		return true
	}
	if rnd.Float64() < o.Chance {
		o.start = now
		o.end = now.Add(uniformDuration(rnd, o.Min, o.Max))
		return false
	}
	return true
}

// Remaining returns time left in the active outage window, or zero.
func (o *OutageScheduler) Remaining(now time.Time) time.Duration {
	if o.end.IsZero() || now.After(o.end) {
		return 0
	}
	return o.end.Sub(now)
}

// Window returns the active outage bounds, or ok=false.
func (o *OutageScheduler) Window() (start, end time.Time, ok bool) {
	if o.end.IsZero() {
		return time.Time{}, time.Time{}, false
	}
	return o.start, o.end, true
}

// NormalPeriodScheduler draws Bernoulli-triggered windows of guaranteed
// success during which error injection and plain drops are bypassed.
//
// Not internally locked; owned and guarded by the Pipeline.
type NormalPeriodScheduler struct {
	Chance float64
	Min    time.Duration
	Max    time.Duration

	start    time.Time
	duration time.Duration
}

// Active reports whether a normal period covers now, expiring a stale
// window and possibly drawing a new one as a side effect.
func (n *NormalPeriodScheduler) Active(rnd random.Source, now time.Time) bool {
	if !n.start.IsZero() && now.Sub(n.start) > n.duration {
		n.start, n.duration = time.Time{}, 0
	}
	if n.start.IsZero() && rnd.Float64() < n.Chance {
		n.start = now
		n.duration = uniformDuration(rnd, n.Min, n.Max)
	}
	return !n.start.IsZero()
}

// Period returns the active window, or ok=false.
func (n *NormalPeriodScheduler) Period() (start time.Time, duration time.Duration, ok bool) {
	if n.start.IsZero() {
		return time.Time{}, 0, false
	}
	return n.start, n.duration, true
}
