package sim

import (
	"time"

	"github.com/collinskramp/mao-http-endpoint-mock/internal/random"
)

// ErrorInjector partitions [0,1) into disjoint bands for the three
// injectable error kinds. Bands are evaluated against cumulative
// thresholds so they never overlap even if the individual chances are
// tuned independently.
type ErrorInjector struct {
	ServerChance  float64
	ClientChance  float64
	TimeoutChance float64
}

// Classify maps one uniform draw to an error kind, or KindNone.
func (e ErrorInjector) Classify(draw float64) Kind {
	switch {
	case draw < e.ServerChance:
		return KindServerError
	case draw < e.ServerChance+e.ClientChance:
		return KindClientError
	case draw < e.ServerChance+e.ClientChance+e.TimeoutChance:
		return KindTimeout
	default:
		return KindNone
	}
}

// DelayInjector adds bounded artificial latency to a fraction of
// admitted requests.
type DelayInjector struct {
	Chance float64
	Min    time.Duration
	Max    time.Duration
}

// Compute draws whether to delay and, if so, a uniform duration within
// the configured bounds. The caller performs the actual suspension.
func (d DelayInjector) Compute(rnd random.Source) time.Duration {
	if d.Chance <= 0 || rnd.Float64() >= d.Chance {
		return 0
	}
	return uniformDuration(rnd, d.Min, d.Max)
}

// uniformDuration draws uniformly from [min, max).
func uniformDuration(rnd random.Source, min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rnd.Float64()*float64(max-min))
}
