package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/collinskramp/mao-http-endpoint-mock/internal/random"
)

func TestErrorInjector_CumulativeBands(t *testing.T) {
	inj := ErrorInjector{ServerChance: 0.05, ClientChance: 0.03, TimeoutChance: 0.02}

	tests := []struct {
		name string
		draw float64
		want Kind
	}{
		{"server band start", 0.0, KindServerError},
		{"server band end", 0.049, KindServerError},
		{"client band start", 0.05, KindClientError},
		{"client band end", 0.079, KindClientError},
		{"timeout band start", 0.08, KindTimeout},
		{"timeout band end", 0.099, KindTimeout},
		{"none band start", 0.1, KindNone},
		{"none band end", 0.999, KindNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, inj.Classify(tt.draw))
		})
	}
}

func TestErrorInjector_ZeroChances(t *testing.T) {
	inj := ErrorInjector{}
	assert.Equal(t, KindNone, inj.Classify(0.0))
}

func TestDelayInjector_Compute(t *testing.T) {
	d := DelayInjector{Chance: 0.2, Min: 500 * time.Millisecond, Max: 3 * time.Second}

	// Miss: the single chance draw is above 0.2.
	assert.Zero(t, d.Compute(random.NewSequence(0.5)))

	// Hit at the low bound.
	assert.Equal(t, 500*time.Millisecond, d.Compute(random.NewSequence(0.1, 0.0)))

	// Hit mid-band: 500ms + 0.5*(2500ms) = 1750ms.
	assert.Equal(t, 1750*time.Millisecond, d.Compute(random.NewSequence(0.1, 0.5)))

	// Disabled injector never draws a duration.
	off := DelayInjector{Chance: 0, Min: time.Second, Max: time.Second}
	assert.Zero(t, off.Compute(random.NewSequence(0.0)))
}

func TestKind_StatusCodes(t *testing.T) {
	want := map[Kind]int{
		KindRateLimit:          429,
		KindServiceUnavailable: 503,
		KindBreakerOpen:        503,
		KindServerError:        500,
		KindClientError:        400,
		KindTimeout:            408,
		KindNetworkFailure:     504,
		KindValidation:         400,
		KindUnexpected:         500,
		KindNone:               200,
	}
	for kind, status := range want {
		assert.Equal(t, status, kind.StatusCode(), "kind %q", kind)
	}
}
