// Package random abstracts uniform random draws so that probabilistic
// simulation decisions can be scripted in tests.
package random

import (
	"math/rand"
	"sync"
)

// Source produces uniform draws in [0, 1).
type Source interface {
	Float64() float64
}

type lockedSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Float64()
}

// New returns a Source seeded with the given seed.
func New(seed int64) Source {
	return &lockedSource{rnd: rand.New(rand.NewSource(seed))}
}

// Sequence is a scripted Source for tests. It returns the configured
// values in order; once exhausted it keeps returning Default.
type Sequence struct {
	mu      sync.Mutex
	values  []float64
	Default float64
}

// NewSequence returns a Sequence that yields vals in order and then
// 0.99 forever (high enough to miss every default probability band).
func NewSequence(vals ...float64) *Sequence {
	return &Sequence{values: vals, Default: 0.99}
}

func (s *Sequence) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 {
		return s.Default
	}
	v := s.values[0]
	s.values = s.values[1:]
	return v
}

// Push appends more scripted values.
func (s *Sequence) Push(vals ...float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = append(s.values, vals...)
}
