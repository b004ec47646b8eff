package shared

import (
	"math/rand"
	"sync"
)

// RandomSource supplies uniform draws in [0, 1). Simulations take one by
// injection so tests can pin jitter to exact values.
type RandomSource interface {
	Float64() float64
}

// SeededRandom is a RandomSource backed by a seeded math/rand generator
type SeededRandom struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededRandom creates a deterministic RandomSource
func NewSeededRandom(seed int64) *SeededRandom {
	return &SeededRandom{rng: rand.New(rand.NewSource(seed))}
}

// Float64 returns the next draw
func (r *SeededRandom) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

// FixedRandom always returns Value. Useful in tests.
type FixedRandom struct {
	Value float64
}

func (f FixedRandom) Float64() float64 {
	return f.Value
}

// RandomRange draws uniformly from [min, max). A nil source falls back to
// the global generator.
func RandomRange(src RandomSource, min, max float64) float64 {
	if max <= min {
		return min
	}
	var v float64
	if src != nil {
		v = src.Float64()
	} else {
		v = rand.Float64()
	}
	return min + v*(max-min)
}
