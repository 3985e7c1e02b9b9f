package generator

import (
	"math/rand"
	"time"
)

// RandomSource is the subset of *rand.Rand the generators draw from.
// Every generator owns the source it was built with, so two generators
// never share random state unless the caller hands them the same source.
type RandomSource interface {
	Int63n(n int64) int64
	Float64() float64
}

// NewRandom returns a deterministic source for the given seed.
// A zero seed picks one from the wall clock.
func NewRandom(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// NextOpenFloat64 draws a value strictly inside (0, 1).
// Draws of exactly 0 or 1 are rejected and redrawn.
func NextOpenFloat64(src RandomSource) float64 {
	for {
		v := src.Float64()
		if v > 0.0 && v < 1.0 {
			return v
		}
	}
}
