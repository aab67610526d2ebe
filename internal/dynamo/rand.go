package dynamo

import "math/rand/v2"

// Rand is the pseudo-random source consumed by the samplers. Draws are made
// in a fixed order so a seeded run is exactly reproducible.
type Rand interface {
	Float64() float64
	IntN(n int) int
	NormFloat64() float64
}

// NewRand returns a PCG generator seeded from seed.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

// UniformInt draws uniformly from the inclusive range [lo, hi].
func UniformInt(rng Rand, lo, hi int) int {
	return lo + rng.IntN(hi-lo+1)
}
