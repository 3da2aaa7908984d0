package sample

import "math/rand/v2"

// NewRNG returns a PCG generator seeded from seed.
func NewRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// intIn draws uniformly from the half-open range [lo, hi).
// An empty range (lo == hi) always yields lo.
func intIn(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.IntN(hi-lo)
}
