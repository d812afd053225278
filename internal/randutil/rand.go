// Package randutil centralises deterministic RNG construction so every call
// site derives reproducible sequences from a single int64 seed.
package randutil

import rand "math/rand/v2"

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from seed, deriving the
// two 64-bit words rand/v2's PCG needs through an avalanche mix.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Child derives an independent generator from a parent, for per-room streams
// that must not share state with the server's root RNG.
func Child(parent *rand.Rand) *rand.Rand {
	return New(int64(parent.Uint64()))
}

// splitmix64 finaliser.
func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
