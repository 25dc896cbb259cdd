package common

import "sync"

// SeededRNG implements a Mulberry32 seeded pseudo-random number generator.
// Produces deterministic sequences so rendered soundscapes are reproducible.
// It is safe for concurrent use; graph nodes usually Fork a private child.
type SeededRNG struct {
	mu          sync.Mutex
	state       uint32
	initialSeed uint32
}

// NewSeededRNG creates a new seeded random number generator.
func NewSeededRNG(seed uint32) *SeededRNG {
	return &SeededRNG{
		state:       seed,
		initialSeed: seed,
	}
}

// SetSeed sets a new seed and resets the generator state.
func (r *SeededRNG) SetSeed(seed uint32) {
	r.mu.Lock()
	r.state = seed
	r.initialSeed = seed
	r.mu.Unlock()
}

// Reset resets the generator to its initial seed.
func (r *SeededRNG) Reset() {
	r.mu.Lock()
	r.state = r.initialSeed
	r.mu.Unlock()
}

// Seed returns the seed the generator was created or last reseeded with.
func (r *SeededRNG) Seed() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.initialSeed
}

func (r *SeededRNG) next() uint32 {
	r.state += 0x6D2B79F5
	t := r.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return t ^ (t >> 14)
}

// Uint32 returns the next raw 32-bit value.
func (r *SeededRNG) Uint32() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.next()
}

// Random generates the next random number using Mulberry32 algorithm.
// Returns a float64 between 0 (inclusive) and 1 (exclusive).
func (r *SeededRNG) Random() float64 {
	return float64(r.Uint32()) / 4294967296.0
}

// Signed returns a uniform value in [-1, 1).
func (r *SeededRNG) Signed() float64 {
	return r.Random()*2 - 1
}

// Chance reports true with probability p.
func (r *SeededRNG) Chance(p float64) bool {
	return r.Random() < p
}

// RandomInt generates a random integer in the specified range [min, max).
func (r *SeededRNG) RandomInt(min, max int) int {
	return int(r.Random()*float64(max-min)) + min
}

// RandomFloat generates a random float in the specified range [min, max).
func (r *SeededRNG) RandomFloat(min, max float64) float64 {
	return r.Random()*(max-min) + min
}

// Fork derives an independent generator from the next value of r.
// The child sequence is fully determined by r's state at the time of the call.
func (r *SeededRNG) Fork() *SeededRNG {
	return NewSeededRNG(DeriveSeed(r.Uint32(), 1))
}

// DeriveSeed mixes a base seed with a stream index (session number, node index)
// into a well-distributed child seed.
func DeriveSeed(baseSeed uint32, index int) uint32 {
	seed := baseSeed ^ (uint32(index) * 2654435761)
	seed = (seed ^ (seed >> 16)) * 0x85ebca6b
	seed = (seed ^ (seed >> 13)) * 0xc2b2ae35
	return seed ^ (seed >> 16)
}
