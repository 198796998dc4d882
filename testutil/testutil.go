package testutil

import (
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Range returns a pseudo-random number in [lo,hi).
func (r *RNG) Range(lo, hi int) int {
	return lo + r.Intn(hi-lo)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Ints returns n pseudo-random numbers in [0,max).
// Locks only once per call.
func (r *RNG) Ints(n, max int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, n)
	for i := range out {
		out[i] = r.rand.Intn(max)
	}
	return out
}

// Bytes returns n pseudo-random bytes. The result does not compress.
func (r *RNG) Bytes(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := make([]byte, n)
	_, _ = r.rand.Read(b)
	return b
}

// TextBytes returns n bytes drawn from a small vocabulary of words, which
// compresses well.
func (r *RNG) TextBytes(n int) []byte {
	words := []string{"alpha", "beta", "gamma", "delta", "slice", "view", "buffer", "block"}

	r.mu.Lock()
	defer r.mu.Unlock()
	b := make([]byte, 0, n+8)
	for len(b) < n {
		b = append(b, words[r.rand.Intn(len(words))]...)
		b = append(b, ' ')
	}
	return b[:n]
}
