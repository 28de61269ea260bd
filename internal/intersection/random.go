package intersection

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Random is the source of randomness shared by the light and every
// vehicle. Implementations must be safe for concurrent use.
type Random interface {
	// IntN returns a value in [0, n).
	IntN(n int) int
	// Int64N returns a value in [0, n).
	Int64N(n int64) int64
	// Float64 returns a value in [0.0, 1.0).
	Float64() float64
	// Shuffle pseudo-randomizes the order of n elements.
	Shuffle(n int, swap func(i, j int))
}

type lockedRandom struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandom returns a concurrency-safe PCG source. A zero seed seeds from
// the current time.
func NewRandom(seed uint64) Random {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &lockedRandom{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *lockedRandom) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.IntN(n)
}

func (r *lockedRandom) Int64N(n int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Int64N(n)
}

func (r *lockedRandom) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Float64()
}

func (r *lockedRandom) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rnd.Shuffle(n, swap)
}

// between returns lo plus a uniformly drawn whole number of steps, never
// exceeding hi.
func between(rng Random, lo, hi, step time.Duration) time.Duration {
	if hi <= lo || step <= 0 {
		return lo
	}
	steps := int64((hi - lo) / step)
	return lo + time.Duration(rng.Int64N(steps+1))*step
}
