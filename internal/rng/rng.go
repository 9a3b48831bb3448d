// Package rng wraps math/rand behind a mutex so game services can share one
// seeded source. Tests construct it with a fixed seed for deterministic rolls.
package rng

import (
	mathrand "math/rand"
	"sync"
	"time"
)

type Rand struct {
	mu sync.Mutex
	r  *mathrand.Rand
}

func New(seed int64) *Rand {
	return &Rand{r: mathrand.New(mathrand.NewSource(seed))}
}

func NewFromTime() *Rand {
	return New(time.Now().UnixNano())
}

func (r *Rand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.r.Float64()
}

func (r *Rand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.r.Intn(n)
}

func (r *Rand) Int63n(n int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.r.Int63n(n)
}

// Between returns a uniform value in [lo, hi].
func (r *Rand) Between(lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return lo + r.r.Int63n(hi-lo+1)
}

func (r *Rand) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.r.Shuffle(n, swap)
}
