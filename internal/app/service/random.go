package service

import (
	"math/rand/v2"
	"sync"
)

// RandomSource picks uniformly from [0, n). Session codes, random topics and
// random operations are all drawn from it.
type RandomSource interface {
	IntN(n int) int
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRandomSource returns a deterministic source for the given seeds.
func NewRandomSource(seed1, seed2 uint64) RandomSource {
	return &lockedRand{r: rand.New(rand.NewPCG(seed1, seed2))}
}

// NewSystemRandom returns a source seeded from the runtime's random state.
func NewSystemRandom() RandomSource {
	return NewRandomSource(rand.Uint64(), rand.Uint64())
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

func pick[T any](rnd RandomSource, items []T) T {
	return items[rnd.IntN(len(items))]
}
