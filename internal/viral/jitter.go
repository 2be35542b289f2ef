package viral

import (
	"math/rand"
	"sync"
)

// Jitter bounds, inclusive, on the 0-100 point scale
const (
	jitterMin = 10
	jitterMax = 40
)

// JitterPolicy supplies the bounded variability term added to every
// score. Injectable so scoring is reproducible under test.
type JitterPolicy interface {
	Jitter() int
}

// SeededJitter draws integers in [10,40] from a seeded generator
type SeededJitter struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededJitter creates a reproducible jitter source
func NewSeededJitter(seed int64) *SeededJitter {
	return &SeededJitter{rng: rand.New(rand.NewSource(seed))}
}

func (j *SeededJitter) Jitter() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return jitterMin + j.rng.Intn(jitterMax-jitterMin+1)
}

// FixedJitter always returns the same value; for tests
type FixedJitter int

func (f FixedJitter) Jitter() int { return int(f) }
