package resolve

import (
	"math/rand"
	"sync"
)

// Rand is the random source behind every balance-affecting roll. Production
// wires math/rand seeded from the clock; tests pass a fixed seed so outcomes
// replay exactly.
type Rand interface {
	Intn(n int) int
	Int63n(n int64) int64
	Float64() float64
}

func NewRand(seed int64) Rand {
	return rand.New(rand.NewSource(seed))
}

// NewLockedRand is safe for concurrent use; command handlers and timer
// callbacks share one source in production.
func NewLockedRand(seed int64) Rand {
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

func (l *lockedRand) Int63n(n int64) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Int63n(n)
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// roll returns a uniform value in [min,max].
func roll(r Rand, min, max int64) int64 {
	if max <= min {
		return min
	}
	return min + r.Int63n(max-min+1)
}

func pct(r Rand, p int) bool {
	return r.Intn(100) < p
}

func permille(r Rand, p int) bool {
	return r.Intn(1000) < p
}
