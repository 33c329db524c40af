package sim

import "math/rand"

// SystemRand returns a Rand backed by math/rand's global source, which
// is internally locked and therefore safe to share across sessions
// handled on different goroutines.
func SystemRand() Rand {
	return systemRand{}
}

type systemRand struct{}

func (systemRand) Float64() float64 { return rand.Float64() }
func (systemRand) Intn(n int) int   { return rand.Intn(n) }
