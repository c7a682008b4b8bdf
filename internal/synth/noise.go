package synth

import (
	"math"
	"math/rand"
)

// NoiseInjector adds Gaussian noise to a scalar sample. With zero mean and
// deviation it is the identity; with zero deviation it is a pure offset and
// consumes no randomness.
type NoiseInjector struct {
	mean   float64
	stdDev float64
	rng    *rand.Rand
}

// NewNoiseInjector creates a noise injector drawing from rng.
func NewNoiseInjector(mean, stdDev float64, rng *rand.Rand) *NoiseInjector {
	return &NoiseInjector{mean: mean, stdDev: stdDev, rng: rng}
}

// Apply returns the input with noise added. Each call with a nonzero
// deviation consumes fresh randomness via the Box-Muller transform.
func (n *NoiseInjector) Apply(v float64) float64 {
	if n.stdDev == 0 {
		return v + n.mean
	}
	u1 := n.rng.Float64()
	u2 := n.rng.Float64()
	for u1 == 0 {
		u1 = n.rng.Float64()
	}
	gauss := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	return v + n.mean + n.stdDev*gauss
}
