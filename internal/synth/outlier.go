package synth

import (
	"math"
	"math/rand"
)

// OutlierInjector occasionally substitutes a large-offset noisy value for the
// normal one, modeling rare sensor faults. Events are gated per tick by the
// Poisson no-event probability exp(-rate*tick), so over a long run the
// fraction of outlier ticks converges to 1-exp(-rate*tick).
type OutlierInjector struct {
	p0    float64 // probability of no event this tick
	model *NoiseInjector
	rng   *rand.Rand
}

// NewOutlierInjector creates an injector firing at the given event rate
// (events per second) for the given tick interval (seconds). A zero rate
// yields the identity. The model generates the substituted value from the
// true one.
func NewOutlierInjector(rate, tickInterval float64, model *NoiseInjector, rng *rand.Rand) *OutlierInjector {
	o := &OutlierInjector{p0: 1, model: model, rng: rng}
	if rate > 0 {
		o.p0 = math.Exp(-rate * tickInterval)
	}
	return o
}

// Apply passes v through unchanged, or substitutes an outlier value when an
// event fires.
func (o *OutlierInjector) Apply(v float64) float64 {
	if o.p0 >= 1 {
		return v
	}
	if o.rng.Float64() > o.p0 {
		return o.model.Apply(v)
	}
	return v
}
