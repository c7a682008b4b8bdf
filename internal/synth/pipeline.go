package synth

import "math/rand"

// CorruptionParams configures the signal corruption chain. Immutable once a
// Pipeline is built from it.
type CorruptionParams struct {
	NoiseMean     float64
	NoiseStdDev   float64
	OutlierRate   float64 // events per second
	OutlierMean   float64 // offset of the substituted outlier value
	OutlierStdDev float64
	Delay         float64 // seconds of reporting latency
	TickInterval  float64 // seconds per tick
}

// Pipeline is the per-tick corruption chain applied to a true sensor value:
// noise, then an occasional outlier substitution, then fixed latency.
type Pipeline struct {
	noise   *NoiseInjector
	outlier *OutlierInjector
	delay   *DelayLine
}

// NewPipeline builds the corruption chain for one test configuration. All
// stochastic stages draw from rng.
func NewPipeline(p CorruptionParams, rng *rand.Rand) *Pipeline {
	model := NewNoiseInjector(p.OutlierMean, p.OutlierStdDev, rng)
	return &Pipeline{
		noise:   NewNoiseInjector(p.NoiseMean, p.NoiseStdDev, rng),
		outlier: NewOutlierInjector(p.OutlierRate, p.TickInterval, model, rng),
		delay:   NewDelayLine(p.Delay, p.TickInterval),
	}
}

// Apply corrupts one true value.
func (p *Pipeline) Apply(trueValue float64) float64 {
	return p.delay.Apply(p.outlier.Apply(p.noise.Apply(trueValue)))
}
