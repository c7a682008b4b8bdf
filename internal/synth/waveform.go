package synth

import "math"

// minPhaseSpan is the smallest usable phase range for a segment. Segments
// below it are silently reset to the full [0,1) range.
const minPhaseSpan = 1e-6

// Segment is one timed piece of a composite waveform. It maps a sub-range of
// normalized phase [PhaseBegin, PhaseEnd) onto a base shape over Duration
// seconds.
type Segment struct {
	Duration   float64
	Shape      Shape
	PhaseBegin float64
	PhaseEnd   float64

	// Derived during Build.
	timeBegin  float64
	timeEnd    float64
	phaseScale float64
}

// normalize resets degenerate segments: a non-positive duration or a phase
// span below minPhaseSpan falls back to one second of the full phase range.
func (s *Segment) normalize() {
	if s.Duration <= 0 {
		s.Duration = 1
		s.PhaseBegin = 0
		s.PhaseEnd = 1
	}
	if s.PhaseEnd == 0 && s.PhaseBegin != 0 {
		// phase_end unset: default to one full cycle from phase_begin
		s.PhaseEnd = s.PhaseBegin + 1
	}
	if s.PhaseEnd-s.PhaseBegin < minPhaseSpan {
		s.PhaseBegin = 0
		s.PhaseEnd = 1
	}
	s.phaseScale = (s.PhaseEnd - s.PhaseBegin) / s.Duration
}

// Sample is the result of evaluating a waveform at a point in time.
type Sample struct {
	CycleTime float64 // elapsed time within the current cycle
	Value     float64 // waveform value, in [-Amplitude, Amplitude]
}

// Waveform assembles an ordered list of segments into one continuous,
// periodic function of elapsed time.
//
// Evaluate captures its time origin on the first call and assumes
// non-decreasing time thereafter, except at the cycle wraparound. Feeding
// decreasing times outside the wrap is undefined behavior; the generator must
// be rebuilt to change time origin.
type Waveform struct {
	segments  []Segment
	period    float64
	amplitude float64

	started bool
	base    float64
	index   int
}

// NewWaveform builds a waveform from the given segments, normalizing each one
// and assigning cumulative time ranges. The amplitude scales every evaluated
// value.
func NewWaveform(segments []Segment, amplitude float64) *Waveform {
	w := &Waveform{
		segments:  make([]Segment, len(segments)),
		amplitude: amplitude,
	}
	copy(w.segments, segments)

	total := 0.0
	for i := range w.segments {
		seg := &w.segments[i]
		seg.normalize()
		seg.timeBegin = total
		total += seg.Duration
		seg.timeEnd = total
	}
	w.period = total
	return w
}

// TotalPeriod returns the sum of all segment durations.
func (w *Waveform) TotalPeriod() float64 { return w.period }

// Amplitude returns the configured amplitude.
func (w *Waveform) Amplitude() float64 { return w.amplitude }

// Evaluate returns the cycle time and waveform value for the given elapsed
// time. The first call fixes the time origin.
func (w *Waveform) Evaluate(now float64) Sample {
	if len(w.segments) == 0 || w.period <= 0 {
		return Sample{}
	}
	if !w.started {
		w.started = true
		w.base = now
		w.index = 0
	}

	cycle := math.Mod(now-w.base, w.period)
	if cycle < 0 {
		cycle += w.period
	}

	// The cycle wrapped if we are now before the active segment's start.
	if cycle < w.segments[w.index].timeBegin {
		w.index = 0
	}
	for cycle >= w.segments[w.index].timeEnd && w.index < len(w.segments)-1 {
		w.index++
	}

	seg := &w.segments[w.index]
	elapsed := cycle - seg.timeBegin
	phase := math.Mod(elapsed*seg.phaseScale+seg.PhaseBegin, 1.0)
	return Sample{CycleTime: cycle, Value: seg.Shape.Eval(phase) * w.amplitude}
}
