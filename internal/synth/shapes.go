package synth

import "math"

// Shape identifies one of the base waveform shapes. Every shape maps a
// normalized phase in [0,1) to a value in [-1,1].
type Shape int

const (
	ShapeZero Shape = iota // fallback for unrecognized identifiers
	ShapeFlatHigh
	ShapeFlatLow
	ShapeSine
	ShapeSquare
	ShapeSawtooth
	ShapeChirp
)

// DefaultChirpGrowth is the ratio between the chirp's final and initial
// instantaneous frequency within a single segment.
const DefaultChirpGrowth = 1.5

func (s Shape) String() string {
	switch s {
	case ShapeFlatHigh:
		return "flat_high"
	case ShapeFlatLow:
		return "flat_low"
	case ShapeSine:
		return "sine"
	case ShapeSquare:
		return "square"
	case ShapeSawtooth:
		return "sawtooth"
	case ShapeChirp:
		return "chirp"
	default:
		return "zero"
	}
}

// ParseShape maps a shape name to its Shape. Unknown names map to ShapeZero
// rather than an error, so a bad pattern file degrades to a flat seafloor.
func ParseShape(name string) Shape {
	switch name {
	case "flat_high":
		return ShapeFlatHigh
	case "flat_low":
		return ShapeFlatLow
	case "sine":
		return ShapeSine
	case "square":
		return ShapeSquare
	case "sawtooth":
		return ShapeSawtooth
	case "chirp":
		return ShapeChirp
	default:
		return ShapeZero
	}
}

// Eval evaluates the shape at the given normalized phase.
func (s Shape) Eval(phase float64) float64 {
	switch s {
	case ShapeFlatHigh:
		return 1
	case ShapeFlatLow:
		return -1
	case ShapeSine:
		return math.Sin(2 * math.Pi * phase)
	case ShapeSquare:
		if phase < 0.5 {
			return 1
		}
		return -1
	case ShapeSawtooth:
		// Symmetric ramp -1 -> 1 -> -1 with breakpoints at 0.25 and 0.75.
		switch {
		case phase < 0.25:
			return phase * 4
		case phase < 0.75:
			return 1 - (phase-0.25)*4
		default:
			return (phase-0.75)*4 - 1
		}
	case ShapeChirp:
		return chirp(phase, DefaultChirpGrowth)
	default:
		return 0
	}
}

// chirp produces one sinusoidal cycle per segment whose instantaneous
// frequency rises linearly from f0 to f0*growth across the segment.
func chirp(phase, growth float64) float64 {
	f0 := 2 / (growth + 1)
	c := f0 * (growth - 1) / 2
	return math.Sin(2 * math.Pi * (c*phase*phase + f0*phase))
}
