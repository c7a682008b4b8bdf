package synth

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Built-in seafloor pattern identifiers, selected by numeric parameter.
const (
	PatternFlat = iota
	PatternSine
	PatternSquare
	PatternSawtooth
	PatternChirp
	PatternMixed
)

// BuiltinPattern returns the segment list for a built-in seafloor pattern id.
// Unknown ids fall back to a flat seafloor.
func BuiltinPattern(id int) []Segment {
	switch id {
	case PatternSine:
		return []Segment{{Duration: 40, Shape: ShapeSine}}
	case PatternSquare:
		return []Segment{{Duration: 40, Shape: ShapeSquare}}
	case PatternSawtooth:
		return []Segment{{Duration: 40, Shape: ShapeSawtooth}}
	case PatternChirp:
		return []Segment{{Duration: 40, Shape: ShapeChirp}}
	case PatternMixed:
		// A traverse profile exercising every shape: plateaus, a ridge, a
		// step, a ramp field and a frequency sweep.
		return []Segment{
			{Duration: 8, Shape: ShapeFlatLow},
			{Duration: 10, Shape: ShapeSine, PhaseBegin: 0, PhaseEnd: 0.5},
			{Duration: 8, Shape: ShapeFlatHigh},
			{Duration: 6, Shape: ShapeSquare},
			{Duration: 10, Shape: ShapeSawtooth},
			{Duration: 12, Shape: ShapeChirp},
		}
	default:
		return []Segment{{Duration: 40, Shape: ShapeZero}}
	}
}

// patternFile is the YAML layout of a custom seafloor pattern.
type patternFile struct {
	Segments []struct {
		Duration   float64 `yaml:"duration"`
		Shape      string  `yaml:"shape"`
		PhaseBegin float64 `yaml:"phase_begin"`
		PhaseEnd   float64 `yaml:"phase_end"`
	} `yaml:"segments"`
}

// LoadPatternFile reads a custom seafloor pattern from a YAML file. Segment
// normalization applies the usual fallbacks, so a sloppy file still yields a
// usable waveform; an empty segment list is an error.
func LoadPatternFile(path string) ([]Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pattern file: %w", err)
	}
	var pf patternFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse pattern file: %w", err)
	}
	if len(pf.Segments) == 0 {
		return nil, fmt.Errorf("pattern file %s defines no segments", path)
	}
	segments := make([]Segment, 0, len(pf.Segments))
	for _, s := range pf.Segments {
		segments = append(segments, Segment{
			Duration:   s.Duration,
			Shape:      ParseShape(s.Shape),
			PhaseBegin: s.PhaseBegin,
			PhaseEnd:   s.PhaseEnd,
		})
	}
	return segments, nil
}
