package synth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinPatterns(t *testing.T) {
	for _, id := range []int{PatternFlat, PatternSine, PatternSquare, PatternSawtooth, PatternChirp, PatternMixed} {
		segs := BuiltinPattern(id)
		require.NotEmpty(t, segs, "pattern %d", id)
		w := NewWaveform(segs, 1)
		assert.Greater(t, w.TotalPeriod(), 0.0, "pattern %d", id)
	}

	// Unknown ids degrade to a flat seafloor.
	segs := BuiltinPattern(99)
	require.Len(t, segs, 1)
	assert.Equal(t, ShapeZero, segs[0].Shape)
}

func TestLoadPatternFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pattern.yaml")
	content := `segments:
  - duration: 5
    shape: sine
    phase_begin: 0
    phase_end: 0.5
  - duration: 3
    shape: flat_high
  - duration: 4
    shape: ridge_line
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	segs, err := LoadPatternFile(path)
	require.NoError(t, err)
	require.Len(t, segs, 3)

	assert.Equal(t, ShapeSine, segs[0].Shape)
	assert.Equal(t, 5.0, segs[0].Duration)
	assert.Equal(t, 0.5, segs[0].PhaseEnd)
	assert.Equal(t, ShapeFlatHigh, segs[1].Shape)
	// unknown shape name falls back to the zero shape
	assert.Equal(t, ShapeZero, segs[2].Shape)
}

func TestLoadPatternFileErrors(t *testing.T) {
	_, err := LoadPatternFile("/nonexistent/pattern.yaml")
	assert.Error(t, err)

	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("segments: []\n"), 0644))
	_, err = LoadPatternFile(empty)
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("segments: {not a list\n"), 0644))
	_, err = LoadPatternFile(bad)
	assert.Error(t, err)
}
