package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelayLineCapacity(t *testing.T) {
	assert.Equal(t, 10, NewDelayLine(0.2, 0.02).Capacity())
	assert.Equal(t, 1, NewDelayLine(0.001, 0.02).Capacity()) // ceil
	assert.Equal(t, 0, NewDelayLine(0, 0.02).Capacity())
}

func TestDelayLineZeroDelayIsIdentity(t *testing.T) {
	d := NewDelayLine(0, 0.02)
	for i := 0; i < 100; i++ {
		v := float64(i)
		assert.Equal(t, v, d.Apply(v))
	}
}

func TestDelayLineWarmStartAndShift(t *testing.T) {
	const n = 10
	d := NewDelayLine(0.2, 0.02)
	require.Equal(t, n, d.Capacity())

	// Warm-start: the first sample fills the buffer, so for the first N
	// ticks the output is input(0); afterwards output(k) == input(k-N).
	for k := 0; k < 500; k++ {
		out := d.Apply(float64(k))
		if k < n {
			assert.Equal(t, 0.0, out, "tick %d", k)
		} else {
			assert.Equal(t, float64(k-n), out, "tick %d", k)
		}
	}
}

func TestDelayLineWarmStartUsesFirstSampleNotZero(t *testing.T) {
	d := NewDelayLine(0.1, 0.02)
	require.Equal(t, 5, d.Capacity())

	// Steady-state assumption: before real history accumulates, the line
	// replays the first observed sample, not zeros.
	assert.Equal(t, 7.5, d.Apply(7.5))
	assert.Equal(t, 7.5, d.Apply(8.0))
	assert.Equal(t, 7.5, d.Apply(8.5))
}
