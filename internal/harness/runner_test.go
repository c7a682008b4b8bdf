package harness

import (
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanbotics/rangehold-harness/internal/status"
	"github.com/oceanbotics/rangehold-harness/internal/synth"
	"github.com/oceanbotics/rangehold-harness/internal/vehicle"
)

// runFullSequence drives the harness against the simulated vehicle until a
// terminal state or the tick budget runs out.
func runFullSequence(t *testing.T, cfg TestConfig, delay float64, maxTicks int) (*Runner, *vehicle.SimVehicle, *captureSink) {
	t.Helper()

	const tick = 0.02
	sub := vehicle.NewSimVehicle(vehicle.Position{Z: -1})
	w := synth.NewWaveform([]synth.Segment{{Duration: 40, Shape: synth.ShapeSine}}, 1)
	p := synth.NewPipeline(synth.CorruptionParams{
		Delay:        delay,
		TickInterval: tick,
	}, rand.New(rand.NewSource(1)))

	sink := &captureSink{}
	ctx := NewContext(cfg, sub, sub, w, p,
		status.NewMessenger(sink), zerolog.Nop(), tick)
	r := NewRunner(ctx)

	for i := 0; i < maxTicks; i++ {
		sub.Step(tick)
		if r.Step() {
			return r, sub, sink
		}
	}
	t.Fatalf("run did not terminate within %d ticks, stuck in %s", maxTicks, r.State())
	return nil, nil, nil
}

func TestRunnerFullSequencePasses(t *testing.T) {
	cfg := TestConfig{
		MeanDepth:      20,
		RangeTolerance: 3,
		TargetDepthA:   12,
		TargetDepthB:   15,
		TraverseDist1:  4,
		TraverseDist2:  4,
		PauseDuration:  0.5,
		VerticalSpeed:  0.5,
		ForwardSpeed:   1,
	}

	r, sub, sink := runFullSequence(t, cfg, 0.1, 10000)

	require.True(t, r.Passed())
	assert.Equal(t, StateSucceeded, r.State())
	assert.False(t, sub.Armed(), "sequence ends disarmed")
	assert.Equal(t, vehicle.ModeManual, sub.Mode())
	assert.Less(t, r.Context().MaxDeviation, cfg.RangeTolerance)

	var passed bool
	for _, msg := range sink.messages {
		if msg == "depth-hold test passed" {
			passed = true
		}
	}
	assert.True(t, passed, "success message emitted, got %v", sink.messages)
}

func TestRunnerFailsOnImpossibleTolerance(t *testing.T) {
	cfg := TestConfig{
		MeanDepth:      20,
		RangeTolerance: 1e-4, // nothing real tracks this tightly
		TargetDepthA:   12,
		TargetDepthB:   15,
		TraverseDist1:  4,
		TraverseDist2:  4,
		PauseDuration:  0.5,
		VerticalSpeed:  0.5,
		ForwardSpeed:   1,
	}

	r, sub, _ := runFullSequence(t, cfg, 0.1, 10000)

	require.False(t, r.Passed())
	assert.Equal(t, StateFailed, r.State())
	// failure cleanup left the vehicle safe
	assert.False(t, sub.Armed())
	assert.Equal(t, vehicle.ModeManual, sub.Mode())
}

func TestRunnerTerminalStateAbsorbs(t *testing.T) {
	cfg := TestConfig{
		MeanDepth:      20,
		RangeTolerance: 3,
		TargetDepthA:   12,
		TargetDepthB:   15,
		TraverseDist1:  4,
		TraverseDist2:  4,
		PauseDuration:  0.5,
		VerticalSpeed:  0.5,
		ForwardSpeed:   1,
	}

	r, sub, _ := runFullSequence(t, cfg, 0, 10000)
	require.True(t, r.Passed())

	for i := 0; i < 100; i++ {
		sub.Step(0.02)
		assert.True(t, r.Step())
	}
	assert.Equal(t, StateSucceeded, r.State())
}

func TestRunnerNextDelay(t *testing.T) {
	f := newFakeVehicle()
	ctx, _ := newTestContext(f, flatWaveform(), transparentPipeline())
	r := NewRunner(ctx)
	assert.Equal(t, 20*time.Millisecond, r.NextDelay())
}

func TestRunnerTickOrderUpdatesClocks(t *testing.T) {
	f := newFakeVehicle()
	f.pos = vehicle.Position{Z: -2}
	ctx, _ := newTestContext(f, flatWaveform(), transparentPipeline())
	r := NewRunner(ctx)

	r.Step()
	assert.InDelta(t, 0.02, ctx.Elapsed, 1e-12)
	assert.Equal(t, ctx.Pos, f.pos, "position refreshed before the bridge runs")
	assert.True(t, ctx.HaveRange, "bridge ran this tick")
}
