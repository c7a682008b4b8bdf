package harness

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanbotics/rangehold-harness/internal/synth"
	"github.com/oceanbotics/rangehold-harness/internal/vehicle"
)

func TestBridgeSkipsWithoutPosition(t *testing.T) {
	f := newFakeVehicle()
	ctx, sink := newTestContext(f, flatWaveform(), transparentPipeline())
	ctx.Ingestor = f
	ctx.PosValid = false

	b := NewBridge(ctx)
	for i := 0; i < 10; i++ {
		b.Tick()
	}

	assert.Empty(t, f.ingested)
	assert.False(t, ctx.HaveRange)
	// rate limiting collapses the repeated diagnostic
	require.Len(t, sink.messages, 1)
	assert.Contains(t, sink.messages[0], "position")
}

func TestBridgeDeliversTrueRange(t *testing.T) {
	f := newFakeVehicle()
	ctx, _ := newTestContext(f, flatWaveform(), transparentPipeline())
	ctx.Ingestor = f
	ctx.Pos, ctx.PosValid = vehicle.Position{Z: -10}, true

	NewBridge(ctx).Tick()

	// Flat seafloor at the 20 m mean depth under a vehicle at 10 m depth.
	require.Len(t, f.ingested, 1)
	assert.InDelta(t, 10.0, f.ingested[0], 1e-9)
	assert.InDelta(t, 10.0, ctx.LastTrueRange, 1e-9)
	assert.InDelta(t, 10.0, ctx.LastCorruptedRange, 1e-9)
	assert.True(t, ctx.HaveRange)
}

func TestBridgeUsesDistanceFromOrigin(t *testing.T) {
	f := newFakeVehicle()
	// Seafloor relief: +2 m for the first 5 m of traverse, -2 m after.
	w := synth.NewWaveform([]synth.Segment{
		{Duration: 5, Shape: synth.ShapeFlatHigh},
		{Duration: 5, Shape: synth.ShapeFlatLow},
	}, 2)
	ctx, _ := newTestContext(f, w, transparentPipeline())
	ctx.Ingestor = f
	b := NewBridge(ctx)

	// Origin latches from the first valid position, wherever that is.
	ctx.Pos, ctx.PosValid = vehicle.Position{X: 100, Z: -10}, true
	b.Tick()
	require.Len(t, f.ingested, 1)
	assert.InDelta(t, 8.0, f.ingested[0], 1e-9) // floor at -18

	ctx.Pos.X = 106 // 6 m traveled: second segment, floor at -22
	b.Tick()
	require.Len(t, f.ingested, 2)
	assert.InDelta(t, 12.0, f.ingested[1], 1e-9)
}

func TestBridgeDropsNonPositiveReadings(t *testing.T) {
	f := newFakeVehicle()
	p := synth.NewPipeline(synth.CorruptionParams{
		NoiseMean:    -50,
		TickInterval: 0.02,
	}, rand.New(rand.NewSource(1)))
	ctx, _ := newTestContext(f, flatWaveform(), p)
	ctx.Ingestor = f
	ctx.Pos, ctx.PosValid = vehicle.Position{Z: -10}, true

	NewBridge(ctx).Tick()

	assert.Empty(t, f.ingested)
	assert.False(t, ctx.HaveRange, "last readings only update on delivery")
}

func TestBridgeIngestRejectionIsDiagnosticOnly(t *testing.T) {
	f := newFakeVehicle()
	f.ingestOK = false
	ctx, sink := newTestContext(f, flatWaveform(), transparentPipeline())
	ctx.Ingestor = f
	ctx.Pos, ctx.PosValid = vehicle.Position{Z: -10}, true

	b := NewBridge(ctx)
	b.Tick()
	b.Tick()

	// Rejection is reported but the run state still advances.
	require.NotEmpty(t, sink.messages)
	assert.Contains(t, sink.messages[0], "rejected")
	assert.True(t, ctx.HaveRange)
}

func TestBridgeWorksBeforeBackendLocated(t *testing.T) {
	f := newFakeVehicle()
	ctx, _ := newTestContext(f, flatWaveform(), transparentPipeline())
	ctx.Pos, ctx.PosValid = vehicle.Position{Z: -10}, true

	// No ingestor yet: the sample is still produced and recorded.
	NewBridge(ctx).Tick()
	assert.Empty(t, f.ingested)
	assert.True(t, ctx.HaveRange)
}
