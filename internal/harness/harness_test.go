package harness

import (
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/oceanbotics/rangehold-harness/internal/status"
	"github.com/oceanbotics/rangehold-harness/internal/synth"
	"github.com/oceanbotics/rangehold-harness/internal/vehicle"
)

// fakeVehicle is a fully scripted collaborator for state-level tests. Tests
// poke its fields directly instead of running dynamics.
type fakeVehicle struct {
	pos   vehicle.Position
	posOK bool

	armed   bool
	armOK   bool // whether Arm takes effect
	mode    vehicle.Mode
	modeOK  bool // whether SetMode takes effect
	vzCmds  []float64
	vxCmds  []float64
	stopped int

	backends []vehicle.Backend
	ingested []float64
	ingestOK bool
}

func newFakeVehicle() *fakeVehicle {
	return &fakeVehicle{
		posOK:    true,
		armOK:    true,
		modeOK:   true,
		ingestOK: true,
		backends: []vehicle.Backend{
			{Slot: 0, Type: 1},
			{Slot: 2, Type: vehicle.BackendTypeInjected},
		},
	}
}

func (f *fakeVehicle) SetMode(m vehicle.Mode) bool {
	if f.modeOK {
		f.mode = m
	}
	return f.modeOK
}

func (f *fakeVehicle) Mode() vehicle.Mode { return f.mode }

func (f *fakeVehicle) Arm() bool {
	if f.armOK {
		f.armed = true
	}
	return f.armOK
}

func (f *fakeVehicle) Disarm() bool {
	f.armed = false
	return true
}

func (f *fakeVehicle) Armed() bool { return f.armed }

func (f *fakeVehicle) Position() (vehicle.Position, bool) {
	return f.pos, f.posOK
}

func (f *fakeVehicle) SetVerticalVelocity(mps float64) bool {
	f.vzCmds = append(f.vzCmds, mps)
	return true
}

func (f *fakeVehicle) SetForwardVelocity(mps float64) bool {
	f.vxCmds = append(f.vxCmds, mps)
	return true
}

func (f *fakeVehicle) StopMotion() bool {
	f.stopped++
	return true
}

func (f *fakeVehicle) Ingest(rangeMeters float64) bool {
	if f.ingestOK {
		f.ingested = append(f.ingested, rangeMeters)
	}
	return f.ingestOK
}

func (f *fakeVehicle) Backends() []vehicle.Backend { return f.backends }

func (f *fakeVehicle) Ingestor(slot int) (vehicle.RangeIngestor, bool) {
	for _, b := range f.backends {
		if b.Slot == slot && b.Type == vehicle.BackendTypeInjected {
			return f, true
		}
	}
	return nil, false
}

type captureSink struct {
	messages []string
}

func (c *captureSink) Send(text string) {
	c.messages = append(c.messages, text)
}

func testConfig() TestConfig {
	return TestConfig{
		MeanDepth:      20,
		RangeTolerance: 2,
		TargetDepthA:   12,
		TargetDepthB:   15,
		TraverseDist1:  8,
		TraverseDist2:  12,
		PauseDuration:  5,
		VerticalSpeed:  0.5,
		ForwardSpeed:   1,
	}
}

// transparentPipeline corrupts nothing: no noise, no outliers, no delay.
func transparentPipeline() *synth.Pipeline {
	return synth.NewPipeline(synth.CorruptionParams{TickInterval: 0.02}, rand.New(rand.NewSource(1)))
}

func flatWaveform() *synth.Waveform {
	return synth.NewWaveform([]synth.Segment{{Duration: 40, Shape: synth.ShapeZero}}, 1)
}

func newTestContext(f *fakeVehicle, w *synth.Waveform, p *synth.Pipeline) (*Context, *captureSink) {
	sink := &captureSink{}
	ctx := NewContext(testConfig(), f, f, w, p,
		status.NewMessenger(sink), zerolog.Nop(), 0.02)
	return ctx, sink
}
