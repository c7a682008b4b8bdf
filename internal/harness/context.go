// Package harness drives a vehicle through the depth-hold test sequence,
// feeding it a synthetic, corrupted seafloor-range signal and asserting
// timing and tolerance bounds at each phase.
package harness

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/oceanbotics/rangehold-harness/internal/status"
	"github.com/oceanbotics/rangehold-harness/internal/synth"
	"github.com/oceanbotics/rangehold-harness/internal/vehicle"
)

// TestConfig is the resolved test configuration, read once at run start.
type TestConfig struct {
	SeafloorPattern int
	MeanDepth       float64 // mean seafloor depth below the surface, m
	RangeTolerance  float64 // pass/fail bound on range deviation, m
	WaveformPeriod  float64 // total period of the seafloor waveform, s

	TargetDepthA  float64
	TargetDepthB  float64
	TraverseDist1 float64
	TraverseDist2 float64
	PauseDuration float64 // seconds
	VerticalSpeed float64 // commanded and assumed vertical speed, m/s
	ForwardSpeed  float64 // commanded and assumed forward speed, m/s
}

// Context is the shared mutable record for one test run. It is written by
// the bridge and the orchestrator states in a fixed per-tick order and lives
// for exactly the duration of the run. There are no concurrent writers.
type Context struct {
	RunID uuid.UUID
	Cfg   TestConfig

	// Collaborators.
	Vehicle   vehicle.Control
	Finder    vehicle.Finder
	Ingestor  vehicle.RangeIngestor // located by the init-sensor state
	Waveform  *synth.Waveform
	Pipeline  *synth.Pipeline
	Messenger *status.Messenger
	Log       zerolog.Logger

	// Refreshed at the top of every tick.
	Pos      vehicle.Position
	PosValid bool

	// Traverse origin, latched from the first valid position.
	Origin     vehicle.Position
	HaveOrigin bool

	// Tick-derived clocks, seconds.
	TickInterval float64
	Elapsed      float64
	StateElapsed float64

	// Last readings produced by the bridge.
	LastTrueRange      float64
	LastCorruptedRange float64
	LastSeafloorDepth  float64
	HaveRange          bool

	// Largest range deviation seen while following the bottom.
	MaxDeviation float64
}

// NewContext creates the run context. The waveform period is recorded in the
// test configuration for log and telemetry consumers.
func NewContext(cfg TestConfig, v vehicle.Control, f vehicle.Finder, w *synth.Waveform,
	p *synth.Pipeline, m *status.Messenger, log zerolog.Logger, tickInterval float64) *Context {

	cfg.WaveformPeriod = w.TotalPeriod()
	return &Context{
		RunID:        uuid.New(),
		Cfg:          cfg,
		Vehicle:      v,
		Finder:       f,
		Waveform:     w,
		Pipeline:     p,
		Messenger:    m,
		Log:          log,
		TickInterval: tickInterval,
	}
}
