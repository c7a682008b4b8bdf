package vehicle

// Position is a 3D vehicle position in meters. Z is altitude relative to the
// water surface, so a submerged vehicle has negative Z.
type Position struct {
	X float64
	Y float64
	Z float64
}

// Mode is a numeric control-mode identifier.
type Mode int

const (
	ModeManual Mode = iota
	ModeDepthHold
	ModeRangeHold
)

func (m Mode) String() string {
	switch m {
	case ModeDepthHold:
		return "depth_hold"
	case ModeRangeHold:
		return "range_hold"
	default:
		return "manual"
	}
}

// Control is the vehicle-control collaborator. Every call returns an explicit
// status; callers check it at the call site and never treat a false as a
// reason to panic.
type Control interface {
	SetMode(m Mode) bool
	Mode() Mode
	Arm() bool
	Disarm() bool
	Armed() bool

	// Position reports the current 3D position; ok is false during a data
	// gap (no position estimate available this tick).
	Position() (pos Position, ok bool)

	// Velocity overrides in meters per second. Vertical is positive up,
	// forward is positive along the traverse axis. StopMotion zeroes both.
	SetVerticalVelocity(mps float64) bool
	SetForwardVelocity(mps float64) bool
	StopMotion() bool
}

// RangeIngestor accepts one scalar range sample (meters to the seafloor) per
// call. A false return is a diagnostic-only event, never fatal.
type RangeIngestor interface {
	Ingest(rangeMeters float64) bool
}

// BackendTypeInjected is the type code of a range backend that accepts
// injected samples.
const BackendTypeInjected = 10

// Backend describes one configured range-sensor backend.
type Backend struct {
	Slot int
	Type int
}

// Finder is the sensor-discovery collaborator: it enumerates configured range
// backends so the harness can locate the one accepting injected samples.
type Finder interface {
	Backends() []Backend
	Ingestor(slot int) (RangeIngestor, bool)
}
