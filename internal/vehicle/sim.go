package vehicle

import "math"

// Range-hold tracking behavior of the simulated vehicle.
const (
	simTrackingGain = 0.8 // proportional climb-rate response, 1/s
	simMaxAutoClimb = 0.6 // m/s cap on the tracking response
)

// SimVehicle is a tick-stepped kinematic vehicle model implementing the
// Control, RangeIngestor and Finder collaborator interfaces. Commanded
// velocities integrate directly into position; there are no attitude or drag
// dynamics.
//
// In range-hold mode the vehicle latches the first ingested range reading as
// its tracking target and applies a proportional climb-rate response to hold
// it, mirroring how a real vehicle's surface tracking resets its target on
// the first good reading after the mode engages.
type SimVehicle struct {
	pos      Position
	posValid bool

	armed bool
	mode  Mode

	cmdVertical float64
	cmdForward  float64

	// Range-hold tracking state.
	haveTarget     bool
	targetRange    float64
	lastRange      float64
	haveRange      bool
	pilotInControl bool

	// Backend layout reported to discovery.
	backends     []Backend
	injectedSlot int
}

// NewSimVehicle creates a simulated vehicle at the given starting position.
// The injected-range backend sits behind a non-matching backend so discovery
// has to search by type code.
func NewSimVehicle(start Position) *SimVehicle {
	return &SimVehicle{
		pos:      start,
		posValid: true,
		backends: []Backend{
			{Slot: 0, Type: 1}, // analog backend, does not accept injection
			{Slot: 1, Type: BackendTypeInjected},
		},
		injectedSlot: 1,
	}
}

// Step advances the kinematic model by dt seconds.
func (v *SimVehicle) Step(dt float64) {
	if !v.armed {
		return
	}

	vertical := v.cmdVertical
	if v.mode == ModeRangeHold {
		if v.cmdVertical != 0 {
			// An explicit vertical command overrides tracking; the target
			// is re-latched from the next reading once it is released.
			v.pilotInControl = true
		} else {
			if v.pilotInControl {
				v.pilotInControl = false
				v.haveTarget = false
			}
			if v.haveTarget && v.haveRange {
				// Range above target means too far off the floor: descend.
				climb := simTrackingGain * (v.targetRange - v.lastRange)
				vertical += math.Max(-simMaxAutoClimb, math.Min(simMaxAutoClimb, climb))
			}
		}
	}

	v.pos.X += v.cmdForward * dt
	v.pos.Z += vertical * dt
	if v.pos.Z > 0 {
		v.pos.Z = 0 // surfaced
	}
}

func (v *SimVehicle) SetMode(m Mode) bool {
	if m == v.mode {
		return true
	}
	v.mode = m
	// Mode changes restart tracking: the next ingested reading becomes the
	// new target.
	v.haveTarget = false
	v.haveRange = false
	return true
}

func (v *SimVehicle) Mode() Mode { return v.mode }

func (v *SimVehicle) Arm() bool {
	v.armed = true
	return true
}

func (v *SimVehicle) Disarm() bool {
	v.armed = false
	v.cmdVertical = 0
	v.cmdForward = 0
	return true
}

func (v *SimVehicle) Armed() bool { return v.armed }

func (v *SimVehicle) Position() (Position, bool) {
	return v.pos, v.posValid
}

// SetPositionValid simulates a position-estimate data gap.
func (v *SimVehicle) SetPositionValid(ok bool) { v.posValid = ok }

func (v *SimVehicle) SetVerticalVelocity(mps float64) bool {
	if !v.armed {
		return false
	}
	v.cmdVertical = mps
	return true
}

func (v *SimVehicle) SetForwardVelocity(mps float64) bool {
	if !v.armed {
		return false
	}
	v.cmdForward = mps
	return true
}

func (v *SimVehicle) StopMotion() bool {
	v.cmdVertical = 0
	v.cmdForward = 0
	return true
}

// Ingest accepts one injected range sample. Non-finite or non-positive ranges
// are rejected.
func (v *SimVehicle) Ingest(rangeMeters float64) bool {
	if math.IsNaN(rangeMeters) || math.IsInf(rangeMeters, 0) || rangeMeters <= 0 {
		return false
	}
	v.lastRange = rangeMeters
	v.haveRange = true
	if v.mode == ModeRangeHold && !v.haveTarget {
		v.targetRange = rangeMeters
		v.haveTarget = true
	}
	return true
}

// TargetRange reports the latched tracking target, if any.
func (v *SimVehicle) TargetRange() (float64, bool) {
	return v.targetRange, v.haveTarget
}

func (v *SimVehicle) Backends() []Backend { return v.backends }

func (v *SimVehicle) Ingestor(slot int) (RangeIngestor, bool) {
	if slot == v.injectedSlot {
		return v, true
	}
	return nil, false
}
