package harness

import (
	"math"

	"github.com/oceanbotics/rangehold-harness/internal/vehicle"
)

const (
	initSensorTimeout = 10.0 // s, absolute bound on sensor/position discovery
	depthTolerance    = 0.25 // m, descend-to-depth success band
	timeoutMargin     = 1.5  // slack factor on distance/speed phase timeouts
)

// TestSequence builds the full linear state list for one depth-hold run.
func TestSequence(cfg TestConfig) []State {
	return []State{
		initSensorState(),
		armState(),
		descendState(StateDescendA, cfg.TargetDepthA),
		pauseState(StatePauseAfterDescendA, cfg.PauseDuration),
		engageHoldState(),
		pauseState(StatePauseAfterEngage, cfg.PauseDuration),
		followBottomState(StateFollowBottom1, cfg.TraverseDist1),
		descendState(StateDescendB, cfg.TargetDepthB),
		pauseState(StatePauseAfterDescendB, cfg.PauseDuration),
		followBottomState(StateFollowBottom2, cfg.TraverseDist2),
		pauseState(StatePauseAfterFollow, cfg.PauseDuration),
		returnToManualState(),
		disarmState(),
	}
}

// initSensorState locates the range backend that accepts injected samples and
// waits for a first position estimate. Both are retried every tick up to an
// absolute timeout.
func initSensorState() State {
	return State{
		ID: StateInitSensor,
		Start: func(ctx *Context) AdvanceFunc {
			return func(ctx *Context) Outcome {
				if ctx.Ingestor == nil {
					for _, b := range ctx.Finder.Backends() {
						if b.Type != vehicle.BackendTypeInjected {
							continue
						}
						if ing, ok := ctx.Finder.Ingestor(b.Slot); ok {
							ctx.Ingestor = ing
							ctx.Log.Info().Int("slot", b.Slot).Msg("range backend located")
							break
						}
					}
				}
				if ctx.Ingestor != nil && ctx.PosValid {
					ctx.Origin = ctx.Pos
					ctx.HaveOrigin = true
					return OutcomeNext
				}
				if ctx.StateElapsed >= initSensorTimeout {
					ctx.Messenger.Send("state.init_sensor", "no injectable range backend or position")
					return OutcomeFail
				}
				return OutcomeRepeat
			}
		},
	}
}

// armState issues the arm command once at entry and checks the armed flag on
// the next tick.
func armState() State {
	return State{
		ID: StateArm,
		Start: func(ctx *Context) AdvanceFunc {
			ctx.Vehicle.Arm()
			return func(ctx *Context) Outcome {
				if !ctx.Vehicle.Armed() {
					ctx.Messenger.Send("state.arm", "vehicle did not arm")
					return OutcomeFail
				}
				return OutcomeNext
			}
		},
	}
}

// descendState commands vertical velocity toward the target depth (meters
// below the surface) and succeeds within a fixed tolerance. The timeout is
// computed from the distance to cover at the assumed vertical speed.
func descendState(id StateID, targetDepth float64) State {
	return State{
		ID: id,
		Start: func(ctx *Context) AdvanceFunc {
			targetZ := -targetDepth
			distance := math.Abs(targetZ - ctx.Pos.Z)
			timeout := timeoutMargin * distance / ctx.Cfg.VerticalSpeed

			speed := ctx.Cfg.VerticalSpeed
			if targetZ < ctx.Pos.Z {
				speed = -speed
			}
			ctx.Vehicle.SetVerticalVelocity(speed)

			return func(ctx *Context) Outcome {
				if ctx.PosValid && math.Abs(ctx.Pos.Z-targetZ) <= depthTolerance {
					return OutcomeNext
				}
				if ctx.StateElapsed > timeout {
					ctx.Messenger.Sendf("state.descend", "descend to %.1f m timed out", targetDepth)
					return OutcomeFail
				}
				return OutcomeRepeat
			}
		},
	}
}

// pauseState waits out a fixed duration in seconds.
func pauseState(id StateID, duration float64) State {
	return State{
		ID: id,
		Start: func(ctx *Context) AdvanceFunc {
			return func(ctx *Context) Outcome {
				if ctx.StateElapsed >= duration {
					return OutcomeNext
				}
				return OutcomeRepeat
			}
		},
	}
}

// engageHoldState commands the vehicle into range-hold mode and verifies the
// reported mode on the next tick.
func engageHoldState() State {
	return State{
		ID: StateEngageHold,
		Start: func(ctx *Context) AdvanceFunc {
			ctx.Vehicle.SetMode(vehicle.ModeRangeHold)
			return func(ctx *Context) Outcome {
				if ctx.Vehicle.Mode() != vehicle.ModeRangeHold {
					ctx.Messenger.Send("state.engage_hold", "range-hold mode did not engage")
					return OutcomeFail
				}
				return OutcomeNext
			}
		},
	}
}

// followBottomState commands forward motion over the target distance while
// range-hold tracks the seafloor, and fails if the true range deviates from
// its value at entry by more than the configured tolerance.
func followBottomState(id StateID, distance float64) State {
	return State{
		ID: id,
		Start: func(ctx *Context) AdvanceFunc {
			start := ctx.Pos
			startRange := ctx.LastTrueRange
			timeout := timeoutMargin * distance / ctx.Cfg.ForwardSpeed
			maxDeviation := 0.0

			ctx.Vehicle.SetForwardVelocity(ctx.Cfg.ForwardSpeed)

			return func(ctx *Context) Outcome {
				if ctx.HaveRange {
					deviation := math.Abs(ctx.LastTrueRange - startRange)
					if deviation > maxDeviation {
						maxDeviation = deviation
						if deviation > ctx.MaxDeviation {
							ctx.MaxDeviation = deviation
						}
					}
					if deviation > ctx.Cfg.RangeTolerance {
						ctx.Messenger.Sendf("state.follow_bottom",
							"range deviation %.2f m exceeds tolerance %.2f m", deviation, ctx.Cfg.RangeTolerance)
						return OutcomeFail
					}
				}

				traveled := math.Hypot(ctx.Pos.X-start.X, ctx.Pos.Y-start.Y)
				if traveled >= distance {
					ctx.Log.Info().
						Float64("distance", traveled).
						Float64("max_deviation", maxDeviation).
						Msg("bottom-follow leg complete")
					return OutcomeNext
				}
				if ctx.StateElapsed > timeout {
					ctx.Messenger.Sendf("state.follow_bottom", "bottom-follow over %.1f m timed out", distance)
					return OutcomeFail
				}
				return OutcomeRepeat
			}
		},
	}
}

// returnToManualState hands control back to manual mode. Unconditional.
func returnToManualState() State {
	return State{
		ID: StateReturnToManual,
		Start: func(ctx *Context) AdvanceFunc {
			ctx.Vehicle.SetMode(vehicle.ModeManual)
			return func(ctx *Context) Outcome { return OutcomeNext }
		},
	}
}

// disarmState disarms the vehicle. Unconditional.
func disarmState() State {
	return State{
		ID: StateDisarm,
		Start: func(ctx *Context) AdvanceFunc {
			ctx.Vehicle.Disarm()
			return func(ctx *Context) Outcome { return OutcomeNext }
		},
	}
}
