package harness

import "time"

// Runner is the scheduler glue between the host's timer and the harness
// core. Each Step runs one full cooperative tick in a fixed order: position
// refresh, bridge, state-duration update, state advance. Nothing inside a
// tick blocks or yields; waiting is expressed as repeated ticks.
//
// The host owns the timer. Cancellation is external: the host simply stops
// calling Step.
type Runner struct {
	ctx     *Context
	bridge  *Bridge
	machine *Machine

	summarized bool
}

// NewRunner wires the bridge and orchestrator for one run context.
func NewRunner(ctx *Context) *Runner {
	return &Runner{
		ctx:     ctx,
		bridge:  NewBridge(ctx),
		machine: NewMachine(TestSequence(ctx.Cfg)),
	}
}

// Context exposes the run context, mainly for telemetry snapshots.
func (r *Runner) Context() *Context { return r.ctx }

// State returns the orchestrator's active state.
func (r *Runner) State() StateID { return r.machine.Current() }

// Step executes one tick and reports whether the run has reached a terminal
// state.
func (r *Runner) Step() bool {
	ctx := r.ctx

	pos, ok := ctx.Vehicle.Position()
	ctx.Pos, ctx.PosValid = pos, ok

	r.bridge.Tick()

	ctx.Elapsed += ctx.TickInterval
	ctx.StateElapsed += ctx.TickInterval

	r.machine.Tick(ctx)

	if r.machine.Terminal() && !r.summarized {
		r.summarized = true
		ctx.Log.Info().
			Str("run_id", ctx.RunID.String()).
			Bool("passed", r.machine.Succeeded()).
			Float64("elapsed", ctx.Elapsed).
			Float64("max_deviation", ctx.MaxDeviation).
			Msg("run finished")
	}
	return r.machine.Terminal()
}

// Passed reports whether the run ended in the success terminal.
func (r *Runner) Passed() bool { return r.machine.Succeeded() }

// NextDelay returns the interval the host should wait before the next Step.
func (r *Runner) NextDelay() time.Duration {
	return time.Duration(r.ctx.TickInterval * float64(time.Second))
}
