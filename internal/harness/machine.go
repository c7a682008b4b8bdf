package harness

import "github.com/oceanbotics/rangehold-harness/internal/vehicle"

// Outcome is what a state's advance function reports for one tick.
type Outcome int

const (
	OutcomeRepeat Outcome = iota // stay in this state
	OutcomeNext                  // move to the next state
	OutcomeFail                  // abort the test
)

// StateID identifies a state in the test sequence. The sequence is strictly
// linear; the two terminal identifiers sit outside it and absorb all further
// ticks.
type StateID int

const (
	StateInitSensor StateID = iota
	StateArm
	StateDescendA
	StatePauseAfterDescendA
	StateEngageHold
	StatePauseAfterEngage
	StateFollowBottom1
	StateDescendB
	StatePauseAfterDescendB
	StateFollowBottom2
	StatePauseAfterFollow
	StateReturnToManual
	StateDisarm

	StateSucceeded // absorbing terminal
	StateFailed    // absorbing terminal
)

func (id StateID) String() string {
	switch id {
	case StateInitSensor:
		return "init_sensor"
	case StateArm:
		return "arm"
	case StateDescendA:
		return "descend_to_depth_a"
	case StatePauseAfterDescendA, StatePauseAfterEngage, StatePauseAfterDescendB, StatePauseAfterFollow:
		return "pause"
	case StateEngageHold:
		return "engage_hold_mode"
	case StateFollowBottom1:
		return "follow_bottom_1"
	case StateDescendB:
		return "descend_to_depth_b"
	case StateFollowBottom2:
		return "follow_bottom_2"
	case StateReturnToManual:
		return "return_to_manual"
	case StateDisarm:
		return "disarm"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// transition is one row of the machine's transition table.
type transition struct {
	onNext StateID
	onFail StateID
}

// transitions maps each running state to its successors. Every failure edge
// lands in the failure terminal; falling off the end of the chain is success.
var transitions = map[StateID]transition{
	StateInitSensor:         {StateArm, StateFailed},
	StateArm:                {StateDescendA, StateFailed},
	StateDescendA:           {StatePauseAfterDescendA, StateFailed},
	StatePauseAfterDescendA: {StateEngageHold, StateFailed},
	StateEngageHold:         {StatePauseAfterEngage, StateFailed},
	StatePauseAfterEngage:   {StateFollowBottom1, StateFailed},
	StateFollowBottom1:      {StateDescendB, StateFailed},
	StateDescendB:           {StatePauseAfterDescendB, StateFailed},
	StatePauseAfterDescendB: {StateFollowBottom2, StateFailed},
	StateFollowBottom2:      {StatePauseAfterFollow, StateFailed},
	StatePauseAfterFollow:   {StateReturnToManual, StateFailed},
	StateReturnToManual:     {StateDisarm, StateFailed},
	StateDisarm:             {StateSucceeded, StateFailed},
}

// AdvanceFunc is a per-tick advance function, a closure over the values its
// state captured during setup.
type AdvanceFunc func(ctx *Context) Outcome

// State is one named unit of the test sequence. Start performs one-time
// setup (it may issue a command) and returns the advance function for the
// state's lifetime.
type State struct {
	ID    StateID
	Start func(ctx *Context) AdvanceFunc
}

// Machine is the single-threaded, tick-driven test orchestrator. It runs its
// states strictly in order; any failure enters the failure terminal, which
// performs best-effort cleanup and absorbs every further tick.
type Machine struct {
	states  map[StateID]State
	current StateID
	advance AdvanceFunc
	pending bool // state setup has not run yet
}

// NewMachine builds the orchestrator from a state list. The first state in
// the list is the entry point.
func NewMachine(states []State) *Machine {
	m := &Machine{
		states:  make(map[StateID]State, len(states)),
		pending: true,
	}
	for i, s := range states {
		m.states[s.ID] = s
		if i == 0 {
			m.current = s.ID
		}
	}
	return m
}

// Current returns the active state identifier.
func (m *Machine) Current() StateID { return m.current }

// Terminal reports whether the machine has reached either terminal state.
func (m *Machine) Terminal() bool {
	return m.current == StateSucceeded || m.current == StateFailed
}

// Succeeded reports whether the run finished in the success terminal.
func (m *Machine) Succeeded() bool { return m.current == StateSucceeded }

// Tick advances the machine by one step. Terminal states absorb the tick.
func (m *Machine) Tick(ctx *Context) {
	if m.Terminal() {
		return
	}

	if m.pending {
		m.advance = m.states[m.current].Start(ctx)
		m.pending = false
	}

	switch m.advance(ctx) {
	case OutcomeNext:
		m.leave(ctx)
		next := transitions[m.current].onNext
		m.enter(ctx, next)
	case OutcomeFail:
		m.leave(ctx)
		m.enter(ctx, StateFailed)
	}
}

// leave runs the implicit cleanup owed by every state on its way out: any
// commanded motion stops.
func (m *Machine) leave(ctx *Context) {
	ctx.Vehicle.StopMotion()
}

func (m *Machine) enter(ctx *Context, next StateID) {
	prev := m.current
	m.current = next
	m.pending = true
	ctx.StateElapsed = 0

	ctx.Log.Info().
		Str("from", prev.String()).
		Str("to", next.String()).
		Float64("elapsed", ctx.Elapsed).
		Msg("state transition")

	switch next {
	case StateSucceeded:
		ctx.Messenger.Send("machine.success", "depth-hold test passed")
	case StateFailed:
		m.failCleanup(ctx, prev)
	}
}

// failCleanup is the failure terminal's entry work: stop motion, force a safe
// mode, disarm, report. All of it is best effort.
func (m *Machine) failCleanup(ctx *Context, failedIn StateID) {
	ctx.Vehicle.StopMotion()
	ctx.Vehicle.SetMode(vehicle.ModeManual)
	ctx.Vehicle.Disarm()
	ctx.Messenger.Sendf("machine.failure", "depth-hold test failed in %s", failedIn)
}
