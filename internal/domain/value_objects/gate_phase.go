package valueobjects

import apperrors "startgate/internal/shared_kernel/errors"

// GatePhase is the startup gate's position in
// START -> WAITING_FOR_DB -> MIGRATING -> EXEC_MAIN, with FATAL_EXIT reachable
// from the two working phases.
type GatePhase string

const (
	GatePhaseStart        GatePhase = "start"
	GatePhaseWaitingForDB GatePhase = "waiting_for_db"
	GatePhaseMigrating    GatePhase = "migrating"
	GatePhaseExecMain     GatePhase = "exec_main"
	GatePhaseFatalExit    GatePhase = "fatal_exit"
)

var gatePhaseTransitions = map[GatePhase][]GatePhase{
	GatePhaseStart:        {GatePhaseWaitingForDB},
	GatePhaseWaitingForDB: {GatePhaseMigrating, GatePhaseFatalExit},
	GatePhaseMigrating:    {GatePhaseExecMain, GatePhaseFatalExit},
	GatePhaseExecMain:     {GatePhaseFatalExit},
}

func (p GatePhase) CanTransitionTo(next GatePhase) bool {
	for _, allowed := range gatePhaseTransitions[p] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition returns next when the move is legal. EXEC_MAIN -> FATAL_EXIT only
// happens when the exec syscall itself fails.
func (p GatePhase) Transition(next GatePhase) (GatePhase, *apperrors.AppError) {
	if !p.CanTransitionTo(next) {
		return p, apperrors.NewInternal(
			"GATE_PHASE_TRANSITION_INVALID",
			"gate phase transition is invalid",
			map[string]any{"from": p.String(), "to": next.String()},
		)
	}
	return next, nil
}

func (p GatePhase) IsTerminal() bool {
	return len(gatePhaseTransitions[p]) == 0
}

func (p GatePhase) String() string {
	return string(p)
}
