package workflow

// State represents a workflow position in the stage lifecycle.
type State string

const (
	StateBorrador         State = "BORRADOR"
	StateRadicada         State = "RADICADA"
	StateEnRevision       State = "EN_REVISION"
	StateConObservaciones State = "CON_OBSERVACIONES"
	StateCerrada          State = "CERRADA"
)

var validStates = map[State]bool{
	StateBorrador:         true,
	StateRadicada:         true,
	StateEnRevision:       true,
	StateConObservaciones: true,
	StateCerrada:          true,
}

// CERRADA is the only terminal state; CON_OBSERVACIONES still accepts a
// resubmission.
var terminalStates = map[State]bool{
	StateCerrada: true,
}

// IsTerminal returns true if no further transitions are allowed from the state.
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// IsValid returns true if the state is a valid workflow state.
func (s State) IsValid() bool {
	return validStates[s]
}

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}
