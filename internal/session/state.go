package session

// State is a step of the turn loop.
type State int

const (
	StateAwaitingInput State = iota
	StateGenerating
	StateInterpreting
	StateGating
	StateExecuting
	StateRecording
)

func (s State) String() string {
	switch s {
	case StateAwaitingInput:
		return "awaiting_input"
	case StateGenerating:
		return "generating"
	case StateInterpreting:
		return "interpreting"
	case StateGating:
		return "gating"
	case StateExecuting:
		return "executing"
	case StateRecording:
		return "recording"
	default:
		return "unknown"
	}
}
