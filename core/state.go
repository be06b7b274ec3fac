package orchestration

type State int

const (
	StateIdle State = iota
	StateConnecting
	StateListening
	StateClosing
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateListening:
		return "listening"
	case StateClosing:
		return "closing"
	case StateError:
		return "error"
	}
	return "unknown"
}

// IsActive reports whether a session exists in this state.
func (s State) IsActive() bool {
	return s == StateConnecting || s == StateListening
}

func parseState(name string) State {
	for _, state := range []State{StateIdle, StateConnecting, StateListening, StateClosing, StateError} {
		if state.String() == name {
			return state
		}
	}
	return StateIdle
}
