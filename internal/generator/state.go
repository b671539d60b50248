package generator

// State is the lifecycle position of one generation request.
type State int

const (
	StateIdle State = iota
	StateAwaitingInput
	StateStreaming
	StateCompleted
	StateRejected
	StateBlocked
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:          "idle",
	StateAwaitingInput: "awaiting_input",
	StateStreaming:     "streaming",
	StateCompleted:     "completed",
	StateRejected:      "rejected",
	StateBlocked:       "blocked",
	StateFailed:        "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateRejected, StateBlocked, StateFailed:
		return true
	}
	return false
}
