package model

// BootstrapState represents the lifecycle state of a bootstrap run.
// Transitions are monotonic: the state machine never moves backward.
type BootstrapState string

const (
	StateNotStarted        BootstrapState = "NOT_STARTED"
	StateCriticalRunning   BootstrapState = "CRITICAL_RUNNING"
	StateInteractive       BootstrapState = "INTERACTIVE"
	StateBackgroundRunning BootstrapState = "BACKGROUND_RUNNING"
	StateComplete          BootstrapState = "COMPLETE"
)

// String returns the string representation of the state.
func (s BootstrapState) String() string {
	return string(s)
}

// IsTerminal returns true if the bootstrap has finished all tiers.
func (s BootstrapState) IsTerminal() bool {
	return s == StateComplete
}

// ValidBootstrapTransitions defines the allowed state transitions.
var ValidBootstrapTransitions = map[BootstrapState][]BootstrapState{
	StateNotStarted:        {StateCriticalRunning},
	StateCriticalRunning:   {StateInteractive},
	StateInteractive:       {StateBackgroundRunning},
	StateBackgroundRunning: {StateComplete},
}

// CanTransitionTo returns true if moving from the current state to next is valid.
func (s BootstrapState) CanTransitionTo(next BootstrapState) bool {
	for _, allowed := range ValidBootstrapTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
