package worker

// State is a position in the worker work cycle
type State string

const (
	// StateIdle waits for an assignment whose target is ready
	StateIdle State = "idle"

	// StateWalkingTo travels from home to the target
	StateWalkingTo State = "walking_to"

	// StateBlocked waits at the target until it becomes ready again
	StateBlocked State = "blocked"

	// StateHarvesting works the target until the cycle threshold is reached
	StateHarvesting State = "harvesting"

	// StateWalkingBack carries the payload home at carry speed
	StateWalkingBack State = "walking_back"

	// StateDepositing waits out the jitter offset before crediting the payload
	StateDepositing State = "depositing"
)

// AllStates returns every state in cycle order
func AllStates() []State {
	return []State{
		StateIdle,
		StateWalkingTo,
		StateBlocked,
		StateHarvesting,
		StateWalkingBack,
		StateDepositing,
	}
}

func (s State) String() string {
	return string(s)
}

// IsCarrying reports whether a worker in this state holds a payload
func (s State) IsCarrying() bool {
	return s == StateWalkingBack || s == StateDepositing
}
