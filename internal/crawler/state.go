package crawler

// workerState is one step of the worker state machine.
type workerState int

const (
	// stateIdle pulls the next URL from the frontier.
	stateIdle workerState = iota

	// stateFetching navigates the renderer to the current URL.
	stateFetching

	// stateExtracting interacts with the page and runs discovery.
	stateExtracting

	// stateSettling records the visit and paces the next navigation.
	stateSettling

	// stateDraining re-checks an empty queue before giving up.
	stateDraining

	// stateDone is terminal for the worker.
	stateDone
)

// String returns the state name for logging.
func (s workerState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateFetching:
		return "fetching"
	case stateExtracting:
		return "extracting"
	case stateSettling:
		return "settling"
	case stateDraining:
		return "draining"
	case stateDone:
		return "done"
	default:
		return "unknown"
	}
}
