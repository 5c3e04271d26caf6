package carousel

// State is the carousel's gesture and animation state.
type State int

const (
	// StateLoading lasts until item images load and geometry is computed.
	StateLoading State = iota
	// StateResting accepts taps, drags, button and dot input, and
	// autoscroll ticks.
	StateResting
	// StateTransitioning covers a slide, jump or snap motion and the
	// one-frame rebase that may follow it.
	StateTransitioning
	// StateDragging tracks a horizontal drag that started while resting.
	StateDragging
	// StateInterrupted tracks a drag that started mid-transition.
	StateInterrupted
	// StateZooming covers the zoom in and zoom out motions.
	StateZooming
	// StateZoomed accepts pan and pinch gestures on the zoomed image.
	StateZoomed
	// StateDestroyed is terminal.
	StateDestroyed
)

var stateNames = [...]string{
	StateLoading:       "loading",
	StateResting:       "resting",
	StateTransitioning: "transitioning",
	StateDragging:      "dragging",
	StateInterrupted:   "interrupted",
	StateZooming:       "zooming",
	StateZoomed:        "zoomed",
	StateDestroyed:     "destroyed",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// transitions lists the legal moves out of each state. Every state may
// move to StateDestroyed.
var transitions = map[State][]State{
	StateLoading:       {StateResting},
	StateResting:       {StateTransitioning, StateDragging, StateZooming},
	StateTransitioning: {StateResting, StateInterrupted},
	StateDragging:      {StateResting, StateTransitioning},
	StateInterrupted:   {StateResting, StateTransitioning},
	StateZooming:       {StateZoomed, StateResting},
	StateZoomed:        {StateZooming},
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to State) bool {
	if from == StateDestroyed {
		return false
	}
	if to == StateDestroyed || from == to {
		return true
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
