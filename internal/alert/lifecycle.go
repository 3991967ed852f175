package alert

import "fmt"

// Event drives an alert from one status to the next.
type Event string

const (
	EventContact    Event = "contact"
	EventLose       Event = "lose"
	EventReacquire  Event = "reacquire"
	EventNeutralize Event = "neutralize"
)

var transitions = map[Status]map[Event]Status{
	StatusActive: {
		EventContact:    StatusTracking,
		EventLose:       StatusLost,
		EventNeutralize: StatusNeutralized,
	},
	StatusTracking: {
		EventLose:       StatusLost,
		EventNeutralize: StatusNeutralized,
	},
	StatusLost: {
		EventReacquire:  StatusTracking,
		EventNeutralize: StatusNeutralized,
	},
}

// Transition applies ev to from. Neutralized alerts accept no events.
func Transition(from Status, ev Event) (Status, error) {
	if next, ok := transitions[from][ev]; ok {
		return next, nil
	}
	return from, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, ev, from)
}

// CanTransition reports whether some event moves from into to. Staying in
// the same status is always allowed.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
