package model

type Status string

const (
	StatusPaused  Status = "paused"
	StatusPlaying Status = "playing"
	StatusStopped Status = "stopped"

	// StatusNext is the legacy literal stored by non-strict deployments.
	StatusNext Status = "next"
)

// Action is a requested lifecycle change; it is not necessarily a state.
type Action string

const (
	ActionPause Action = "paused"
	ActionPlay  Action = "playing"
	ActionStop  Action = "stopped"
	ActionNext  Action = "next"
)

func ParseAction(raw string) (Action, bool) {
	switch a := Action(raw); a {
	case ActionPause, ActionPlay, ActionStop, ActionNext:
		return a, true
	}
	return "", false
}

// Target is the state an action leads to. Next keeps the current state.
func (a Action) Target(current Status) Status {
	if a == ActionNext {
		return current
	}
	return Status(a)
}

var transitions = map[Status]map[Status]bool{
	StatusPaused: {
		StatusPlaying: true,
		StatusStopped: true,
	},
	StatusPlaying: {
		StatusPaused:  true,
		StatusStopped: true,
	},
	StatusStopped: {},
}

// CanTransition reports whether from -> to is part of the lifecycle.
// Re-entering the current state is allowed except out of unknown states.
func CanTransition(from, to Status) bool {
	allowed, known := transitions[from]
	if !known {
		return false
	}
	if from == to {
		return true
	}
	return allowed[to]
}

func (s Status) Terminal() bool {
	return s == StatusStopped
}
