package search

import "time"

// State is a step of the search state machine.
type State string

const (
	StateIdle        State = "idle"
	StateExtracting  State = "extracting"
	StateNormalizing State = "normalizing"
	StateQuerying    State = "querying"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// Terminal reports whether no further transition can follow s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Transition describes one state change of a search action.
type Transition struct {
	RequestID string
	Session   string
	From      State
	To        State
	Err       error
	At        time.Time
}

// Observer receives every transition synchronously, in order.
type Observer func(Transition)
