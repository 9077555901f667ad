package group

import "github.com/viant/kaiten/model"

// State is a visit lifecycle state.
type State int32

const (
	Created State = iota
	AwaitingSeat
	Seated
	Rejected
	Finished
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case AwaitingSeat:
		return "awaitingSeat"
	case Seated:
		return "seated"
	case Rejected:
		return "rejected"
	case Finished:
		return "finished"
	}
	return "unknown"
}

// Terminal reports whether the visit is over.
func (s State) Terminal() bool { return s == Rejected || s == Finished }

// Transition is a lifecycle change event payload.
type Transition struct {
	Group model.GroupID `json:"group"`
	State State         `json:"state"`
}
