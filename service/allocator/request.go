package allocator

import (
	"github.com/viant/kaiten/model"
	"github.com/viant/kaiten/service/admission"
)

// Kind identifies a request sent by a group actor.
type Kind int

const (
	// Assign asks for a table; the answer arrives on the entry handoff.
	Assign Kind = iota
	// Finished reports a group leaving its table.
	Finished
	// BarrierCheck asks the allocator to drain once the arrival barrier may have opened.
	BarrierCheck
)

func (k Kind) String() string {
	switch k {
	case Assign:
		return "assign"
	case Finished:
		return "finished"
	default:
		return "barrierCheck"
	}
}

// Request is a message on the allocator queue.
type Request struct {
	Kind  Kind
	Group *model.Group
	Entry *admission.Entry
	// Paid is false when the group leaves without settling its bill.
	Paid bool
}
