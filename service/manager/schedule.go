package manager

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Action is a control change applied by the manager.
type Action string

const (
	ActionSlow      Action = "slow"
	ActionNormal    Action = "normal"
	ActionFast      Action = "fast"
	ActionTerminate Action = "terminate"
	ActionEvacuate  Action = "evacuate"
)

// Valid reports whether the action is known.
func (a Action) Valid() bool {
	switch a {
	case ActionSlow, ActionNormal, ActionFast, ActionTerminate, ActionEvacuate:
		return true
	}
	return false
}

// Step applies Action once After has elapsed since the manager started.
type Step struct {
	After  time.Duration `json:"after" yaml:"after"`
	Action Action        `json:"action" yaml:"action"`
}

// Schedule is an ordered list of steps.
type Schedule []Step

// Validate checks the schedule.
func (s Schedule) Validate() error {
	for i, step := range s {
		if step.After < 0 {
			return fmt.Errorf("step %d: negative offset %v", i, step.After)
		}
		if !step.Action.Valid() {
			return fmt.Errorf("step %d: unsupported action %q", i, step.Action)
		}
	}
	return nil
}

// Sorted returns a copy ordered by offset; equal offsets keep their order.
func (s Schedule) Sorted() Schedule {
	ret := make(Schedule, len(s))
	copy(ret, s)
	sort.SliceStable(ret, func(i, j int) bool { return ret[i].After < ret[j].After })
	return ret
}

// ParseSchedule decodes a YAML (or JSON) list of steps.
func ParseSchedule(data []byte) (Schedule, error) {
	var ret Schedule
	if err := yaml.Unmarshal(data, &ret); err != nil {
		return nil, fmt.Errorf("failed to decode schedule: %w", err)
	}
	for i := range ret {
		ret[i].Action = Action(strings.ToLower(string(ret[i].Action)))
	}
	return ret, ret.Validate()
}
