package event

import "time"

// Context identifies where an event comes from.
type Context struct {
	RunID     string `json:"runId"`
	EventType string `json:"eventType"`
	Source    string `json:"source"`
}

// Event wraps a payload with its origin and creation time.
type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Data      T                      `json:"data"`
}

// NewEvent creates an event.
func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: time.Now(),
		Metadata:  make(map[string]interface{}),
		Data:      data,
	}
}
