package idgen

import (
	"strings"

	"github.com/google/uuid"
)

// NewFunc returns a new globally unique identifier. Tests may replace it.
var NewFunc = func() string { return uuid.New().String() }

func New() string { return NewFunc() }

// RunID returns an identifier for a simulation run.
func RunID() string {
	id := NewFunc()
	if i := strings.IndexByte(id, '-'); i > 0 {
		id = id[:i]
	}
	return "run-" + id
}
