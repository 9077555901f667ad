package event

import (
	"github.com/viant/kaiten/service/messaging/memory"
)

// Option customises the event service.
type Option func(s *Service)

// WithNewMemoryQueueConfig sets the per-type memory queue configuration
func WithNewMemoryQueueConfig(newConfig func(name string) memory.Config) Option {
	return func(s *Service) {
		s.newQueueConfig = newConfig
	}
}

// WithRunID stamps every event context created by the service.
func WithRunID(runID string) Option {
	return func(s *Service) {
		s.runID = runID
	}
}
