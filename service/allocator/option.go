package allocator

import (
	"github.com/go-logr/logr"
	"github.com/viant/kaiten/model"
	"github.com/viant/kaiten/policy"
	"github.com/viant/kaiten/service/messaging"
)

// Option customises the allocator.
type Option func(s *Service)

// WithMessageQueue sets the request queue.
func WithMessageQueue(queue messaging.Queue[Request]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithPolicy sets the drain policy.
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithLogger sets the logger.
func WithLogger(logger logr.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithPresence lets the orphan sweep tell live groups from departed ones.
func WithPresence(present func(model.GroupID) bool) Option {
	return func(s *Service) {
		s.present = present
	}
}

// WithConfig sets the configuration.
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}
