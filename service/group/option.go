package group

import (
	"github.com/go-logr/logr"
	"github.com/viant/kaiten/model"
	"github.com/viant/kaiten/service/allocator"
	"github.com/viant/kaiten/service/messaging"
)

// Option customises the service.
type Option func(s *Service)

// WithRequests sets the allocator request queue.
func WithRequests(queue messaging.Queue[allocator.Request]) Option {
	return func(s *Service) {
		s.requests = queue
	}
}

// WithOrders sets the premium order queue read by the kitchen.
func WithOrders(queue messaging.Queue[model.Order]) Option {
	return func(s *Service) {
		s.orders = queue
	}
}

// WithSeating sets the component vacating tables when a visit is abandoned.
func WithSeating(seating Seating) Option {
	return func(s *Service) {
		s.seating = seating
	}
}

// WithListener is notified of every state transition.
func WithListener(fn func(group model.GroupID, state State)) Option {
	return func(s *Service) {
		s.listener = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger logr.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithConfig sets the configuration.
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}
