// Package event carries typed simulation events (group lifecycle
// transitions) from the actors to asynchronous listeners such as metrics and
// the journal, so observers never slow an actor down.
package event

import (
	"context"
	"reflect"
	"sync"

	"github.com/viant/kaiten/service/messaging"
	"github.com/viant/kaiten/service/messaging/memory"
)

// Service owns one queue, publisher and listener per event payload type.
type Service struct {
	typedPublishers map[reflect.Type]any
	typedListener   map[reflect.Type]stopper
	mux             sync.RWMutex
	newQueueConfig  func(name string) memory.Config
	runID           string
}

type stopper interface{ Stop() }

// New creates an event service backed by memory queues.
func New(opts ...Option) *Service {
	ret := &Service{
		typedPublishers: make(map[reflect.Type]any),
		typedListener:   make(map[reflect.Type]stopper),
		newQueueConfig:  func(string) memory.Config { return memory.DefaultConfig() },
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// NewContext creates an event context stamped with the run id.
func (s *Service) NewContext(eventType, source string) *Context {
	return &Context{RunID: s.runID, EventType: eventType, Source: source}
}

// QueueOf creates a queue for the payload type.
func QueueOf[T any](s *Service, name string) messaging.Queue[T] {
	return memory.NewQueue[T](s.newQueueConfig(name))
}

func keyOf[T any]() reflect.Type {
	var t T
	rType := reflect.TypeOf(t)
	if rType.Kind() == reflect.Ptr {
		rType = rType.Elem()
	}
	return rType
}

// PublisherOf returns the publisher for the payload type.
func PublisherOf[T any](s *Service) *Publisher[T] {
	key := keyOf[T]()
	s.mux.Lock()
	defer s.mux.Unlock()
	if ret, ok := s.typedPublishers[key]; ok {
		return ret.(*Publisher[T])
	}
	publisher := NewPublisher[T](QueueOf[Event[T]](s, key.String()))
	s.typedPublishers[key] = publisher
	return publisher
}

// SetListenerOf starts a listener for the payload type, replacing the previous one.
func SetListenerOf[T any](ctx context.Context, s *Service, handler func(*Event[T])) {
	key := keyOf[T]()
	publisher := PublisherOf[T](s)
	s.mux.Lock()
	previous := s.typedListener[key]
	listener := NewListener[T](publisher, handler)
	s.typedListener[key] = listener
	s.mux.Unlock()
	if previous != nil {
		previous.Stop()
	}
	listener.Start(ctx)
}

// Shutdown stops every listener after it handled the queued events.
func (s *Service) Shutdown() {
	s.mux.Lock()
	listeners := s.typedListener
	s.typedListener = make(map[reflect.Type]stopper)
	s.mux.Unlock()
	for _, listener := range listeners {
		listener.Stop()
	}
}
