package event

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/kaiten/service/messaging"
	"github.com/viant/kaiten/service/messaging/memory"
)

type arrival struct {
	Group int
}

func TestService_Listener(t *testing.T) {
	srv := New(WithRunID("run-1"))
	var mux sync.Mutex
	var received []int
	SetListenerOf[arrival](context.Background(), srv, func(e *Event[arrival]) {
		mux.Lock()
		received = append(received, e.Data.Group)
		mux.Unlock()
		assert.Equal(t, "run-1", e.Context.RunID)
	})
	publisher := PublisherOf[arrival](srv)
	assert.Same(t, publisher, PublisherOf[arrival](srv))
	for i := 1; i <= 3; i++ {
		require.NoError(t, publisher.Publish(context.Background(), NewEvent(srv.NewContext("arrival", "test"), arrival{Group: i})))
	}
	srv.Shutdown()
	mux.Lock()
	defer mux.Unlock()
	assert.Equal(t, []int{1, 2, 3}, received)
}

func TestPublisher_TryPublish(t *testing.T) {
	srv := New(WithNewMemoryQueueConfig(func(name string) memory.Config {
		cfg := memory.DefaultConfig()
		cfg.QueueBuffer = 1
		return cfg
	}))
	publisher := PublisherOf[arrival](srv)
	require.NoError(t, publisher.TryPublish(NewEvent(srv.NewContext("arrival", "test"), arrival{Group: 1})))
	assert.ErrorIs(t, publisher.TryPublish(NewEvent(srv.NewContext("arrival", "test"), arrival{Group: 2})), messaging.ErrFull)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	event, err := publisher.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, event.Data.Group)
	assert.Equal(t, 0, publisher.Drain(func(*Event[arrival]) {}))
}
