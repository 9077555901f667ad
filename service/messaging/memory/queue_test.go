package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/kaiten/service/messaging"
)

type order struct {
	Group uint64
	Color int
}

func TestQueue_PublishConsume(t *testing.T) {
	queue := NewQueue[order](DefaultConfig())
	ctx := context.Background()

	err := queue.Publish(ctx, &order{Group: 7, Color: 4})
	require.NoError(t, err)
	assert.Equal(t, 1, queue.Size())

	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, queue.Size())
	assert.NotEmpty(t, message.ID())
	assert.Equal(t, order{Group: 7, Color: 4}, *message.T())

	assert.NoError(t, message.Ack())
	// double ack is rejected
	assert.Error(t, message.Ack())
}

func TestQueue_NonBlocking(t *testing.T) {
	queue := NewQueue[order](Config{QueueBuffer: 2})
	assert.Equal(t, 2, queue.Cap())

	_, ok := queue.TryConsume()
	assert.False(t, ok)

	assert.NoError(t, queue.TryPublish(&order{Group: 1}))
	assert.NoError(t, queue.TryPublish(&order{Group: 2}))
	assert.ErrorIs(t, queue.TryPublish(&order{Group: 3}), messaging.ErrFull)

	message, ok := queue.TryConsume()
	require.True(t, ok)
	assert.EqualValues(t, 1, message.T().Group)
}

func TestQueue_Concurrency(t *testing.T) {
	queue := NewQueue[order](DefaultConfig())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	producers, perProducer := 8, 25

	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func(group int) {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				assert.NoError(t, queue.Publish(ctx, &order{Group: uint64(group), Color: j}))
			}
		}(i)
	}
	consumed := 0
	for consumed < producers*perProducer {
		message, err := queue.Consume(ctx)
		require.NoError(t, err)
		require.NoError(t, message.Ack())
		consumed++
	}
	wg.Wait()
	assert.Equal(t, 0, queue.Size())
}

func TestQueue_ContextCancellation(t *testing.T) {
	queue := NewQueue[order](Config{QueueBuffer: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, queue.Publish(ctx, &order{}))

	timeoutCtx, cancelTimeout := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancelTimeout()
	_, err := queue.Consume(timeoutCtx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, queue.Publish(context.Background(), &order{Group: 3}))
	// buffer of one is full; publish waits until the deadline
	blockedCtx, cancelBlocked := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancelBlocked()
	assert.ErrorIs(t, queue.Publish(blockedCtx, &order{Group: 4}), context.DeadlineExceeded)
}
