package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueue(t *testing.T) {
	queue := NewQueue[int](3)
	assert.True(t, queue.Push(1))
	assert.True(t, queue.Push(2))
	assert.True(t, queue.Push(3))
	assert.False(t, queue.Push(4))
	assert.Equal(t, 3, queue.Len())

	assert.Equal(t, 2, queue.RemoveAt(1))
	assert.Equal(t, []int{1, 3}, queue.Items())
	assert.Equal(t, 1, queue.Index(func(v int) bool { return v == 3 }))
	assert.Equal(t, -1, queue.Index(func(v int) bool { return v == 2 }))
	assert.Equal(t, []int{1, 3}, queue.Clear())
	assert.Equal(t, 0, queue.Len())
}
