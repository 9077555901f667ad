package control

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSpeed_Scale(t *testing.T) {
	testCases := []struct {
		speed    Speed
		expected time.Duration
	}{
		{speed: Fast, expected: 50 * time.Millisecond},
		{speed: Normal, expected: 100 * time.Millisecond},
		{speed: Slow, expected: 200 * time.Millisecond},
	}
	for _, tc := range testCases {
		t.Run(tc.speed.String(), func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.speed.Scale(100*time.Millisecond))
		})
	}
}

func TestParseSpeed(t *testing.T) {
	speed, err := ParseSpeed("FAST")
	assert.NoError(t, err)
	assert.Equal(t, Fast, speed)
	_, err = ParseSpeed("warp")
	assert.Error(t, err)
}

func TestSignals_Evacuate(t *testing.T) {
	signals := New(Normal, 10*time.Millisecond)
	assert.Nil(t, signals.Err())

	done := make(chan error, 1)
	go func() {
		done <- signals.Sleep(context.Background(), time.Hour)
	}()
	signals.Evacuate()
	signals.Evacuate()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrEvacuated)
	case <-time.After(time.Second):
		t.Fatal("sleep did not observe evacuation")
	}
	assert.True(t, signals.Terminating())
	assert.ErrorIs(t, signals.Err(), ErrEvacuated)
}

func TestSignals_WithEvacuation(t *testing.T) {
	signals := New(Normal, 0)
	ctx, cancel := signals.WithEvacuation(context.Background())
	defer cancel()
	signals.Evacuate()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled")
	}
}
