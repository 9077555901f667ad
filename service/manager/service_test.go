package manager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/kaiten/control"
)

func TestParseSchedule(t *testing.T) {
	testCases := []struct {
		description string
		input       string
		expect      Schedule
		expectErr   bool
	}{
		{
			description: "yaml list",
			input:       "- after: 10ms\n  action: FAST\n- after: 1s\n  action: evacuate\n",
			expect:      Schedule{{After: 10 * time.Millisecond, Action: ActionFast}, {After: time.Second, Action: ActionEvacuate}},
		},
		{
			description: "unknown action",
			input:       "- after: 1s\n  action: dance\n",
			expectErr:   true,
		},
		{
			description: "malformed",
			input:       "after: [",
			expectErr:   true,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			actual, err := ParseSchedule([]byte(testCase.input))
			if testCase.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.expect, actual)
		})
	}
}

func TestService_Run(t *testing.T) {
	signals := control.New(control.Normal, 5*time.Millisecond)
	schedule := Schedule{
		{After: 20 * time.Millisecond, Action: ActionTerminate},
		{After: 0, Action: ActionSlow},
		{After: 10 * time.Millisecond, Action: ActionFast},
	}
	srv, err := New(signals, schedule)
	require.NoError(t, err)
	require.NoError(t, srv.Run(context.Background()))
	assert.Equal(t, 3, srv.Applied())
	assert.Equal(t, control.Fast, signals.Speed())
	assert.True(t, signals.Terminating())
	assert.False(t, signals.Evacuating())
}

func TestService_RunStopsOnEvacuation(t *testing.T) {
	signals := control.New(control.Normal, 5*time.Millisecond)
	srv, err := New(signals, Schedule{{After: 0, Action: ActionEvacuate}, {After: time.Hour, Action: ActionSlow}})
	require.NoError(t, err)
	done := make(chan error, 1)
	go func() { done <- srv.Run(context.Background()) }()
	select {
	case err = <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("manager did not stop after evacuation")
	}
	assert.Equal(t, 1, srv.Applied())
	assert.Equal(t, control.Normal, signals.Speed())
}

func TestNew(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)
	_, err = New(control.New(control.Normal, 0), Schedule{{After: -time.Second, Action: ActionFast}})
	assert.Error(t, err)
}
