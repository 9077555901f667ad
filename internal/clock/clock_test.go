package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPassed(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	NowFunc = func() time.Time { return now }
	defer func() { NowFunc = time.Now }()

	testCases := []struct {
		name     string
		deadline time.Time
		expect   bool
	}{
		{name: "zero deadline", deadline: time.Time{}, expect: false},
		{name: "future", deadline: now.Add(time.Second), expect: false},
		{name: "exact", deadline: now, expect: true},
		{name: "past", deadline: now.Add(-time.Second), expect: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, Passed(tc.deadline))
		})
	}
	assert.Equal(t, 2*time.Second, Since(now.Add(-2*time.Second)))
}
