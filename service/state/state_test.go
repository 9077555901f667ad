package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/kaiten/model"
)

func TestState_TrySeat(t *testing.T) {
	testCases := []struct {
		description string
		counts      [4]int
		seated      []model.Slot
		vip         bool
		size        int
		expectTable int
		expectOK    bool
	}{
		{description: "vip skips single seat", counts: [4]int{1, 1, 0, 0}, vip: true, size: 1, expectTable: 1, expectOK: true},
		{description: "vip with only single seats queues", counts: [4]int{2, 0, 0, 0}, vip: true, size: 1, expectTable: -1},
		{description: "normal takes first table", counts: [4]int{1, 1, 0, 0}, size: 1, expectTable: 0, expectOK: true},
		{
			description: "same size shares",
			counts:      [4]int{0, 0, 0, 1},
			seated:      []model.Slot{{Occupant: 1, Size: 2}},
			size:        2,
			expectTable: 0,
			expectOK:    true,
		},
		{
			description: "different size queues",
			counts:      [4]int{0, 0, 0, 1},
			seated:      []model.Slot{{Occupant: 1, Size: 2}},
			size:        1,
			expectTable: -1,
		},
		{
			description: "full vip pass",
			counts:      [4]int{1, 1, 0, 0},
			seated:      []model.Slot{{Occupant: 1, Size: 2}},
			vip:         true,
			size:        1,
			expectTable: -1,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			s, err := New(model.NewTables(tc.counts), nil, nil, nil, nil)
			require.NoError(t, err)
			for _, slot := range tc.seated {
				_, ok := s.TrySeat(slot.VIP, slot.Size, slot.Occupant)
				require.True(t, ok)
			}
			table, ok := s.TrySeat(tc.vip, tc.size, 99)
			assert.Equal(t, tc.expectOK, ok)
			assert.Equal(t, tc.expectTable, table)
			assert.NoError(t, s.Check())
		})
	}
}

func TestState_Vacate(t *testing.T) {
	var observed [][2]int
	s, err := New(model.NewTables([4]int{0, 0, 0, 1}), nil, nil, nil, nil, WithGuestObserver(func(guests, vips int) {
		observed = append(observed, [2]int{guests, vips})
	}))
	require.NoError(t, err)

	_, ok := s.TrySeat(true, 2, 1)
	require.True(t, ok)
	_, ok = s.TrySeat(false, 2, 2)
	require.True(t, ok)
	// already seated
	_, ok = s.TrySeat(false, 2, 2)
	assert.False(t, ok)

	guests, vips := s.Guests()
	assert.Equal(t, 4, guests)
	assert.Equal(t, 2, vips)
	assert.Equal(t, 2, s.SeatedGroups())

	slot, table, ok := s.Vacate(1)
	require.True(t, ok)
	assert.Equal(t, 0, table)
	assert.True(t, slot.VIP)
	_, _, ok = s.Vacate(1)
	assert.False(t, ok)

	index, ok := s.TableOf(2)
	assert.True(t, ok)
	assert.Equal(t, 0, index)
	assert.Equal(t, 2, s.Tables()[0].Occupied)
	assert.Equal(t, [][2]int{{2, 2}, {4, 2}, {2, 0}}, observed)
	assert.NoError(t, s.Check())
}

func TestState_Concurrent(t *testing.T) {
	s, err := New(model.NewTables([4]int{2, 2, 2, 2}), nil, nil, nil, nil)
	require.NoError(t, err)
	var wg sync.WaitGroup
	for i := 1; i <= 64; i++ {
		wg.Add(1)
		go func(id model.GroupID) {
			defer wg.Done()
			size := int(id%4) + 1
			if _, ok := s.TrySeat(id%5 == 0, size, id); ok {
				assert.NoError(t, s.Check())
				s.Vacate(id)
			}
		}(model.GroupID(i))
	}
	wg.Wait()
	guests, _ := s.Guests()
	assert.Equal(t, 0, guests)
	assert.NoError(t, s.Check())
}

func TestNew(t *testing.T) {
	_, err := New(nil, nil, nil, nil, nil)
	assert.Error(t, err)
}

func TestState_Check(t *testing.T) {
	testCases := []struct {
		description string
		corrupt     func(s *State)
		expectErr   string
	}{
		{description: "consistent", corrupt: func(*State) {}},
		{
			description: "group missing from its table",
			corrupt:     func(s *State) { s.seated[9] = 0 },
			expectErr:   "group 9 recorded at table 0",
		},
		{
			description: "guest counter drift",
			corrupt:     func(s *State) { s.guests++ },
			expectErr:   "guest counter 3, tables hold 2",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			s, err := New(model.NewTables([4]int{0, 1, 0, 0}), nil, nil, nil, nil)
			require.NoError(t, err)
			_, ok := s.TrySeat(false, 2, 1)
			require.True(t, ok)
			tc.corrupt(s)
			err = s.Check()
			if tc.expectErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.expectErr)
		})
	}
}
