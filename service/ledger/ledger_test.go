package ledger

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/kaiten/model"
)

func TestLedger_Update(t *testing.T) {
	var changes int
	var mu sync.Mutex
	l := New(func(d Delta, s Snapshot) {
		mu.Lock()
		changes++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Produced(model.NewDish(model.Red, 0))
			l.Sold(model.NewDish(model.Red, 0))
		}()
	}
	wg.Wait()
	l.Wasted(model.NewDish(model.White, 3))
	l.Paid(400)

	snapshot := l.Snapshot()
	assert.Equal(t, 10, snapshot.Lines[model.Red].Produced)
	assert.Equal(t, 400, snapshot.Lines[model.Red].ProducedValue)
	assert.Equal(t, 10, snapshot.Lines[model.Red].Sold)
	assert.Equal(t, 1, snapshot.Lines[model.White].Wasted)
	assert.Equal(t, 10, snapshot.Lines[model.White].WastedValue)
	assert.Equal(t, 400, snapshot.Revenue)
	assert.Equal(t, 1, snapshot.Groups)
	assert.Equal(t, 22, changes)

	totals := snapshot.Totals()
	assert.Equal(t, 10, totals.Produced)
	assert.Equal(t, 1, totals.Wasted)
}

func TestLedger_IgnoresInvalidColor(t *testing.T) {
	l := New(nil)
	l.Update(Delta{Color: model.Color(42), Produced: 1})
	assert.Equal(t, 0, l.Snapshot().Totals().Produced)
}
