package report

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/kaiten/model"
	"github.com/viant/kaiten/service/ledger"
)

func TestCollect(t *testing.T) {
	l := ledger.New(nil)
	for i := 0; i < 3; i++ {
		l.Produced(model.NewDish(model.White, 0))
	}
	l.Produced(model.NewDish(model.Red, 7))
	l.Produced(model.NewDish(model.Red, 7))
	l.Sold(model.NewDish(model.White, 0))
	l.Sold(model.NewDish(model.Red, 7))
	l.Wasted(model.NewDish(model.Red, 7))
	l.Paid(50)

	actual := Collect(l.Snapshot(), [model.ColorCount]int{model.White: 2})
	expectTotals := Line{
		Produced: 5, ProducedValue: 110,
		Sold: 2, SoldValue: 50,
		Remaining: 2, RemainingValue: 20,
		Wasted: 1, WastedValue: 40,
	}
	if diff := cmp.Diff(expectTotals, actual.Totals); diff != "" {
		t.Errorf("totals mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, actual.Lines, model.ColorCount)
	assert.Equal(t, 50, actual.Revenue)
	assert.Equal(t, 1, actual.Visits.Paid)
	assert.True(t, actual.Balanced())
	assert.Empty(t, actual.Mismatches())
}

func TestReport_Write(t *testing.T) {
	testCases := []struct {
		description string
		remaining   [model.ColorCount]int
		expect      []string
		absent      []string
	}{
		{
			description: "balanced",
			remaining:   [model.ColorCount]int{model.Green: 1},
			expect:      []string{"CHEF REPORT", "green: 2 pcs - 40 PLN", "SERVICE REPORT", "(none)", "+ MATCH"},
			absent:      []string{"MISMATCH"},
		},
		{
			description: "unbalanced",
			remaining:   [model.ColorCount]int{},
			expect:      []string{"- MISMATCH: Produced (2) != Sold+Remaining+Wasted (1)", "green: produced 2 != sold 1 + remaining 0 + wasted 0"},
			absent:      []string{"+ MATCH"},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			l := ledger.New(nil)
			l.Produced(model.NewDish(model.Green, 0))
			l.Produced(model.NewDish(model.Green, 0))
			l.Sold(model.NewDish(model.Green, 0))
			r := Collect(l.Snapshot(), testCase.remaining)
			out := &strings.Builder{}
			require.NoError(t, r.Write(out))
			for _, fragment := range testCase.expect {
				assert.Contains(t, out.String(), fragment)
			}
			for _, fragment := range testCase.absent {
				assert.NotContains(t, out.String(), fragment)
			}
		})
	}
}
