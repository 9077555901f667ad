// Package report collects the final counters of a simulation run and renders
// the chef, cashier, service, waste and validation sections.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/viant/kaiten/model"
	"github.com/viant/kaiten/service/ledger"
)

// Line holds counters of one colour, or the totals when Color is empty.
type Line struct {
	Color          string `json:"color,omitempty" yaml:"color,omitempty"`
	Produced       int    `json:"produced" yaml:"produced"`
	ProducedValue  int    `json:"producedValue" yaml:"producedValue"`
	Sold           int    `json:"sold" yaml:"sold"`
	SoldValue      int    `json:"soldValue" yaml:"soldValue"`
	Remaining      int    `json:"remaining" yaml:"remaining"`
	RemainingValue int    `json:"remainingValue" yaml:"remainingValue"`
	Wasted         int    `json:"wasted" yaml:"wasted"`
	WastedValue    int    `json:"wastedValue" yaml:"wastedValue"`
}

// Balanced reports whether every produced plate is accounted for.
func (l Line) Balanced() bool { return l.Produced == l.Sold+l.Remaining+l.Wasted }

func (l *Line) add(other Line) {
	l.Produced += other.Produced
	l.ProducedValue += other.ProducedValue
	l.Sold += other.Sold
	l.SoldValue += other.SoldValue
	l.Remaining += other.Remaining
	l.RemainingValue += other.RemainingValue
	l.Wasted += other.Wasted
	l.WastedValue += other.WastedValue
}

// Visits summarises how group visits ended.
type Visits struct {
	Created     int64 `json:"created" yaml:"created"`
	Paid        int   `json:"paid" yaml:"paid"`
	Finished    int64 `json:"finished" yaml:"finished"`
	Rejected    int64 `json:"rejected" yaml:"rejected"`
	Interrupted int64 `json:"interrupted" yaml:"interrupted"`
}

// Report is the final state of a run.
type Report struct {
	RunID     string        `json:"runId,omitempty" yaml:"runId,omitempty"`
	Elapsed   time.Duration `json:"elapsed" yaml:"elapsed"`
	Evacuated bool          `json:"evacuated" yaml:"evacuated"`
	Lines     []Line        `json:"lines" yaml:"lines"`
	Totals    Line          `json:"totals" yaml:"totals"`
	Revenue   int           `json:"revenue" yaml:"revenue"`
	Visits    Visits        `json:"visits" yaml:"visits"`
	Misses    int64         `json:"misses" yaml:"misses"`
}

// Collect builds a report from the ledger and the plates still on the belt.
func Collect(snapshot ledger.Snapshot, remaining [model.ColorCount]int) *Report {
	ret := &Report{Revenue: snapshot.Revenue}
	ret.Visits.Paid = snapshot.Groups
	if !snapshot.StartedAt.IsZero() {
		ret.Elapsed = time.Since(snapshot.StartedAt)
	}
	for _, color := range model.Colors() {
		src := snapshot.Lines[color]
		line := Line{
			Color:          color.String(),
			Produced:       src.Produced,
			ProducedValue:  src.ProducedValue,
			Sold:           src.Sold,
			SoldValue:      src.SoldValue,
			Remaining:      remaining[color],
			RemainingValue: remaining[color] * color.Price(),
			Wasted:         src.Wasted,
			WastedValue:    src.WastedValue,
		}
		ret.Lines = append(ret.Lines, line)
		ret.Totals.add(line)
	}
	return ret
}

// Balanced reports whether Produced == Sold + Remaining + Wasted for every colour.
func (r *Report) Balanced() bool {
	return len(r.Mismatches()) == 0
}

// Mismatches lists colours violating the conservation law.
func (r *Report) Mismatches() []string {
	var ret []string
	for _, line := range r.Lines {
		if !line.Balanced() {
			ret = append(ret, fmt.Sprintf("%s: produced %d != sold %d + remaining %d + wasted %d",
				line.Color, line.Produced, line.Sold, line.Remaining, line.Wasted))
		}
	}
	return ret
}

// Write renders the text report.
func (r *Report) Write(w io.Writer) error {
	b := &strings.Builder{}
	b.WriteString("============================================================\n")
	b.WriteString("           SIMULATION FINISHED - FINAL REPORTS\n")
	b.WriteString("============================================================\n")
	if r.Evacuated {
		b.WriteString("(evacuated)\n")
	}

	section(b, "CHEF REPORT", "Products produced:", r.Lines, func(l Line) (int, int) { return l.Produced, l.ProducedValue })
	fmt.Fprintf(b, "TOTAL: %d dishes, %d PLN\n\n", r.Totals.Produced, r.Totals.ProducedValue)

	section(b, "CASHIER REPORT", "Products sold:", r.Lines, func(l Line) (int, int) { return l.Sold, l.SoldValue })
	fmt.Fprintf(b, "TOTAL: %d dishes, %d PLN revenue (%d groups paid)\n\n", r.Totals.Sold, r.Revenue, r.Visits.Paid)

	section(b, "SERVICE REPORT", "Products remaining on belt:", r.Lines, func(l Line) (int, int) { return l.Remaining, l.RemainingValue })
	fmt.Fprintf(b, "TOTAL remaining: %d dishes, %d PLN value\n\n", r.Totals.Remaining, r.Totals.RemainingValue)

	section(b, "WASTED REPORT", "Dishes removed after their group left:", r.Lines, func(l Line) (int, int) { return l.Wasted, l.WastedValue })
	if r.Totals.Wasted == 0 {
		b.WriteString("  (none)\n")
	}
	fmt.Fprintf(b, "TOTAL wasted: %d dishes, %d PLN value\n\n", r.Totals.Wasted, r.Totals.WastedValue)

	b.WriteString("========== VALIDATION ==========\n")
	fmt.Fprintf(b, "Produced: %d\nSold:     %d\nRemaining:%d\nWasted:   %d\n",
		r.Totals.Produced, r.Totals.Sold, r.Totals.Remaining, r.Totals.Wasted)
	calculated := r.Totals.Sold + r.Totals.Remaining + r.Totals.Wasted
	fmt.Fprintf(b, "Sold+Remaining+Wasted = %d\n", calculated)
	if r.Balanced() {
		b.WriteString("+ MATCH: Produced == Sold+Remaining+Wasted\n")
	} else {
		fmt.Fprintf(b, "- MISMATCH: Produced (%d) != Sold+Remaining+Wasted (%d)\n", r.Totals.Produced, calculated)
		for _, mismatch := range r.Mismatches() {
			fmt.Fprintf(b, "  %s\n", mismatch)
		}
	}
	fmt.Fprintf(b, "Groups: created %d, finished %d, rejected %d, interrupted %d\n",
		r.Visits.Created, r.Visits.Finished, r.Visits.Rejected, r.Visits.Interrupted)
	b.WriteString("=================================\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func section(b *strings.Builder, title, caption string, lines []Line, value func(Line) (int, int)) {
	fmt.Fprintf(b, "\n========== %s ==========\n%s\n", title, caption)
	for _, line := range lines {
		count, amount := value(line)
		if count == 0 {
			continue
		}
		fmt.Fprintf(b, "  %s: %d pcs - %d PLN\n", line.Color, count, amount)
	}
}
