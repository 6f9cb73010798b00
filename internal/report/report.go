package report

import (
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rohmanhakim/scores-fixture/internal/metadata"
)

// Summary is what a finished run reports to the operator.
type Summary struct {
	Stats metadata.RunStats
	// Failed lists the resources that could not be fetched.
	Failed       []string
	SkippedUnits []string
	Collisions   []string
	// Output is the written output file, empty when nothing was assembled.
	Output string
}

// Render writes the counts table, followed by a detail table when anything
// failed, was skipped or collided.
func Render(w io.Writer, s Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Stage", "Outcome", "Count"})
	t.AppendRows([]table.Row{
		{"fetch", "downloaded", s.Stats.Downloaded},
		{"fetch", "skipped (existing)", s.Stats.SkippedExisting},
		{"fetch", "failed", s.Stats.Failed},
		{"assemble", "units", s.Stats.Units},
		{"assemble", "assembled", s.Stats.Assembled},
		{"assemble", "skipped", s.Stats.SkippedUnits},
		{"assemble", "key collisions", s.Stats.Collisions},
	})
	t.AppendSeparator()
	if s.Output != "" {
		t.AppendRow(table.Row{"run", "output", s.Output})
	}
	t.AppendRow(table.Row{"run", "duration", s.Stats.Duration.Round(time.Millisecond).String()})
	t.SetStyle(table.StyleRounded)
	t.Render()

	if len(s.Failed) == 0 && len(s.SkippedUnits) == 0 && len(s.Collisions) == 0 {
		return
	}

	d := table.NewWriter()
	d.SetOutputMirror(w)
	d.AppendHeader(table.Row{"Problem", "Item"})
	for _, name := range s.Failed {
		d.AppendRow(table.Row{"fetch failed", name})
	}
	for _, unit := range s.SkippedUnits {
		d.AppendRow(table.Row{"unit skipped", unit})
	}
	for _, key := range s.Collisions {
		d.AppendRow(table.Row{"key collision", key})
	}
	d.SetStyle(table.StyleRounded)
	d.Render()
}
