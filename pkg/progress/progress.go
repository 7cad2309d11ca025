// Package progress renders console search progress. The paginator reports
// raw counts through a callback; everything about how those counts look on a
// terminal lives here, not in the core.
package progress

import (
	"fmt"
	"io"
	"math"
	"strings"
)

// Bar renders a 50-tick ASCII progress bar with a rounded percentage.
func Bar(completed, total int) string {
	var ratio float64
	if total > 0 {
		ratio = float64(completed) / float64(total)
	}
	if ratio > 1 {
		ratio = 1
	}
	ticks := int(ratio*100) / 2
	return fmt.Sprintf(" %s%s %d%%",
		strings.Repeat("=", ticks),
		strings.Repeat("-", 50-ticks),
		int(math.Round(ratio*100)))
}

// Renderer writes carriage-return-refreshed progress lines for one search.
// In indeterminate mode (an after-bound is active, so the total number of
// pages to walk is unknown) it shows an open-ended trailing indicator
// instead of a bar.
type Renderer struct {
	w             io.Writer
	label         string
	indeterminate bool
}

func NewRenderer(w io.Writer, label string, indeterminate bool) *Renderer {
	return &Renderer{w: w, label: label, indeterminate: indeterminate}
}

// Update is shaped to serve as a paginator progress sink.
func (r *Renderer) Update(processed, total, selected int) {
	if r.indeterminate {
		fmt.Fprintf(r.w, "\r%s (searched %d, selected %d)...", r.label, processed, selected)
		return
	}
	fmt.Fprintf(r.w, "\r%s (searched %d of %d, selected %d)%s",
		r.label, processed, total, selected, Bar(processed, total))
}

// Done overwrites the progress line with a final summary.
func (r *Renderer) Done(selected, total int) {
	fmt.Fprintf(r.w, "\rSelected %d of %d messages\n", selected, total)
}
