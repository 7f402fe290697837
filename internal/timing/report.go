package timing

import (
	"fmt"
	"io"
	"sort"
	"time"
)

// Report writes one line per recorded task, sorted ascending by duration
// (ties broken by name so output is deterministic), followed by the total
// wall-clock time for the run. The total is measured from run start to report
// time, not summed from task durations, since tasks overlap.
func Report(w io.Writer, rec *Recorder, total time.Duration) {
	type line struct {
		name string
		d    time.Duration
	}

	durations := rec.Durations()
	lines := make([]line, 0, len(durations))
	for name, d := range durations {
		lines = append(lines, line{name: name, d: d})
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].d != lines[j].d {
			return lines[i].d < lines[j].d
		}
		return lines[i].name < lines[j].name
	})

	for _, l := range lines {
		fmt.Fprintf(w, "%.3fs %s\n", l.d.Seconds(), l.name)
	}
	fmt.Fprintf(w, "%.3fs total\n", total.Seconds())
}
