// Package timing collects per-task wall-clock durations for one orchestrator
// run and renders the end-of-run report.
package timing

import (
	"sync"
	"time"
)

// Recorder maps task names to elapsed wall-clock durations. It is owned by a
// single run and shared by the scheduler's workers: every task writes its own
// unique key exactly once, so the mutex only has to make concurrent writes to
// distinct keys safe.
type Recorder struct {
	mu        sync.Mutex
	durations map[string]time.Duration
}

// NewRecorder returns an empty Recorder for one run.
func NewRecorder() *Recorder {
	return &Recorder{durations: make(map[string]time.Duration)}
}

// Record stores the elapsed duration for a task. It is called once per task,
// success or failure alike — timing data is kept even for failed tasks.
func (r *Recorder) Record(name string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.durations[name] = d
}

// Durations returns a copy of the recorded durations.
func (r *Recorder) Durations() map[string]time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]time.Duration, len(r.durations))
	for name, d := range r.durations {
		out[name] = d
	}
	return out
}
