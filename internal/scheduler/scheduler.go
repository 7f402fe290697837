// Package scheduler fans a run's tasks out across a bounded worker pool and
// folds their results into a single pass/fail verdict for the run.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/get-convex/convex-backend/internal/ctxlog"
	"github.com/get-convex/convex-backend/internal/task"
	"github.com/get-convex/convex-backend/internal/timing"
)

// DefaultWorkers is the pool size used when the caller does not pick one. It
// sits comfortably above the default task count so every task starts
// immediately; the pool exists to cap concurrency, not to queue work.
const DefaultWorkers = 20

// Scheduler runs independent tasks concurrently. Tasks never depend on each
// other, so there is no ordering to respect: everything is submitted up front
// and the pool drains it.
type Scheduler struct {
	numWorkers int
	recorder   *timing.Recorder
}

// New creates a scheduler with the given pool size. A non-positive size
// selects DefaultWorkers. Every task's wall-clock duration is recorded into
// rec, success or failure alike.
func New(numWorkers int, rec *timing.Recorder) *Scheduler {
	if numWorkers <= 0 {
		numWorkers = DefaultWorkers
	}
	return &Scheduler{numWorkers: numWorkers, recorder: rec}
}

// Run executes every task against workspaceRoot and blocks until all of them
// have finished. A task failure does not cancel in-flight or queued tasks;
// the run is only reported once everything has settled, so the workspace is
// complete for post-mortems either way.
//
// When several tasks fail, the first failure in completion order becomes the
// run error and the rest are logged.
func (s *Scheduler) Run(ctx context.Context, tasks []*task.Task, workspaceRoot string) error {
	logger := ctxlog.FromContext(ctx)

	taskChan := make(chan *task.Task, len(tasks))
	// Buffered to capacity so workers never block on the collector; send
	// order on this channel is completion order.
	results := make(chan task.Result, len(tasks))

	for _, tk := range tasks {
		taskChan <- tk
	}
	close(taskChan)

	logger.Debug("Starting worker pool.", "workers", s.numWorkers, "tasks", len(tasks))
	var wg sync.WaitGroup
	wg.Add(s.numWorkers)
	for i := 0; i < s.numWorkers; i++ {
		go s.worker(ctx, taskChan, results, workspaceRoot, i, &wg)
	}

	wg.Wait()
	close(results)

	var runErr error
	failed := 0
	for res := range results {
		if res.Err == nil {
			continue
		}
		failed++
		if runErr == nil {
			runErr = fmt.Errorf("task %s: %w", res.Name, res.Err)
			continue
		}
		logger.Error("Task failed.", "task", res.Name, "error", res.Err)
	}

	if runErr != nil {
		logger.Debug("Run settled with failures.", "failed", failed, "tasks", len(tasks))
		return runErr
	}
	logger.Debug("All tasks completed.", "tasks", len(tasks))
	return nil
}

// worker is the processing loop for a single pool worker.
func (s *Scheduler) worker(ctx context.Context, taskChan chan *task.Task, results chan<- task.Result, workspaceRoot string, workerID int, wg *sync.WaitGroup) {
	defer wg.Done()
	logger := ctxlog.FromContext(ctx)

	for tk := range taskChan {
		workerLogger := logger.With("workerID", workerID, "task", tk.Name())
		workerLogger.Debug("Worker picked up task.")

		res := tk.Execute(ctx, workspaceRoot)
		s.recorder.Record(res.Name, res.Duration)

		if res.Err != nil {
			workerLogger.Debug("Task finished with error.", "duration", res.Duration)
		} else {
			workerLogger.Debug("Task finished.", "duration", res.Duration)
		}
		results <- res
	}
}
