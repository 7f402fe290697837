// Package task defines the independent units of build work that produce the
// distributable artifact variants, and the registry they are drawn from.
package task

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Action produces one task's artifacts into dest. It must treat dest as the
// only directory it may write to.
type Action func(ctx context.Context, dest string) error

// Task is a named, self-contained unit of build work bound to its own
// subdirectory of the run's workspace. Tasks are immutable once constructed,
// execute exactly once per run, and are never retried.
type Task struct {
	name   string
	subdir string
	action Action
}

// New binds a named action to the workspace-relative subdirectory it owns.
func New(name, subdir string, action Action) *Task {
	return &Task{name: name, subdir: subdir, action: action}
}

// Name returns the task's unique name.
func (t *Task) Name() string { return t.name }

// Subdir returns the workspace-relative output directory the task owns.
func (t *Task) Subdir() string { return t.subdir }

// Result is the outcome of one task execution. A nil Err means success.
type Result struct {
	Name     string
	Duration time.Duration
	Err      error
}

// Execute runs the task against a workspace root and measures its elapsed
// wall-clock time. The destination subdirectory is created first,
// create-if-absent: re-running into a recycled workspace must not fail on
// directories that already exist.
func (t *Task) Execute(ctx context.Context, workspaceRoot string) Result {
	start := time.Now()
	dest := filepath.Join(workspaceRoot, t.subdir)

	err := os.MkdirAll(dest, 0o755)
	if err != nil {
		err = fmt.Errorf("creating output directory for %s: %w", t.name, err)
	} else {
		err = t.action(ctx, dest)
	}
	return Result{Name: t.name, Duration: time.Since(start), Err: err}
}
