// Package command executes the external build commands (compilers, bundlers)
// that produce artifact variants. It is the only place in the orchestrator
// that spawns child processes.
package command

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/get-convex/convex-backend/internal/ctxlog"
)

// BuildError describes an external build command that ran to completion but
// exited non-zero. It carries the captured combined output so a failure can
// be diagnosed without a stack trace.
type BuildError struct {
	// Command is the rendered command line that failed.
	Command string
	// ExitCode is the command's exit status.
	ExitCode int
	// Output is the combined stdout and stderr captured from the command.
	Output string
}

// Error implements the error interface for BuildError.
func (e *BuildError) Error() string {
	return fmt.Sprintf("command %q exited with status %d", e.Command, e.ExitCode)
}

// Runner executes external commands with stderr merged into stdout.
type Runner struct {
	// Dir is the working directory for every command. Empty means the
	// process's current working directory.
	Dir string
}

// Run executes argv as a single child process and waits for it to finish.
// On a zero exit status the captured output is discarded and Run returns nil.
// On a non-zero exit status Run returns a *BuildError; it never prints the
// failure itself — reporting is the caller's responsibility. A command that
// could not be spawned at all returns a plain wrapped error, since there is
// no exit status or output to capture. Commands are never retried.
func (r *Runner) Run(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		return errors.New("empty command")
	}
	rendered := strings.Join(argv, " ")

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Running build command.", "command", rendered, "dir", r.Dir)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.Dir
	output, err := cmd.CombinedOutput()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return fmt.Errorf("starting command %q: %w", rendered, err)
	}
	return &BuildError{
		Command:  rendered,
		ExitCode: exitErr.ExitCode(),
		Output:   string(output),
	}
}
