package task

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/get-convex/convex-backend/internal/command"
	"github.com/get-convex/convex-backend/internal/pkginfo"
)

// DestToken is the placeholder that command arguments use to reference the
// task's destination directory. Commands that never mention it get the
// destination appended as their final argument.
const DestToken = "{dest}"

// Definition declaratively describes one artifact variant: what to call it,
// where its output lands inside the workspace, which module-format marker to
// drop there, and the commands that produce it.
type Definition struct {
	// Name uniquely identifies the task within a run.
	Name string

	// Subdir is the workspace-relative output directory. Empty means "same
	// as Name".
	Subdir string

	// Marker selects the module-format descriptor written into Subdir before
	// any command runs. FormatNone writes nothing.
	Marker pkginfo.Format

	// Commands are run in order, each as an argv list. A non-zero exit from
	// any command fails the task; later commands do not run.
	Commands [][]string
}

// outputDir resolves the effective workspace-relative output directory.
func (d *Definition) outputDir() string {
	if d.Subdir != "" {
		return d.Subdir
	}
	return d.Name
}

// Materialize turns the definition into an executable Task whose commands run
// through the given runner.
func (d *Definition) Materialize(runner *command.Runner) *Task {
	marker := d.Marker
	commands := d.Commands
	name := d.Name

	return New(name, d.outputDir(), func(ctx context.Context, dest string) error {
		if marker != pkginfo.FormatNone {
			data, err := pkginfo.Marker(marker)
			if err != nil {
				return err
			}
			path := filepath.Join(dest, pkginfo.ManifestName)
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("writing %s format marker: %w", name, err)
			}
		}
		for _, argv := range commands {
			if err := runner.Run(ctx, renderArgv(argv, dest)); err != nil {
				return err
			}
		}
		return nil
	})
}

// renderArgv substitutes DestToken throughout argv. If no argument mentions
// the token, dest is appended instead so every command still learns where to
// write.
func renderArgv(argv []string, dest string) []string {
	rendered := make([]string, len(argv))
	substituted := false
	for i, arg := range argv {
		if strings.Contains(arg, DestToken) {
			rendered[i] = strings.ReplaceAll(arg, DestToken, dest)
			substituted = true
			continue
		}
		rendered[i] = arg
	}
	if !substituted {
		rendered = append(rendered, dest)
	}
	return rendered
}
