package task

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/get-convex/convex-backend/internal/command"
	"github.com/get-convex/convex-backend/internal/ctxlog"
)

// Registry holds the run's task definitions in registration order. Order is
// preserved so logs and workspaces stay predictable run to run; it has no
// scheduling meaning.
type Registry struct {
	order []string
	defs  map[string]*Definition
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Register adds a definition. Names must be unique and non-empty, and every
// definition needs at least one non-empty command.
func (r *Registry) Register(def *Definition) error {
	if def.Name == "" {
		return errors.New("task with no name")
	}
	if _, exists := r.defs[def.Name]; exists {
		return fmt.Errorf("duplicate task %q", def.Name)
	}
	if len(def.Commands) == 0 {
		return fmt.Errorf("task %q has no commands", def.Name)
	}
	for _, argv := range def.Commands {
		if len(argv) == 0 {
			return fmt.Errorf("task %q has an empty command", def.Name)
		}
	}
	r.order = append(r.order, def.Name)
	r.defs[def.Name] = def
	return nil
}

// Replace swaps out a previously registered definition, keeping its position
// in the order.
func (r *Registry) Replace(def *Definition) error {
	if _, exists := r.defs[def.Name]; !exists {
		return fmt.Errorf("unknown task %q", def.Name)
	}
	old := r.defs[def.Name]
	delete(r.defs, def.Name)
	if err := r.Register(def); err != nil {
		r.defs[def.Name] = old
		return err
	}
	// Register appended the name again; drop the duplicate tail entry.
	r.order = r.order[:len(r.order)-1]
	return nil
}

// Remove drops a definition from the registry.
func (r *Registry) Remove(name string) error {
	if _, exists := r.defs[name]; !exists {
		return fmt.Errorf("unknown task %q", name)
	}
	delete(r.defs, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (*Definition, bool) {
	def, ok := r.defs[name]
	return def, ok
}

// Definitions returns the registered definitions in registration order.
func (r *Registry) Definitions() []*Definition {
	out := make([]*Definition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.defs[name])
	}
	return out
}

// Len reports how many definitions are registered.
func (r *Registry) Len() int { return len(r.order) }

// Validate runs the cross-definition checks that individual Register calls
// cannot: every output directory must stay inside the workspace, and no two
// tasks may share one. Call it once the registry is fully populated.
func (r *Registry) Validate(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Validating task registry.", "tasks", len(r.order))

	owners := make(map[string]string, len(r.order))
	for _, def := range r.Definitions() {
		dir := def.outputDir()
		clean := filepath.Clean(dir)
		if filepath.IsAbs(clean) || clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
			return fmt.Errorf("task %q output directory %q escapes the workspace", def.Name, dir)
		}
		if owner, taken := owners[clean]; taken {
			return fmt.Errorf("tasks %q and %q share output directory %q", owner, def.Name, clean)
		}
		owners[clean] = def.Name
	}
	return nil
}

// Materialize builds executable tasks for every definition, in registration
// order, all sharing one runner.
func (r *Registry) Materialize(runner *command.Runner) []*Task {
	tasks := make([]*Task, 0, len(r.order))
	for _, def := range r.Definitions() {
		tasks = append(tasks, def.Materialize(runner))
	}
	return tasks
}
