package manifest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/get-convex/convex-backend/internal/ctxlog"
	"github.com/get-convex/convex-backend/internal/pkginfo"
	"github.com/get-convex/convex-backend/internal/task"
)

// evalContext exposes the package identity to manifest expressions, so a
// command can interpolate pkg.name or pkg.version.
func evalContext(pkg *pkginfo.Package) *hcl.EvalContext {
	if pkg == nil {
		return nil
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"pkg": cty.ObjectVal(map[string]cty.Value{
				"name":    cty.StringVal(pkg.Name),
				"version": cty.StringVal(pkg.Version),
			}),
		},
	}
}

// Load parses and decodes the manifest at path, evaluating expressions
// against the package identity. A missing file is not an error: packages
// without a manifest build with the defaults, and Load returns nil for them.
// A manifest that exists but does not parse is fatal.
func Load(ctx context.Context, path string, pkg *pkginfo.Package) (*File, error) {
	logger := ctxlog.FromContext(ctx)

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		logger.Debug("No build manifest, using defaults.", "path", path)
		return nil, nil
	}

	logger.Debug("Decoding build manifest.", "path", path)
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse manifest %s: %s", path, diags.Error())
	}

	var f File
	diags = gohcl.DecodeBody(file.Body, evalContext(pkg), &f)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode manifest %s: %s", path, diags.Error())
	}

	logger.Debug("Successfully decoded manifest.", "path", path, "tasks_found", len(f.Tasks))
	return &f, nil
}

// Apply folds the manifest's task blocks into the registry, in file order. A
// block naming a known task overrides its non-empty fields, an unknown name
// appends a new definition after the existing ones, and skip = true removes
// the task from the run. Skipping a name that is not registered is an error:
// silently ignoring it would hide typos.
func (f *File) Apply(ctx context.Context, reg *task.Registry) error {
	if f == nil {
		return nil
	}
	logger := ctxlog.FromContext(ctx)

	for _, block := range f.Tasks {
		if block.Skip {
			if err := reg.Remove(block.Name); err != nil {
				return fmt.Errorf("manifest skips %w", err)
			}
			logger.Debug("Manifest skips task.", "task", block.Name)
			continue
		}

		marker, err := pkginfo.ParseFormat(block.Marker)
		if err != nil {
			return fmt.Errorf("manifest task %q: %w", block.Name, err)
		}

		if existing, ok := reg.Lookup(block.Name); ok {
			def := *existing
			if block.Subdir != "" {
				def.Subdir = block.Subdir
			}
			if len(block.Command) > 0 {
				def.Commands = [][]string{block.Command}
			}
			if block.Marker != "" {
				def.Marker = marker
			}
			if err := reg.Replace(&def); err != nil {
				return fmt.Errorf("manifest task %q: %w", block.Name, err)
			}
			logger.Debug("Manifest overrides task.", "task", block.Name)
			continue
		}

		def := &task.Definition{
			Name:   block.Name,
			Subdir: block.Subdir,
			Marker: marker,
		}
		if len(block.Command) > 0 {
			def.Commands = [][]string{block.Command}
		}
		if err := reg.Register(def); err != nil {
			return fmt.Errorf("manifest task %q: %w", block.Name, err)
		}
		logger.Debug("Manifest adds task.", "task", block.Name)
	}
	return nil
}
