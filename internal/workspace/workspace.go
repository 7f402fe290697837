// Package workspace manages the scratch directory a run builds into and the
// rename-based swap that turns it into the published output.
package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/get-convex/convex-backend/internal/ctxlog"
)

// New creates a fresh scratch directory for one run, named after the output
// directory it will eventually replace plus a random suffix. The workspace is
// a sibling of the output so both live on one filesystem, which is what
// keeps the final rename atomic.
func New(ctx context.Context, output string) (string, error) {
	parent := filepath.Dir(output)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return "", fmt.Errorf("creating output parent directory: %w", err)
	}

	path := fmt.Sprintf("%s-tmp-%s", output, uuid.NewString())
	if err := os.Mkdir(path, 0o755); err != nil {
		return "", fmt.Errorf("creating workspace: %w", err)
	}

	ctxlog.FromContext(ctx).Debug("Created workspace.", "path", path)
	return path, nil
}

// Discard removes a workspace that will not be published. Removal is best
// effort: a stray scratch directory is not worth failing over.
func Discard(ctx context.Context, ws string) {
	if err := os.RemoveAll(ws); err != nil {
		ctxlog.FromContext(ctx).Warn("Could not remove workspace.", "path", ws, "error", err)
	}
}
