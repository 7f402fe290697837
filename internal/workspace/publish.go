package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/uuid"

	"github.com/get-convex/convex-backend/internal/ctxlog"
)

// Publish replaces the published output directory with the workspace. The
// previous output is renamed aside first and deleted only after the swap, so
// a concurrent reader sees either the old tree or the new one in full, never
// a half-written mix.
//
// If the swap itself fails, Publish puts the previous output back and the
// workspace is left untouched for inspection.
func Publish(ctx context.Context, ws, output string) error {
	logger := ctxlog.FromContext(ctx)

	disposable := fmt.Sprintf("%s-old-%s", output, uuid.NewString())
	switch err := os.Rename(output, disposable); {
	case err == nil:
		logger.Debug("Moved previous output aside.", "path", disposable)
	case errors.Is(err, fs.ErrNotExist):
		// First publish: nothing to move aside.
		disposable = ""
	default:
		return fmt.Errorf("moving previous output aside: %w", err)
	}

	if err := os.Rename(ws, output); err != nil {
		if disposable != "" {
			if rollbackErr := os.Rename(disposable, output); rollbackErr != nil {
				logger.Error("Could not restore previous output.", "path", disposable, "error", rollbackErr)
			}
		}
		return fmt.Errorf("publishing workspace: %w", err)
	}

	if disposable != "" {
		// The swap already happened, so the run stays successful even if the
		// old tree lingers.
		if err := os.RemoveAll(disposable); err != nil {
			logger.Warn("Could not remove previous output.", "path", disposable, "error", err)
		}
	}

	logger.Debug("Published output.", "path", output)
	return nil
}
