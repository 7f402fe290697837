package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/get-convex/convex-backend/internal/ctxlog"
	"github.com/get-convex/convex-backend/internal/watch"
	"github.com/get-convex/convex-backend/internal/workspace"
)

// RunWatch builds once, then rebuilds whenever the package sources change,
// until ctx is canceled. Iteration failures are logged instead of ending the
// session, and their workspaces are removed: an unbounded watch session must
// not accumulate scratch directories the way a single post-mortem run may.
func (a *App) RunWatch(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	logger := ctxlog.FromContext(ctx)

	pkgDir, err := filepath.Abs(a.config.PackageDir)
	if err != nil {
		return fmt.Errorf("resolving package directory: %w", err)
	}
	a.watchRoot = pkgDir

	iteration := func() {
		ws, err := a.buildOnce(ctx)
		if err != nil {
			logger.Error("Build failed.", "error", err)
			if ws != "" {
				workspace.Discard(ctx, ws)
			}
		}
	}

	// The first build also resolves the output directory the watcher must
	// ignore, so it runs before the watcher exists.
	iteration()

	w, err := watch.New(ctx, pkgDir, a.skipPath, 0)
	if err != nil {
		return err
	}
	defer w.Close()

	logger.Info("👀 Watching for changes.", "dir", pkgDir)
	for {
		select {
		case <-ctx.Done():
			logger.Info("Watch session ended.")
			return nil
		case _, ok := <-w.Ticks():
			if !ok {
				return nil
			}
			logger.Info("🔁 Change detected, rebuilding.")
			iteration()
		}
	}
}
