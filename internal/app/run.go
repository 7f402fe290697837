package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/get-convex/convex-backend/internal/command"
	"github.com/get-convex/convex-backend/internal/ctxlog"
	"github.com/get-convex/convex-backend/internal/manifest"
	"github.com/get-convex/convex-backend/internal/pkginfo"
	"github.com/get-convex/convex-backend/internal/scheduler"
	"github.com/get-convex/convex-backend/internal/task"
	"github.com/get-convex/convex-backend/internal/timing"
	"github.com/get-convex/convex-backend/internal/workspace"
)

// Run executes one full build and returns once the output is published or
// the run has failed. On failure the workspace stays on disk so the partial
// artifacts can be inspected.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	ws, err := a.buildOnce(ctx)
	if err != nil {
		if ws != "" {
			a.logger.Error("Build failed, keeping workspace for inspection.", "workspace", ws)
		}
		return err
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// buildOnce performs a single build cycle: read the package identity, merge
// the manifest into the default task set, run everything into a fresh
// workspace, publish, and print the timing report. It returns the workspace
// path alongside any error so callers can decide the workspace's fate.
func (a *App) buildOnce(ctx context.Context) (string, error) {
	start := time.Now()

	pkgDir, err := filepath.Abs(a.config.PackageDir)
	if err != nil {
		return "", fmt.Errorf("resolving package directory: %w", err)
	}

	pkg, err := pkginfo.Read(pkgDir)
	if err != nil {
		return "", err
	}
	a.logger.Info("🚧 Building package.", "name", pkg.Name, "version", pkg.Version)

	mf, err := manifest.Load(ctx, filepath.Join(pkgDir, a.config.ManifestName), pkg)
	if err != nil {
		return "", err
	}

	reg := task.Defaults()
	if err := mf.Apply(ctx, reg); err != nil {
		return "", err
	}
	if err := reg.Validate(ctx); err != nil {
		return "", err
	}

	output := a.outputDir(pkgDir, mf)
	a.output.Store(output)

	ws, err := workspace.New(ctx, output)
	if err != nil {
		return "", err
	}

	runner := &command.Runner{Dir: pkgDir}
	tasks := reg.Materialize(runner)
	rec := timing.NewRecorder()
	workers := a.workerCount(mf)

	a.logger.Info("🚀 Starting concurrent build.", "tasks", len(tasks), "workers", workers)
	if err := scheduler.New(workers, rec).Run(ctx, tasks, ws); err != nil {
		return ws, err
	}

	if err := workspace.Publish(ctx, ws, output); err != nil {
		return ws, err
	}
	a.logger.Info("🏁 Build finished.", "output", output)

	timing.Report(a.outW, rec, time.Since(start))
	return ws, nil
}
