package app

import (
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/get-convex/convex-backend/internal/manifest"
	"github.com/get-convex/convex-backend/internal/scheduler"
)

// DefaultOutput is the published directory name used when neither the command
// line nor the manifest picks one.
const DefaultOutput = "dist"

// App encapsulates the application's dependencies, configuration, and
// lifecycle. Reports go to outW; structured logs go to their own writer so
// the report stream stays machine-readable.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config

	// watchRoot is the absolute package directory, set once before the
	// watcher starts.
	watchRoot string

	// output holds the most recently resolved published directory, read by
	// the watch-mode skip filter from the watcher goroutine.
	output atomic.Value // string
}

// New is the constructor for the main application. It returns an App with its
// own isolated logger writing to logW; nothing global is touched.
func New(outW, logW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")
	return &App{outW: outW, logger: logger, config: cfg}
}

// outputDir resolves the published directory: the flag beats the manifest,
// which beats DefaultOutput. Relative paths are anchored in the package
// directory.
func (a *App) outputDir(pkgDir string, mf *manifest.File) string {
	out := a.config.Output
	if out == "" && mf != nil && mf.Settings != nil {
		out = mf.Settings.Output
	}
	if out == "" {
		out = DefaultOutput
	}
	if !filepath.IsAbs(out) {
		out = filepath.Join(pkgDir, out)
	}
	return out
}

// workerCount resolves the scheduler pool size, the flag beating the
// manifest beating the scheduler's default.
func (a *App) workerCount(mf *manifest.File) int {
	if a.config.Workers > 0 {
		return a.config.Workers
	}
	if mf != nil && mf.Settings != nil && mf.Settings.Workers > 0 {
		return mf.Settings.Workers
	}
	return scheduler.DefaultWorkers
}

// skipPath filters paths the watcher must ignore: dotted directories,
// node_modules, scratch and disposable directories, and everything under the
// published output. Without the last rule every publish would retrigger the
// build that produced it. Only components below the watch root are judged,
// so a dotted directory somewhere above the package stays harmless.
func (a *App) skipPath(path string) bool {
	if out, ok := a.output.Load().(string); ok && out != "" {
		if path == out || strings.HasPrefix(path, out+string(filepath.Separator)) {
			return true
		}
	}

	rel, err := filepath.Rel(a.watchRoot, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if part == "node_modules" {
			return true
		}
		if len(part) > 1 && strings.HasPrefix(part, ".") && part != ".." {
			return true
		}
		if strings.Contains(part, "-tmp-") || strings.Contains(part, "-old-") {
			return true
		}
	}
	return false
}
