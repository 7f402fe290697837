// Package watch turns raw filesystem notifications into debounced rebuild
// ticks for watch mode.
package watch

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/get-convex/convex-backend/internal/ctxlog"
	"github.com/get-convex/convex-backend/internal/fsutil"
)

// DefaultDebounce is how long the source tree must stay quiet before a
// change burst is folded into a single rebuild tick. Editors and package
// managers touch many files in quick succession; rebuilding per event would
// thrash.
const DefaultDebounce = 400 * time.Millisecond

// Watcher watches a source tree recursively and emits one tick per quiet
// period after one or more changes.
type Watcher struct {
	fsw      *fsnotify.Watcher
	skip     func(path string) bool
	debounce time.Duration
	ticks    chan struct{}
	done     chan struct{}
}

// New watches root and every directory below it, pruning subtrees skip
// rejects. Events whose paths skip rejects are dropped too, so generated
// trees like the output directory never retrigger the build that wrote them.
// A non-positive debounce selects DefaultDebounce.
func New(ctx context.Context, root string, skip func(path string) bool, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating filesystem watcher: %w", err)
	}

	dirs, err := fsutil.Dirs(root, skip)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("walking watch root: %w", err)
	}
	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	ctxlog.FromContext(ctx).Debug("Watching for changes.", "root", root, "dirs", len(dirs))

	w := &Watcher{
		fsw:      fsw,
		skip:     skip,
		debounce: debounce,
		// One slot: a change burst during a rebuild coalesces into a single
		// pending tick instead of queueing rebuilds.
		ticks: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	go w.loop(ctx)
	return w, nil
}

// Ticks emits once per quiet period after changes. The channel is closed
// when the watcher stops.
func (w *Watcher) Ticks() <-chan struct{} { return w.ticks }

// Close stops watching and waits for the event loop to drain.
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	<-w.done
	return err
}

// loop coalesces raw events into ticks.
func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	defer close(w.ticks)
	logger := ctxlog.FromContext(ctx)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if w.skip != nil && w.skip(ev.Name) {
				continue
			}
			logger.Debug("Change detected.", "path", ev.Name, "op", ev.Op.String())

			// New directories must be watched too or changes inside them go
			// unseen.
			if ev.Op.Has(fsnotify.Create) {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := w.fsw.Add(ev.Name); addErr != nil {
						logger.Warn("Could not watch new directory.", "path", ev.Name, "error", addErr)
					}
				}
			}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			select {
			case w.ticks <- struct{}{}:
			default:
				// A tick is already pending; this burst folds into it.
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error.", "error", err)
		}
	}
}
