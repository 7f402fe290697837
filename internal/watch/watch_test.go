package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWatcher(t *testing.T, root string, skip func(string) bool) *Watcher {
	t.Helper()
	w, err := New(context.Background(), root, skip, 100*time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func expectTick(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case <-w.Ticks():
	case <-time.After(5 * time.Second):
		t.Fatal("expected a rebuild tick")
	}
}

func expectQuiet(t *testing.T, w *Watcher, d time.Duration) {
	t.Helper()
	select {
	case <-w.Ticks():
		t.Fatal("expected no rebuild tick")
	case <-time.After(d):
	}
}

func TestTickAfterChange(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	w := newWatcher(t, root, nil)

	require.NoError(t, os.WriteFile(filepath.Join(root, "index.ts"), []byte("export {}"), 0o644))
	expectTick(t, w)
}

func TestBurstCoalescesIntoOneTick(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	w := newWatcher(t, root, nil)

	for i := 0; i < 5; i++ {
		name := filepath.Join(root, "file"+string(rune('a'+i))+".ts")
		require.NoError(t, os.WriteFile(name, []byte("x"), 0o644))
	}

	expectTick(t, w)
	expectQuiet(t, w, 300*time.Millisecond)
}

func TestSkippedPathsDoNotTick(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	w := newWatcher(t, root, func(path string) bool {
		return strings.HasPrefix(filepath.Base(path), "dist")
	})

	require.NoError(t, os.WriteFile(filepath.Join(root, "dist-artifact.js"), []byte("x"), 0o644))
	expectQuiet(t, w, 300*time.Millisecond)
}

func TestPrunedSubtreesAreNotWatched(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	deps := filepath.Join(root, "node_modules")
	require.NoError(t, os.MkdirAll(filepath.Join(deps, "pkg"), 0o755))

	w := newWatcher(t, root, func(path string) bool {
		return strings.Contains(path, "node_modules")
	})

	require.NoError(t, os.WriteFile(filepath.Join(deps, "pkg", "index.js"), []byte("x"), 0o644))
	expectQuiet(t, w, 300*time.Millisecond)
}

func TestNewDirectoriesAreAutoWatched(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	w := newWatcher(t, root, nil)

	sub := filepath.Join(root, "src")
	require.NoError(t, os.Mkdir(sub, 0o755))
	// The mkdir itself is a change.
	expectTick(t, w)

	// Give the loop a moment to register the new directory.
	time.Sleep(200 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(sub, "new.ts"), []byte("x"), 0o644))
	expectTick(t, w)
}

func TestCloseStopsTicks(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	w, err := New(context.Background(), root, nil, 50*time.Millisecond)
	require.NoError(t, err)

	require.NoError(t, w.Close())

	_, open := <-w.Ticks()
	assert.False(t, open, "the tick channel closes with the watcher")
}

func TestNewMissingRoot(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), filepath.Join(t.TempDir(), "ghost"), nil, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "walking watch root")
}
