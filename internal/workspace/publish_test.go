package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entries(t *testing.T, dir string) []string {
	t.Helper()
	list, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range list {
		names = append(names, e.Name())
	}
	return names
}

func requireNoLeftovers(t *testing.T, output string) {
	t.Helper()
	for _, pattern := range []string{output + "-old-*", output + "-tmp-*"} {
		matches, err := filepath.Glob(pattern)
		require.NoError(t, err)
		assert.Empty(t, matches, "no scratch directories may survive a publish")
	}
}

func TestPublishFirstTime(t *testing.T) {
	t.Parallel()

	output := filepath.Join(t.TempDir(), "dist")
	ws, err := New(context.Background(), output)
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(ws, "esm"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(ws, "esm", "index.js"), []byte("new"), 0o644))

	require.NoError(t, Publish(context.Background(), ws, output))

	assert.NoDirExists(t, ws, "the workspace itself becomes the output")
	assert.FileExists(t, filepath.Join(output, "esm", "index.js"))
	requireNoLeftovers(t, output)
}

func TestPublishReplacesPreviousOutput(t *testing.T) {
	t.Parallel()

	output := filepath.Join(t.TempDir(), "dist")
	require.NoError(t, os.MkdirAll(filepath.Join(output, "stale"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(output, "stale", "old.js"), []byte("old"), 0o644))

	ws, err := New(context.Background(), output)
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(ws, "esm"), 0o755))

	require.NoError(t, Publish(context.Background(), ws, output))

	if diff := cmp.Diff([]string{"esm"}, entries(t, output)); diff != "" {
		t.Fatalf("published tree mismatch (-want +got):\n%s", diff)
	}
	requireNoLeftovers(t, output)
}

func TestPublishFailureRestoresPreviousOutput(t *testing.T) {
	t.Parallel()

	output := filepath.Join(t.TempDir(), "dist")
	require.NoError(t, os.MkdirAll(output, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(output, "keep.js"), []byte("precious"), 0o644))

	// A workspace path that does not exist makes the swap rename fail after
	// the previous output was already moved aside.
	ghost := output + "-tmp-never-created"
	err := Publish(context.Background(), ghost, output)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publishing workspace")

	data, readErr := os.ReadFile(filepath.Join(output, "keep.js"))
	require.NoError(t, readErr, "the previous output must be restored")
	assert.Equal(t, "precious", string(data))
	requireNoLeftovers(t, output)
}
