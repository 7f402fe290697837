package task

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func namesOf(r *Registry) []string {
	var names []string
	for _, def := range r.Definitions() {
		names = append(names, def.Name)
	}
	return names
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		def     *Definition
		wantErr string
	}{
		{"missing name", &Definition{Commands: [][]string{{"true"}}}, "no name"},
		{"no commands", &Definition{Name: "esm"}, "no commands"},
		{"empty argv", &Definition{Name: "esm", Commands: [][]string{{}}}, "empty command"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := NewRegistry().Register(tc.def)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestRegisterRejectsDuplicateNames(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.Register(&Definition{Name: "esm", Commands: [][]string{{"true"}}}))
	err := r.Register(&Definition{Name: "esm", Commands: [][]string{{"false"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate task "esm"`)
}

func TestReplaceKeepsRegistrationOrder(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	for _, name := range []string{"esm", "cjs", "browser"} {
		require.NoError(t, r.Register(&Definition{Name: name, Commands: [][]string{{"true"}}}))
	}

	require.NoError(t, r.Replace(&Definition{Name: "cjs", Commands: [][]string{{"false"}}}))

	if diff := cmp.Diff([]string{"esm", "cjs", "browser"}, namesOf(r)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	def, ok := r.Lookup("cjs")
	require.True(t, ok)
	assert.Equal(t, [][]string{{"false"}}, def.Commands)
}

func TestReplaceUnknownTask(t *testing.T) {
	t.Parallel()

	err := NewRegistry().Replace(&Definition{Name: "ghost", Commands: [][]string{{"true"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown task "ghost"`)
}

func TestRemove(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	for _, name := range []string{"esm", "cjs", "browser"} {
		require.NoError(t, r.Register(&Definition{Name: name, Commands: [][]string{{"true"}}}))
	}

	require.NoError(t, r.Remove("cjs"))
	assert.Equal(t, []string{"esm", "browser"}, namesOf(r))
	_, ok := r.Lookup("cjs")
	assert.False(t, ok)

	err := r.Remove("cjs")
	require.Error(t, err)
}

func TestValidateRejectsSharedOutputDirectory(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.Register(&Definition{Name: "esm", Subdir: "out", Commands: [][]string{{"true"}}}))
	require.NoError(t, r.Register(&Definition{Name: "cjs", Subdir: "out", Commands: [][]string{{"true"}}}))

	err := r.Validate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `share output directory "out"`)
}

func TestValidateRejectsEscapingOutputDirectory(t *testing.T) {
	t.Parallel()

	for _, subdir := range []string{"..", "../evil", "a/../..", "/abs"} {
		subdir := subdir
		t.Run(subdir, func(t *testing.T) {
			t.Parallel()
			r := NewRegistry()
			require.NoError(t, r.Register(&Definition{Name: "x", Subdir: subdir, Commands: [][]string{{"true"}}}))
			err := r.Validate(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "escapes the workspace")
		})
	}
}

func TestValidateAcceptsNestedDisjointDirectories(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.Register(&Definition{Name: "esm", Commands: [][]string{{"true"}}}))
	require.NoError(t, r.Register(&Definition{Name: "docs", Subdir: "extra/docs", Commands: [][]string{{"true"}}}))
	assert.NoError(t, r.Validate(context.Background()))
}
