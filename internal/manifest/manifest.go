// Package manifest reads the optional per-package build manifest, an HCL
// file that tunes run-wide settings and overrides, extends, or skips the
// built-in task definitions.
package manifest

// DefaultName is the manifest filename looked up inside the package
// directory when the caller does not name one explicitly.
const DefaultName = "build.hcl"

// File represents the top-level structure of a build manifest.
type File struct {
	Settings *Settings    `hcl:"settings,block"`
	Tasks    []*TaskBlock `hcl:"task,block"`
}

// Settings carries run-wide options. Zero values mean "not set": the command
// line and built-in defaults fill the gaps.
type Settings struct {
	// Output is the published output directory, relative to the package
	// directory unless absolute.
	Output string `hcl:"output,optional"`

	// Workers caps the scheduler pool size.
	Workers int `hcl:"workers,optional"`
}

// TaskBlock is a `task "<name>" { ... }` block. Naming a built-in task
// overrides its non-empty fields; an unknown name defines a new task; skip
// drops the task from the run entirely.
type TaskBlock struct {
	Name    string   `hcl:"name,label"`
	Subdir  string   `hcl:"subdir,optional"`
	Command []string `hcl:"command,optional"`
	Marker  string   `hcl:"marker,optional"`
	Skip    bool     `hcl:"skip,optional"`
}
