// Package pkginfo reads the source package's manifest and renders the
// module-format markers that build tasks write into artifact subdirectories.
package pkginfo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ManifestName is the well-known name of an npm package manifest.
const ManifestName = "package.json"

// Format identifies a JavaScript module format.
type Format string

const (
	// FormatNone means the artifact subdirectory needs no marker.
	FormatNone Format = ""
	// FormatModule marks a subdirectory as ECMAScript modules.
	FormatModule Format = "module"
	// FormatCommonJS marks a subdirectory as CommonJS modules.
	FormatCommonJS Format = "commonjs"
)

// ParseFormat validates a user-supplied module format string.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatNone, FormatModule, FormatCommonJS:
		return Format(s), nil
	default:
		return FormatNone, fmt.Errorf("invalid module format %q: must be %q or %q", s, FormatModule, FormatCommonJS)
	}
}

// Package is the identity of the source package being built.
type Package struct {
	Name    string
	Version string
}

// Read loads the package manifest from dir. A package without a name cannot
// be published, so a missing name is an error; a missing version is tolerated
// (pre-release source trees sometimes omit it).
func Read(dir string) (*Package, error) {
	path := filepath.Join(dir, ManifestName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading package manifest: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("package manifest %s is not valid JSON", path)
	}

	name := gjson.GetBytes(data, "name").String()
	if name == "" {
		return nil, fmt.Errorf("package manifest %s has no name", path)
	}
	return &Package{
		Name:    name,
		Version: gjson.GetBytes(data, "version").String(),
	}, nil
}

// Marker renders the minimal package descriptor for an artifact subdirectory,
// e.g. {"type":"commonjs"}. Only the two real module formats have markers.
func Marker(f Format) ([]byte, error) {
	if f != FormatModule && f != FormatCommonJS {
		return nil, errors.New("no marker for empty module format")
	}
	out, err := sjson.SetBytes([]byte("{}"), "type", string(f))
	if err != nil {
		return nil, fmt.Errorf("rendering %s marker: %w", f, err)
	}
	return append(out, '\n'), nil
}
