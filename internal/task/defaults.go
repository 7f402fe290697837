package task

import (
	"fmt"

	"github.com/get-convex/convex-backend/internal/pkginfo"
)

// Defaults returns the fixed registry of artifact variants the orchestrator
// builds when the package carries no manifest: runtime bundles for node and
// browser targets, type declarations in both module formats (public and
// internal entry points), the standalone CLI bundle, and the script-tag
// bundles.
func Defaults() *Registry {
	r := NewRegistry()
	for _, def := range []*Definition{
		{
			Name:     "esm",
			Marker:   pkginfo.FormatModule,
			Commands: [][]string{{"node", "scripts/bundle.mjs", "--target", "esm", "--out", DestToken}},
		},
		{
			Name:     "cjs",
			Marker:   pkginfo.FormatCommonJS,
			Commands: [][]string{{"node", "scripts/bundle.mjs", "--target", "cjs", "--out", DestToken}},
		},
		{
			Name:     "browser",
			Commands: [][]string{{"node", "scripts/bundle.mjs", "--target", "browser", "--out", DestToken}},
		},
		{
			Name:     "esm-types",
			Commands: [][]string{{"npx", "tsc", "-p", "tsconfig.types.json", "--outDir", DestToken}},
		},
		{
			Name:     "cjs-types",
			Marker:   pkginfo.FormatCommonJS,
			Commands: [][]string{{"npx", "tsc", "-p", "tsconfig.types-cjs.json", "--outDir", DestToken}},
		},
		{
			Name:     "internal-esm-types",
			Commands: [][]string{{"npx", "tsc", "-p", "tsconfig.internal-types.json", "--outDir", DestToken}},
		},
		{
			Name:     "internal-cjs-types",
			Marker:   pkginfo.FormatCommonJS,
			Commands: [][]string{{"npx", "tsc", "-p", "tsconfig.internal-types-cjs.json", "--outDir", DestToken}},
		},
		{
			Name:     "cli",
			Marker:   pkginfo.FormatCommonJS,
			Commands: [][]string{{"node", "scripts/bundle-cli.mjs", "--out", DestToken}},
		},
		{
			Name:     "browser-script-tag",
			Commands: [][]string{{"node", "scripts/build-script-tag.mjs", "--entry", "browser", "--out", DestToken}},
		},
		{
			Name:     "react-script-tag",
			Commands: [][]string{{"node", "scripts/build-script-tag.mjs", "--entry", "react", "--out", DestToken}},
		},
	} {
		if err := r.Register(def); err != nil {
			// The default list is fixed at compile time, so a bad entry is a
			// programmer error.
			panic(fmt.Sprintf("registering default task: %v", err))
		}
	}
	return r
}
