// Package manifest handles loading and analysis of pybundle.jsonc files.
//
// The manifest format supports JSONC (JSON with Comments), so this package
// uses github.com/tidwall/jsonc to strip comments before parsing with the
// standard encoding/json library.
//
// Key responsibilities:
//   - Locate the manifest in its standard paths (pybundle.jsonc, .pybundle.jsonc)
//   - Load and parse it (with JSONC support) and apply defaults
//   - Validate the resulting configuration
//   - Generate the PyInstaller spec file the build command consumes
package manifest
