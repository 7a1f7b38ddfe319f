package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/shun-okamoto/pybundle/internal/model"
)

// Standard manifest file names, searched in the project root in this order.
// The dotted variant is a convenience for projects that prefer hidden
// tool configuration files.
var candidateNames = []string{
	"pybundle.jsonc",
	".pybundle.jsonc",
}

// Default values applied to fields the manifest leaves empty.
// The entry default matches the conventional top-level script of the
// applications this tool packages.
const (
	DefaultEntry       = "app.py"
	DefaultDistDir     = "dist"
	DefaultWorkDir     = "build"
	DefaultDockerImage = "python:3.11-slim"
	DefaultSpecName    = "app.spec"
)

// Manifest is the parsed packaging configuration for one project.
//
// Fields mirror what ends up in the generated PyInstaller spec file.
// Only the fields pybundle acts on are modeled; unknown JSON fields are
// silently ignored during parsing.
type Manifest struct {
	// Name is the application name, used for the produced executable
	// and for the banner. Defaults to the project directory name.
	Name string `json:"name"`

	// Version is an optional application version recorded in the
	// build-info report.
	Version string `json:"version,omitempty"`

	// Entry is the top-level Python script handed to PyInstaller.
	// Defaults to "app.py".
	Entry string `json:"entry,omitempty"`

	// Icon is an optional path to an icon file embedded in the executable.
	Icon string `json:"icon,omitempty"`

	// Console controls whether the produced executable opens a console
	// window. GUI applications want this off, which is the default.
	Console bool `json:"console,omitempty"`

	// Onefile bundles everything into a single executable. Defaults to true.
	// Modeled as a pointer so an explicit false survives defaulting.
	Onefile *bool `json:"onefile,omitempty"`

	// UPX enables UPX compression of the bundle. Defaults to true.
	UPX *bool `json:"upx,omitempty"`

	// Datas lists src→dst data mappings bundled into the executable.
	Datas []model.DataEntry `json:"datas,omitempty"`

	// HiddenImports lists modules PyInstaller cannot discover statically.
	HiddenImports []string `json:"hiddenImports,omitempty"`

	// Excludes lists modules to leave out of the bundle.
	Excludes []string `json:"excludes,omitempty"`

	// Venv overrides the virtual environment directory name probed in
	// the project root. Empty means the standard probe list (.venv, venv).
	Venv string `json:"venv,omitempty"`

	// DistDir is where PyInstaller places the finished bundle.
	DistDir string `json:"distDir,omitempty"`

	// WorkDir is PyInstaller's intermediate build directory.
	WorkDir string `json:"workDir,omitempty"`

	// DockerImage is the image used for containerized builds.
	DockerImage string `json:"dockerImage,omitempty"`

	// Path is the absolute path the manifest was loaded from.
	// Empty when the manifest is entirely synthesized from defaults.
	// Not part of the JSON surface.
	Path string `json:"-"`
}

// OnefileEnabled returns the effective onefile setting.
func (m *Manifest) OnefileEnabled() bool {
	return m.Onefile == nil || *m.Onefile
}

// UPXEnabled returns the effective UPX setting.
func (m *Manifest) UPXEnabled() bool {
	return m.UPX == nil || *m.UPX
}

// SpecPath returns the path of the generated PyInstaller spec file for
// a project rooted at projectDir.
func (m *Manifest) SpecPath(projectDir string) string {
	return filepath.Join(projectDir, DefaultSpecName)
}

// Find searches for the manifest in the standard locations within a
// project directory and returns the absolute path of the first match.
//
// Returns os.ErrNotExist (wrapped) when no candidate exists; callers
// decide whether that is fatal. For the build command it is not — a
// missing manifest means pure defaults.
func Find(projectDir string) (string, error) {
	for _, name := range candidateNames {
		path := filepath.Join(projectDir, name)
		// os.Stat checks existence without reading contents, which is all
		// the search needs.
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no manifest found in %s (searched %s): %w",
		projectDir, strings.Join(candidateNames, ", "), os.ErrNotExist)
}

// Load reads a manifest file, strips JSONC comments, parses it, applies
// defaults relative to projectDir, and validates the result.
//
// Returns a model.CLIError with ExitManifestError when the file exists
// but cannot be read or parsed.
func Load(path, projectDir string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitManifestError,
			fmt.Sprintf("failed to read manifest %s", path), err)
	}

	// Strip JSONC comments (// and /* */) and trailing commas before
	// parsing. Hand-maintained manifests frequently carry comments.
	clean := jsonc.ToJSON(data)

	var m Manifest
	if err := json.Unmarshal(clean, &m); err != nil {
		return nil, model.WrapCLIError(model.ExitManifestError,
			fmt.Sprintf("failed to parse manifest %s", path), err)
	}

	m.Path = path
	m.applyDefaults(projectDir)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadOrDefault loads the manifest found in projectDir, or synthesizes a
// pure-defaults manifest when none exists. Only read/parse/validation
// failures of an existing file are errors.
func LoadOrDefault(projectDir string) (*Manifest, error) {
	path, err := Find(projectDir)
	if err != nil {
		m := &Manifest{}
		m.applyDefaults(projectDir)
		if err := m.Validate(); err != nil {
			return nil, err
		}
		return m, nil
	}
	return Load(path, projectDir)
}

// applyDefaults fills empty fields with their documented defaults.
// The application name falls back to the project directory's base name.
func (m *Manifest) applyDefaults(projectDir string) {
	if m.Name == "" {
		abs, err := filepath.Abs(projectDir)
		if err == nil {
			m.Name = filepath.Base(abs)
		}
	}
	if m.Entry == "" {
		m.Entry = DefaultEntry
	}
	if m.DistDir == "" {
		m.DistDir = DefaultDistDir
	}
	if m.WorkDir == "" {
		m.WorkDir = DefaultWorkDir
	}
	if m.DockerImage == "" {
		m.DockerImage = DefaultDockerImage
	}
}

// Validate checks the manifest for values the build cannot work with.
// Returns a model.CLIError with ExitManifestError on the first problem.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return model.NewCLIError(model.ExitManifestError, "manifest: name must not be empty")
	}
	if !strings.HasSuffix(m.Entry, ".py") {
		return model.NewCLIError(model.ExitManifestError,
			fmt.Sprintf("manifest: entry %q must be a .py script", m.Entry))
	}
	for i := range m.Datas {
		if err := m.Datas[i].Validate(); err != nil {
			return model.WrapCLIError(model.ExitManifestError, "manifest: invalid data entry", err)
		}
	}
	return nil
}

// Starter is the manifest template written by `pybundle init`.
// It documents every field inline so the generated file is self-describing,
// the same way the original packaging script embedded a commented spec.
const Starter = `{
  // Application name — becomes the executable name under dist/.
  "name": "LLM Translation Tool",

  // Top-level script handed to PyInstaller.
  "entry": "app.py",

  // Open a console window? GUI applications leave this false.
  "console": false,

  // Bundle everything into a single executable.
  "onefile": true,

  // Compress the bundle with UPX when available.
  "upx": true,

  // Extra data bundled into the executable (src → dst).
  "datas": [
    { "src": "config", "dst": "config" }
  ],

  // Modules PyInstaller cannot discover statically.
  "hiddenImports": [
    "PyQt5.QtCore",
    "PyQt5.QtGui",
    "PyQt5.QtWidgets",
    "openai",
    "requests"
  ]
}
`

// WriteStarter writes the starter manifest into projectDir.
// Refuses to overwrite an existing manifest unless force is set.
func WriteStarter(projectDir string, force bool) (string, error) {
	path := filepath.Join(projectDir, candidateNames[0])
	if _, err := os.Stat(path); err == nil && !force {
		return "", model.NewCLIError(model.ExitManifestError,
			fmt.Sprintf("manifest already exists at %s (use --force to overwrite)", path))
	}
	if err := os.WriteFile(path, []byte(Starter), 0o644); err != nil {
		return "", model.WrapCLIError(model.ExitGeneralError, "failed to write manifest", err)
	}
	return path, nil
}
