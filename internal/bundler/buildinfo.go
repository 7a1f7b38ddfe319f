// buildinfo.go writes the build-info report that accompanies a finished
// (or failed) build. The report is YAML with a header comment, the one
// piece of state pybundle leaves behind for release tooling and humans
// to inspect.
package bundler

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shun-okamoto/pybundle/internal/manifest"
	"github.com/shun-okamoto/pybundle/internal/model"
)

// BuildInfoName is the report file name, placed in the dist directory.
const BuildInfoName = "build-info.yaml"

// BuildInfo is the serialized form of a build result.
type BuildInfo struct {
	// App is the application name.
	App string `yaml:"app"`

	// Version is the application version, if the manifest sets one.
	Version string `yaml:"version,omitempty"`

	// Outcome is succeeded, failed, or not-launched.
	Outcome string `yaml:"outcome"`

	// ExitCode is the build command's exit status.
	ExitCode int `yaml:"exitCode"`

	// Artifact is the produced executable's path, when one was found.
	Artifact string `yaml:"artifact,omitempty"`

	// Runtime describes the interpreter: kind and executable path.
	Runtime string `yaml:"runtime"`

	// InDocker reports whether the build ran in a container.
	InDocker bool `yaml:"inDocker,omitempty"`

	// StartedAt is the build start time, RFC3339.
	StartedAt string `yaml:"startedAt"`

	// DurationSeconds is the build's wall-clock duration.
	DurationSeconds float64 `yaml:"durationSeconds"`
}

// ReportPath returns where the build-info report lives for a project.
func ReportPath(projectDir string, m *manifest.Manifest) string {
	dist := m.DistDir
	if !filepath.IsAbs(dist) {
		dist = filepath.Join(projectDir, dist)
	}
	return filepath.Join(dist, BuildInfoName)
}

// WriteBuildInfo serializes the result to path, creating the dist
// directory when the build failed before PyInstaller could.
func WriteBuildInfo(path string, res *model.BuildResult) error {
	info := BuildInfo{
		App:             res.App,
		Version:         res.Version,
		Outcome:         res.Outcome.String(),
		ExitCode:        res.ExitCode,
		Artifact:        res.Artifact,
		Runtime:         fmt.Sprintf("%s:%s", res.Runtime.Kind, res.Runtime.Python),
		InDocker:        res.InDocker,
		StartedAt:       res.StartedAt.Format(time.RFC3339),
		DurationSeconds: res.Duration.Seconds(),
	}
	if res.InDocker {
		info.Runtime = "docker"
	}

	data, err := yaml.Marshal(&info)
	if err != nil {
		return fmt.Errorf("failed to serialize build info: %w", err)
	}

	// Header comment identifies the generator, since the file sits next
	// to the artifact where users will find it.
	content := append([]byte("# Generated by pybundle — summary of the last packaging run.\n"), data...)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write build info %s: %w", path, err)
	}
	return nil
}

// ReadBuildInfo loads a report back. Used by the doctor command to show
// the last build, and by tests.
func ReadBuildInfo(path string) (*BuildInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var info BuildInfo
	if err := yaml.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse build info %s: %w", path, err)
	}
	return &info, nil
}
