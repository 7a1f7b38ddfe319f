package bundler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/shun-okamoto/pybundle/internal/docker"
	"github.com/shun-okamoto/pybundle/internal/manifest"
	"github.com/shun-okamoto/pybundle/internal/model"
	"github.com/shun-okamoto/pybundle/internal/pyrun"
)

// Options configures one packaging run.
type Options struct {
	// ProjectDir is the absolute project root.
	ProjectDir string

	// Manifest is the loaded (and defaulted) packaging configuration.
	Manifest *manifest.Manifest

	// Runtime is the resolved interpreter for local builds.
	// Ignored when Docker is set.
	Runtime *model.Runtime

	// Clean removes stale build and dist trees before building.
	Clean bool

	// Install allows `pip install pyinstaller` when the probe fails.
	Install bool

	// Docker runs the PyInstaller step inside a container.
	Docker bool

	// DockerImage overrides the manifest's image for containerized builds.
	DockerImage string
}

// Bundler runs packaging builds. The log function receives verbose
// progress lines; the CLI wires its --verbose logger in here.
type Bundler struct {
	runner *pyrun.Runner
	logf   func(format string, args ...interface{})
}

// New creates a Bundler. A nil logf disables verbose logging.
func New(logf func(format string, args ...interface{})) *Bundler {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	return &Bundler{runner: pyrun.NewRunner(), logf: logf}
}

// Run executes one packaging build.
//
// The returned BuildResult is always non-nil and always describes what
// happened, even when err is also non-nil — the launcher shows the
// summary and its final prompt in every case, then decides the process
// exit status from the error.
func (b *Bundler) Run(ctx context.Context, opts Options) (*model.BuildResult, error) {
	m := opts.Manifest
	res := &model.BuildResult{
		App:       m.Name,
		Version:   m.Version,
		Outcome:   model.OutcomeNotLaunched,
		ExitCode:  -1,
		InDocker:  opts.Docker,
		StartedAt: time.Now().UTC(),
	}
	if opts.Runtime != nil {
		res.Runtime = *opts.Runtime
	}

	if opts.Clean {
		removed, err := CleanArtifacts(opts.ProjectDir, m, false)
		if err != nil {
			return res, model.WrapCLIError(model.ExitGeneralError, "failed to clean previous build output", err)
		}
		for _, path := range removed {
			b.logf("Removed stale %s", path)
		}
	}

	specPath := m.SpecPath(opts.ProjectDir)
	if err := manifest.WriteSpec(m, specPath); err != nil {
		return res, model.WrapCLIError(model.ExitGeneralError, "failed to write PyInstaller spec file", err)
	}
	res.SpecFile = specPath
	b.logf("Spec file written to %s", specPath)

	var (
		code int
		err  error
	)
	if opts.Docker {
		code, err = b.runDocker(ctx, opts, specPath)
	} else {
		code, err = b.runLocal(ctx, opts, specPath)
	}
	res.Duration = time.Since(res.StartedAt)
	res.ExitCode = code

	if err != nil {
		// The build never ran to completion under its own power.
		return res, err
	}

	if code != 0 {
		res.Outcome = model.OutcomeFailed
		b.writeReport(opts.ProjectDir, m, res)
		return res, model.NewCLIError(model.ExitBuildFailed,
			fmt.Sprintf("packaging command exited with status %d", code))
	}

	res.Outcome = model.OutcomeSucceeded
	if artifact, ok := LocateArtifact(opts.ProjectDir, m); ok {
		res.Artifact = artifact
	}
	b.writeReport(opts.ProjectDir, m, res)
	return res, nil
}

// runLocal drives PyInstaller through the resolved interpreter.
func (b *Bundler) runLocal(ctx context.Context, opts Options, specPath string) (int, error) {
	if opts.Runtime == nil {
		return -1, model.NewCLIError(model.ExitPythonNotFound, "no Python runtime resolved for a local build")
	}

	if err := b.ensurePyInstaller(ctx, opts); err != nil {
		return -1, err
	}

	args := []string{
		"-m", "PyInstaller",
		"--clean",
		"--distpath", opts.Manifest.DistDir,
		"--workpath", opts.Manifest.WorkDir,
		specPath,
	}
	b.logf("Running %s %v", opts.Runtime.Python, args)
	return b.runner.Stream(ctx, opts.Runtime, opts.ProjectDir, args...)
}

// runDocker drives PyInstaller inside a build container.
func (b *Bundler) runDocker(ctx context.Context, opts Options, specPath string) (int, error) {
	image := opts.DockerImage
	if image == "" {
		image = opts.Manifest.DockerImage
	}

	cli, err := docker.NewClient()
	if err != nil {
		return -1, err
	}
	defer func() { _ = cli.Close() }()

	if err := cli.Ping(ctx); err != nil {
		return -1, err
	}

	b.logf("Building inside %s", image)
	return docker.RunBuild(ctx, cli, &docker.BuildSpec{
		Image:      image,
		ProjectDir: opts.ProjectDir,
		SpecFile:   filepath.Base(specPath),
		App:        opts.Manifest.Name,
	})
}

// ensurePyInstaller probes for PyInstaller and installs it via pip when
// the probe fails and installing is allowed. The same check-then-install
// sequence the original packaging script performed.
func (b *Bundler) ensurePyInstaller(ctx context.Context, opts Options) error {
	version, err := b.runner.PyInstallerVersion(ctx, opts.Runtime, opts.ProjectDir)
	if err == nil {
		b.logf("PyInstaller %s available", version)
		return nil
	}

	if !opts.Install {
		return model.WrapCLIError(model.ExitPyInstallerMissing,
			"PyInstaller is not available and installation is disabled (--no-install)", err)
	}

	b.logf("PyInstaller not found, installing via pip")
	if err := b.runner.InstallPyInstaller(ctx, opts.Runtime, opts.ProjectDir); err != nil {
		return err
	}

	version, err = b.runner.PyInstallerVersion(ctx, opts.Runtime, opts.ProjectDir)
	if err != nil {
		return model.WrapCLIError(model.ExitPyInstallerMissing,
			"PyInstaller still not importable after installation", err)
	}
	b.logf("PyInstaller %s installed", version)
	return nil
}

// writeReport persists the build-info report, best-effort: a report
// failure never changes the build outcome, only a verbose line.
func (b *Bundler) writeReport(projectDir string, m *manifest.Manifest, res *model.BuildResult) {
	path := ReportPath(projectDir, m)
	if err := WriteBuildInfo(path, res); err != nil {
		b.logf("Could not write build report: %v", err)
		return
	}
	b.logf("Build report written to %s", path)
}

// LocateArtifact returns the path of the executable a successful build
// produced, probing the onefile and onedir layouts PyInstaller uses on
// the current platform.
func LocateArtifact(projectDir string, m *manifest.Manifest) (string, bool) {
	exe := m.Name
	if runtime.GOOS == "windows" {
		exe += ".exe"
	}

	dist := m.DistDir
	if !filepath.IsAbs(dist) {
		dist = filepath.Join(projectDir, dist)
	}

	candidates := []string{
		filepath.Join(dist, exe),         // onefile
		filepath.Join(dist, m.Name, exe), // onedir
	}
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// CleanArtifacts removes the build output directories and, when
// includeSpec is set, the generated spec file. Returns the paths that
// actually existed and were removed.
func CleanArtifacts(projectDir string, m *manifest.Manifest, includeSpec bool) ([]string, error) {
	targets := []string{
		filepath.Join(projectDir, m.WorkDir),
		filepath.Join(projectDir, m.DistDir),
	}
	if includeSpec {
		targets = append(targets, m.SpecPath(projectDir))
	}

	var removed []string
	for _, path := range targets {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", path, err)
		}
		removed = append(removed, path)
	}
	return removed, nil
}
