// Package cli — doctor.go implements the "pybundle doctor" command.
//
// Doctor diagnoses the build environment without changing anything:
// manifest, interpreter, PyInstaller, entry script, and Docker daemon
// reachability. Every check is reported; none is fatal. The command
// exists so "why does my build fail" has a first answer that is not
// reading interleaved PyInstaller output.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/shun-okamoto/pybundle/internal/docker"
	"github.com/shun-okamoto/pybundle/internal/manifest"
	"github.com/shun-okamoto/pybundle/internal/model"
	"github.com/shun-okamoto/pybundle/internal/pyrun"
	"github.com/shun-okamoto/pybundle/internal/venv"
)

// checkResult is one doctor finding.
type checkResult struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail"`
}

// NewDoctorCommand creates the "doctor" cobra command.
func NewDoctorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose the packaging environment",
		Long: `Check that everything a build needs is in place: the manifest parses,
a Python interpreter is available (virtual environment or system),
PyInstaller is importable, the entry script exists, and — for --docker
builds — the Docker daemon answers.

All checks are informational; doctor always exits 0.

Examples:
  pybundle doctor
  pybundle doctor --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd.Context())
		},
	}

	return cmd
}

// runDoctor executes every check and renders the findings.
func runDoctor(ctx context.Context) error {
	projectDir, err := os.Getwd()
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to get current directory", err)
	}

	var checks []checkResult

	// Manifest: found and parseable, or defaults in effect.
	m, manifestErr := manifest.LoadOrDefault(projectDir)
	switch {
	case manifestErr != nil:
		checks = append(checks, checkResult{"manifest", false, manifestErr.Error()})
		// Later checks need a manifest; continue with pure defaults.
		m = &manifest.Manifest{Name: filepath.Base(projectDir), Entry: manifest.DefaultEntry,
			DistDir: manifest.DefaultDistDir, WorkDir: manifest.DefaultWorkDir,
			DockerImage: manifest.DefaultDockerImage}
	case m.Path == "":
		checks = append(checks, checkResult{"manifest", true, "not present, defaults in effect"})
	default:
		checks = append(checks, checkResult{"manifest", true, m.Path})
	}

	// Interpreter: venv preferred, system fallback.
	runner := pyrun.NewRunner()
	rt, usedVenv, resolveErr := venv.Resolve(projectDir, m.Venv, os.Getenv("PYBUNDLE_PYTHON"))
	if resolveErr != nil {
		checks = append(checks, checkResult{"python", false, resolveErr.Error()})
	} else {
		detail := rt.Describe()
		if version, err := runner.Version(ctx, rt, projectDir); err == nil {
			detail = fmt.Sprintf("%s, %s", version, rt.Describe())
		}
		if !usedVenv && rt.Kind == model.RuntimeSystem {
			detail += " — no virtual environment found"
		}
		checks = append(checks, checkResult{"python", true, detail})

		// PyInstaller: only meaningful once an interpreter exists.
		if version, err := runner.PyInstallerVersion(ctx, rt, projectDir); err == nil {
			checks = append(checks, checkResult{"pyinstaller", true, "version " + version})
		} else {
			checks = append(checks, checkResult{"pyinstaller", false,
				"not importable (build will pip-install it unless --no-install)"})
		}
	}

	// Entry script.
	entry := filepath.Join(projectDir, m.Entry)
	if _, err := os.Stat(entry); err == nil {
		checks = append(checks, checkResult{"entry", true, entry})
	} else {
		checks = append(checks, checkResult{"entry", false, fmt.Sprintf("%s does not exist", entry)})
	}

	// Docker daemon, for --docker builds. Unreachable is a finding, not
	// a failure — local builds don't need it.
	if cli, err := docker.NewClient(); err != nil {
		checks = append(checks, checkResult{"docker", false, err.Error()})
	} else {
		if err := cli.Ping(ctx); err != nil {
			checks = append(checks, checkResult{"docker", false, err.Error()})
		} else {
			checks = append(checks, checkResult{"docker", true, "daemon reachable"})
		}
		_ = cli.Close()
	}

	printDoctorResult(checks)
	return nil
}

// printDoctorResult renders the findings as text or JSON.
func printDoctorResult(checks []checkResult) {
	if IsJSONOutput() {
		printJSON(checks)
		return
	}

	ok := color.New(color.FgGreen).Sprint("ok")
	warn := color.New(color.FgYellow).Sprint("!!")
	for _, c := range checks {
		mark := ok
		if !c.OK {
			mark = warn
		}
		fmt.Printf("  %s  %-12s %s\n", mark, c.Name, c.Detail)
	}
}
