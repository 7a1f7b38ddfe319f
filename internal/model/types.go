// Package model defines the domain types for the pybundle CLI.
//
// All entities in this package represent the data passed between the
// CLI layer and the packaging components. They are reconstructed fresh
// on every invocation — pybundle keeps no state between runs beyond the
// build-info report it writes into the dist directory.
package model

import (
	"fmt"
	"strings"
	"time"
)

// RuntimeKind says where the Python interpreter driving the build comes from.
// The launcher resolves the interpreter exactly once, up front, and every
// later step receives the resolved Runtime explicitly. Nothing in pybundle
// mutates the launcher's own process environment.
type RuntimeKind string

const (
	// RuntimeVenv indicates the interpreter belongs to a project-local
	// virtual environment (e.g. ./.venv).
	RuntimeVenv RuntimeKind = "venv"

	// RuntimeSystem indicates the interpreter was found on the ambient
	// PATH because no virtual environment was present.
	RuntimeSystem RuntimeKind = "system"

	// RuntimeExplicit indicates the interpreter path was forced via the
	// PYBUNDLE_PYTHON override and used as-is.
	RuntimeExplicit RuntimeKind = "explicit"
)

// String returns the string representation of RuntimeKind.
func (k RuntimeKind) String() string {
	return string(k)
}

// IsValid checks whether the RuntimeKind value is one of the
// predefined valid kinds.
func (k RuntimeKind) IsValid() bool {
	switch k {
	case RuntimeVenv, RuntimeSystem, RuntimeExplicit:
		return true
	default:
		return false
	}
}

// Runtime is the resolved Python runtime a build runs against.
//
// It replaces the original launcher's "activate the venv into the current
// process" step with an explicit value: the interpreter path plus the
// environment overrides an activation script would have applied. The
// overrides are handed to each child process instead of being installed
// into the launcher's own environment.
type Runtime struct {
	// Kind records how the interpreter was selected.
	Kind RuntimeKind `json:"kind"`

	// Python is the absolute path to the interpreter executable.
	Python string `json:"python"`

	// VenvDir is the absolute path to the virtual environment root.
	// Empty when Kind is not RuntimeVenv.
	VenvDir string `json:"venvDir,omitempty"`

	// Env holds the environment overrides (KEY=VALUE) applied to every
	// subprocess run against this runtime: VIRTUAL_ENV, a PATH with the
	// venv's script directory prepended, and PYTHONHOME cleared. Empty
	// for system and explicit runtimes.
	Env []string `json:"env,omitempty"`
}

// IsVenv reports whether the runtime points into a virtual environment.
func (r *Runtime) IsVenv() bool {
	return r.Kind == RuntimeVenv
}

// Describe returns a short human-readable description of the runtime
// for status lines and the doctor command.
func (r *Runtime) Describe() string {
	switch r.Kind {
	case RuntimeVenv:
		return fmt.Sprintf("virtual environment (%s)", r.VenvDir)
	case RuntimeExplicit:
		return fmt.Sprintf("explicit interpreter (%s)", r.Python)
	default:
		return fmt.Sprintf("system interpreter (%s)", r.Python)
	}
}

// BuildOutcome is the terminal state of a packaging run.
type BuildOutcome string

const (
	// OutcomeSucceeded means PyInstaller exited 0 and an artifact was found.
	OutcomeSucceeded BuildOutcome = "succeeded"

	// OutcomeFailed means the build command ran but exited non-zero.
	OutcomeFailed BuildOutcome = "failed"

	// OutcomeNotLaunched means the build command could not be started at
	// all (interpreter missing, spawn failure). The launcher still reaches
	// its final prompt in this state.
	OutcomeNotLaunched BuildOutcome = "not-launched"
)

// String returns the string representation of BuildOutcome.
func (o BuildOutcome) String() string {
	return string(o)
}

// ParseBuildOutcome converts a string to a BuildOutcome.
// Returns an error if the string does not match any valid outcome.
func ParseBuildOutcome(s string) (BuildOutcome, error) {
	switch o := BuildOutcome(strings.ToLower(s)); o {
	case OutcomeSucceeded, OutcomeFailed, OutcomeNotLaunched:
		return o, nil
	default:
		return "", fmt.Errorf("invalid build outcome: %q (valid: succeeded, failed, not-launched)", s)
	}
}

// BuildResult summarizes one packaging run. It is produced by the bundler,
// rendered by the CLI (text or JSON), and serialized into the build-info
// report next to the artifact.
type BuildResult struct {
	// App is the application name from the manifest.
	App string `json:"app"`

	// Version is the application version from the manifest, if set.
	Version string `json:"version,omitempty"`

	// Outcome is the terminal state of the run.
	Outcome BuildOutcome `json:"outcome"`

	// ExitCode is the build command's own exit status. Zero on success,
	// -1 when the command never launched.
	ExitCode int `json:"exitCode"`

	// Artifact is the absolute path to the produced executable.
	// Empty unless Outcome is OutcomeSucceeded.
	Artifact string `json:"artifact,omitempty"`

	// SpecFile is the path to the generated PyInstaller spec file.
	SpecFile string `json:"specFile,omitempty"`

	// Runtime describes the interpreter the build ran against.
	Runtime Runtime `json:"runtime"`

	// InDocker reports whether the build ran inside a container.
	InDocker bool `json:"inDocker,omitempty"`

	// StartedAt is when the build command was launched.
	StartedAt time.Time `json:"startedAt"`

	// Duration is the wall-clock time the build command took.
	Duration time.Duration `json:"duration"`
}

// Succeeded reports whether the run produced a usable artifact.
func (r *BuildResult) Succeeded() bool {
	return r.Outcome == OutcomeSucceeded
}

// DataEntry is one src→dst data mapping bundled into the executable,
// mirroring a single tuple in a PyInstaller spec file's datas list.
type DataEntry struct {
	// Src is the file or directory to bundle, relative to the project root.
	Src string `json:"src"`

	// Dst is the destination path inside the bundle.
	Dst string `json:"dst"`
}

// Validate checks that both sides of the mapping are present.
func (d *DataEntry) Validate() error {
	if d.Src == "" {
		return fmt.Errorf("data entry: src must not be empty")
	}
	if d.Dst == "" {
		return fmt.Errorf("data entry: dst must not be empty")
	}
	return nil
}

// String returns the mapping in "src → dst" form for display.
func (d *DataEntry) String() string {
	return fmt.Sprintf("%s → %s", d.Src, d.Dst)
}

// ExitCode defines the CLI exit codes. These codes let scripts and CI
// systems programmatically determine the outcome of a command.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitManifestError indicates the packaging manifest could not be
	// read or failed validation.
	ExitManifestError ExitCode = 2

	// ExitPythonNotFound indicates no usable Python interpreter was found
	// (no virtual environment and nothing on PATH).
	ExitPythonNotFound ExitCode = 3

	// ExitPyInstallerMissing indicates PyInstaller is not importable and
	// could not (or was not allowed to) be installed.
	ExitPyInstallerMissing ExitCode = 4

	// ExitBuildFailed indicates the packaging command itself exited with
	// a non-zero status.
	ExitBuildFailed ExitCode = 5

	// ExitDockerNotRunning indicates the Docker daemon is not accessible
	// and a containerized build was requested.
	ExitDockerNotRunning ExitCode = 6

	// ExitUserCancelled indicates the user dismissed the final key-press
	// prompt with Ctrl-C instead of an ordinary key.
	ExitUserCancelled ExitCode = 7
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
