package venv

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/shun-okamoto/pybundle/internal/model"
)

// defaultCandidates are the virtual environment directory names probed
// in the project root, in preference order.
var defaultCandidates = []string{".venv", "venv"}

// scriptsDirName returns the name of the directory inside a virtual
// environment that holds the interpreter and activation scripts.
// Windows venvs use Scripts/, everything else uses bin/.
func scriptsDirName() string {
	if runtime.GOOS == "windows" {
		return "Scripts"
	}
	return "bin"
}

// activationScriptName returns the activation script file name for the
// current platform. Its presence is what marks a directory as a usable
// virtual environment — the same check the original launcher performed.
func activationScriptName() string {
	if runtime.GOOS == "windows" {
		return "activate.bat"
	}
	return "activate"
}

// interpreterCandidates returns interpreter executable names inside the
// venv scripts directory, in preference order.
func interpreterCandidates() []string {
	if runtime.GOOS == "windows" {
		return []string{"python.exe"}
	}
	return []string{"python", "python3"}
}

// systemCandidates returns interpreter names probed on PATH when no
// virtual environment is available.
func systemCandidates() []string {
	if runtime.GOOS == "windows" {
		return []string{"python.exe", "python3.exe", "py.exe"}
	}
	return []string{"python3", "python"}
}

// Detect probes a single directory for a virtual environment.
//
// The check is pure: it only stats the activation script and interpreter,
// creating or modifying nothing. Returns the resolved Runtime and true
// when the directory holds a usable venv, or nil and false otherwise.
func Detect(venvDir string) (*model.Runtime, bool) {
	abs, err := filepath.Abs(venvDir)
	if err != nil {
		return nil, false
	}

	scripts := filepath.Join(abs, scriptsDirName())

	// The activation script's existence alone gates venv selection,
	// matching the original launcher's contract.
	if _, err := os.Stat(filepath.Join(scripts, activationScriptName())); err != nil {
		return nil, false
	}

	for _, name := range interpreterCandidates() {
		python := filepath.Join(scripts, name)
		if _, err := os.Stat(python); err == nil {
			return &model.Runtime{
				Kind:    model.RuntimeVenv,
				Python:  python,
				VenvDir: abs,
				Env:     activationEnv(abs, scripts),
			}, true
		}
	}

	// Activation script without an interpreter — a broken venv. Treat it
	// as absent and let the caller fall back to the system runtime.
	return nil, false
}

// ResolveVenv probes the project root for a virtual environment.
// When override is non-empty only that directory is considered;
// otherwise the standard candidate list (.venv, venv) is walked.
func ResolveVenv(projectDir, override string) (*model.Runtime, bool) {
	if override != "" {
		dir := override
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(projectDir, dir)
		}
		return Detect(dir)
	}

	for _, name := range defaultCandidates {
		if rt, ok := Detect(filepath.Join(projectDir, name)); ok {
			return rt, true
		}
	}
	return nil, false
}

// ResolveSystem finds a Python interpreter on the ambient PATH.
// Returns a model.CLIError with ExitPythonNotFound when none exists.
func ResolveSystem() (*model.Runtime, error) {
	for _, name := range systemCandidates() {
		if path, err := exec.LookPath(name); err == nil {
			return &model.Runtime{Kind: model.RuntimeSystem, Python: path}, nil
		}
	}
	return nil, model.NewCLIError(model.ExitPythonNotFound,
		fmt.Sprintf("no Python interpreter found on PATH (tried %s)",
			strings.Join(systemCandidates(), ", ")))
}

// Resolve computes the runtime for a build, in priority order:
//
//  1. pythonOverride (the PYBUNDLE_PYTHON escape hatch) — used as-is.
//  2. A project-local virtual environment (venvOverride or .venv/venv).
//  3. The system interpreter from PATH.
//
// The boolean reports whether a virtual environment was used, which the
// launcher turns into its "activated" confirmation vs. the
// "using system runtime" warning.
func Resolve(projectDir, venvOverride, pythonOverride string) (*model.Runtime, bool, error) {
	if pythonOverride != "" {
		return &model.Runtime{Kind: model.RuntimeExplicit, Python: pythonOverride}, false, nil
	}

	if rt, ok := ResolveVenv(projectDir, venvOverride); ok {
		return rt, true, nil
	}

	rt, err := ResolveSystem()
	if err != nil {
		return nil, false, err
	}
	return rt, false, nil
}

// activationEnv builds the environment overrides an activation script
// would have applied: VIRTUAL_ENV set, the venv scripts directory
// prepended to PATH, and PYTHONHOME cleared so the venv interpreter
// does not pick up a conflicting installation.
func activationEnv(venvDir, scriptsDir string) []string {
	path := scriptsDir
	if ambient := os.Getenv("PATH"); ambient != "" {
		path = scriptsDir + string(os.PathListSeparator) + ambient
	}
	return []string{
		"VIRTUAL_ENV=" + venvDir,
		"PATH=" + path,
		"PYTHONHOME=",
	}
}
