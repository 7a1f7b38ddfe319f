package pyrun

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/shun-okamoto/pybundle/internal/model"
)

// Runner executes the resolved Python interpreter.
//
// It is currently stateless — all methods receive the runtime and working
// directory as parameters. The struct exists as a receiver to support
// future extensions such as output logging middleware.
type Runner struct{}

// NewRunner creates a new Runner instance.
func NewRunner() *Runner {
	return &Runner{}
}

// Capture runs the interpreter with the given arguments and returns its
// stdout. On a non-zero exit, stderr is folded into the returned error
// so probes produce a single diagnosable message, the same way the git
// wrapper in comparable tools reports failures.
func (r *Runner) Capture(ctx context.Context, rt *model.Runtime, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, rt.Python, args...)
	cmd.Dir = dir
	cmd.Env = mergeEnv(rt)

	// Capture stdout and stderr separately so stderr can be included in
	// error messages while stdout is returned on success.
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		message := fmt.Sprintf("python %s failed", strings.Join(args, " "))
		if s := strings.TrimSpace(stderr.String()); s != "" {
			message = fmt.Sprintf("%s: %s", message, s)
		}
		return "", model.WrapCLIError(model.ExitGeneralError, message, err)
	}

	return stdout.String(), nil
}

// Stream runs the interpreter with the launcher's own stdio attached, so
// the child's output interleaves on the console exactly as the user sees
// it from the original launcher. It returns the child's exit code.
//
// A non-zero exit is NOT an error here — the exit code is data the caller
// decides about. The returned error is non-nil only when the process
// could not be started at all, in which case the exit code is -1.
func (r *Runner) Stream(ctx context.Context, rt *model.Runtime, dir string, args ...string) (int, error) {
	cmd := exec.CommandContext(ctx, rt.Python, args...)
	cmd.Dir = dir
	cmd.Env = mergeEnv(rt)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// The child ran and exited non-zero: report its status.
			return exitErr.ExitCode(), nil
		}
		// The child never launched (interpreter missing, permission, ...).
		return -1, model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to launch %s", rt.Python), err)
	}

	return 0, nil
}

// PyInstallerVersion probes whether PyInstaller is importable by the
// runtime and returns its version string.
func (r *Runner) PyInstallerVersion(ctx context.Context, rt *model.Runtime, dir string) (string, error) {
	out, err := r.Capture(ctx, rt, dir, "-m", "PyInstaller", "--version")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// InstallPyInstaller installs PyInstaller into the runtime via pip,
// streaming pip's output to the console so download progress is visible.
func (r *Runner) InstallPyInstaller(ctx context.Context, rt *model.Runtime, dir string) error {
	code, err := r.Stream(ctx, rt, dir, "-m", "pip", "install", "pyinstaller")
	if err != nil {
		return model.WrapCLIError(model.ExitPyInstallerMissing, "failed to run pip", err)
	}
	if code != 0 {
		return model.NewCLIError(model.ExitPyInstallerMissing,
			fmt.Sprintf("pip install pyinstaller exited with status %d", code))
	}
	return nil
}

// Version returns the interpreter's own version string (e.g. "Python 3.11.9").
func (r *Runner) Version(ctx context.Context, rt *model.Runtime, dir string) (string, error) {
	out, err := r.Capture(ctx, rt, dir, "--version")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// mergeEnv combines the inherited environment with the runtime's
// overrides. Overrides are appended last; os/exec keeps the last value
// for duplicate keys, so VIRTUAL_ENV/PATH/PYTHONHOME from the runtime
// win over their inherited counterparts.
func mergeEnv(rt *model.Runtime) []string {
	if len(rt.Env) == 0 {
		return nil // nil means inherit the parent environment unchanged
	}
	return append(os.Environ(), rt.Env...)
}
