package pyrun

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shun-okamoto/pybundle/internal/model"
)

// testRuntime returns a runtime pointing at the `go` binary. The runner
// only needs an executable to spawn; go is guaranteed present wherever
// these tests run, the way comparable tools' test suites lean on git.
func testRuntime(t *testing.T) *model.Runtime {
	t.Helper()

	path, err := exec.LookPath("go")
	require.NoError(t, err, "go binary must be on PATH for runner tests")
	return &model.Runtime{Kind: model.RuntimeExplicit, Python: path}
}

// TestCaptureReturnsStdout verifies Capture returns the child's stdout
// on a zero exit.
func TestCaptureReturnsStdout(t *testing.T) {
	r := NewRunner()
	out, err := r.Capture(context.Background(), testRuntime(t), t.TempDir(), "env", "GOOS")
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(out))
}

// TestCaptureFoldsStderrIntoError verifies a failing probe produces a
// single CLIError whose message carries the child's stderr.
func TestCaptureFoldsStderrIntoError(t *testing.T) {
	r := NewRunner()
	_, err := r.Capture(context.Background(), testRuntime(t), t.TempDir(), "definitely-not-a-subcommand")
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Contains(t, cliErr.Message, "failed")
}

// TestStreamExitCode verifies Stream reports the child's exit status as
// data, not as an error.
func TestStreamExitCode(t *testing.T) {
	r := NewRunner()

	code, err := r.Stream(context.Background(), testRuntime(t), t.TempDir(), "env", "GOOS")
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	code, err = r.Stream(context.Background(), testRuntime(t), t.TempDir(), "definitely-not-a-subcommand")
	require.NoError(t, err, "a non-zero exit is not a launch failure")
	assert.NotEqual(t, 0, code)
}

// TestStreamLaunchFailure verifies a missing interpreter yields -1 and
// an error, which the launcher maps to the not-launched outcome.
func TestStreamLaunchFailure(t *testing.T) {
	r := NewRunner()
	rt := &model.Runtime{Kind: model.RuntimeExplicit, Python: filepath.Join(t.TempDir(), "missing-python")}

	code, err := r.Stream(context.Background(), rt, t.TempDir())
	assert.Equal(t, -1, code)
	assert.Error(t, err)
}

// TestMergeEnv verifies runtime overrides are appended after the
// inherited environment so they win for duplicate keys, and that an
// override-free runtime inherits unchanged.
func TestMergeEnv(t *testing.T) {
	plain := &model.Runtime{Kind: model.RuntimeSystem, Python: "python3"}
	assert.Nil(t, mergeEnv(plain))

	rt := &model.Runtime{
		Kind:    model.RuntimeVenv,
		Python:  "/p/.venv/bin/python",
		VenvDir: "/p/.venv",
		Env:     []string{"VIRTUAL_ENV=/p/.venv", "PYTHONHOME="},
	}
	merged := mergeEnv(rt)
	require.NotEmpty(t, merged)
	assert.Equal(t, "PYTHONHOME=", merged[len(merged)-1])
	assert.Equal(t, "VIRTUAL_ENV=/p/.venv", merged[len(merged)-2])
}
