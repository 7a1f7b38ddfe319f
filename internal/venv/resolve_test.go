package venv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shun-okamoto/pybundle/internal/model"
)

// makeVenv is a test helper that lays out a minimal virtual environment
// (activation script plus interpreter) under projectDir/name, using the
// platform-appropriate layout, and returns its path.
func makeVenv(t *testing.T, projectDir, name string) string {
	t.Helper()

	venvDir := filepath.Join(projectDir, name)
	scripts := filepath.Join(venvDir, scriptsDirName())
	require.NoError(t, os.MkdirAll(scripts, 0o755))

	require.NoError(t, os.WriteFile(
		filepath.Join(scripts, activationScriptName()), []byte("# activate\n"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(scripts, interpreterCandidates()[0]), []byte("#!/bin/sh\n"), 0o755))

	return venvDir
}

// TestDetect verifies a well-formed venv is recognized and produces a
// runtime with the interpreter path and activation-equivalent env.
func TestDetect(t *testing.T) {
	dir := t.TempDir()
	venvDir := makeVenv(t, dir, ".venv")

	rt, ok := Detect(venvDir)
	require.True(t, ok, "well-formed venv should be detected")
	assert.Equal(t, model.RuntimeVenv, rt.Kind)
	assert.Equal(t, venvDir, rt.VenvDir)
	assert.Contains(t, rt.Python, scriptsDirName())

	// The env overrides must mirror what activation would have done.
	env := strings.Join(rt.Env, "\n")
	assert.Contains(t, env, "VIRTUAL_ENV="+venvDir)
	assert.Contains(t, env, "PATH="+filepath.Join(venvDir, scriptsDirName()))
	assert.Contains(t, env, "PYTHONHOME=")
}

// TestDetectMissing verifies an absent directory is simply not a venv.
func TestDetectMissing(t *testing.T) {
	_, ok := Detect(filepath.Join(t.TempDir(), ".venv"))
	assert.False(t, ok)
}

// TestDetectBrokenVenv verifies an activation script without an
// interpreter is treated as absent, not as an error.
func TestDetectBrokenVenv(t *testing.T) {
	dir := t.TempDir()
	scripts := filepath.Join(dir, ".venv", scriptsDirName())
	require.NoError(t, os.MkdirAll(scripts, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(scripts, activationScriptName()), []byte("# activate\n"), 0o755))

	_, ok := Detect(filepath.Join(dir, ".venv"))
	assert.False(t, ok)
}

// TestResolveVenvProbesCandidates verifies the standard candidate order:
// .venv is preferred, venv is the fallback.
func TestResolveVenvProbesCandidates(t *testing.T) {
	dir := t.TempDir()
	makeVenv(t, dir, "venv")

	rt, ok := ResolveVenv(dir, "")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "venv"), rt.VenvDir)

	// Once .venv exists it wins over venv.
	makeVenv(t, dir, ".venv")
	rt, ok = ResolveVenv(dir, "")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, ".venv"), rt.VenvDir)
}

// TestResolveVenvOverride verifies an explicit venv directory bypasses
// the candidate list entirely.
func TestResolveVenvOverride(t *testing.T) {
	dir := t.TempDir()
	makeVenv(t, dir, "custom-env")

	rt, ok := ResolveVenv(dir, "custom-env")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "custom-env"), rt.VenvDir)

	// With an override set, the standard candidates are not consulted.
	makeVenv(t, dir, ".venv")
	_, ok = ResolveVenv(dir, "missing-env")
	assert.False(t, ok)
}

// TestResolvePythonOverride verifies the PYBUNDLE_PYTHON escape hatch
// short-circuits both venv probing and PATH lookup.
func TestResolvePythonOverride(t *testing.T) {
	rt, usedVenv, err := Resolve(t.TempDir(), "", "/opt/py/bin/python")
	require.NoError(t, err)
	assert.False(t, usedVenv)
	assert.Equal(t, model.RuntimeExplicit, rt.Kind)
	assert.Equal(t, "/opt/py/bin/python", rt.Python)
}

// TestResolvePrefersVenv verifies a detected venv wins over the system
// interpreter and is reported as such.
func TestResolvePrefersVenv(t *testing.T) {
	dir := t.TempDir()
	makeVenv(t, dir, ".venv")

	rt, usedVenv, err := Resolve(dir, "", "")
	require.NoError(t, err)
	assert.True(t, usedVenv)
	assert.Equal(t, model.RuntimeVenv, rt.Kind)
}
