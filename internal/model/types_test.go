package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRuntimeKindIsValid verifies that only the predefined runtime kinds
// are accepted as valid.
func TestRuntimeKindIsValid(t *testing.T) {
	assert.True(t, RuntimeVenv.IsValid())
	assert.True(t, RuntimeSystem.IsValid())
	assert.True(t, RuntimeExplicit.IsValid())
	assert.False(t, RuntimeKind("conda").IsValid())
	assert.False(t, RuntimeKind("").IsValid())
}

// TestRuntimeDescribe verifies the human-readable runtime descriptions
// used in status lines and doctor output.
func TestRuntimeDescribe(t *testing.T) {
	venv := Runtime{Kind: RuntimeVenv, Python: "/p/.venv/bin/python", VenvDir: "/p/.venv"}
	assert.Contains(t, venv.Describe(), "virtual environment")
	assert.Contains(t, venv.Describe(), "/p/.venv")
	assert.True(t, venv.IsVenv())

	sys := Runtime{Kind: RuntimeSystem, Python: "/usr/bin/python3"}
	assert.Contains(t, sys.Describe(), "system interpreter")
	assert.False(t, sys.IsVenv())

	explicit := Runtime{Kind: RuntimeExplicit, Python: "/opt/py/bin/python"}
	assert.Contains(t, explicit.Describe(), "explicit interpreter")
}

// TestParseBuildOutcome verifies parsing of outcome strings, including
// case-insensitivity and rejection of unknown values.
func TestParseBuildOutcome(t *testing.T) {
	o, err := ParseBuildOutcome("succeeded")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSucceeded, o)

	o, err = ParseBuildOutcome("FAILED")
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, o)

	o, err = ParseBuildOutcome("Not-Launched")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotLaunched, o)

	_, err = ParseBuildOutcome("exploded")
	assert.Error(t, err)
}

// TestBuildResultSucceeded verifies the success predicate follows the
// outcome field, not the exit code.
func TestBuildResultSucceeded(t *testing.T) {
	r := BuildResult{Outcome: OutcomeSucceeded, ExitCode: 0}
	assert.True(t, r.Succeeded())

	r = BuildResult{Outcome: OutcomeFailed, ExitCode: 1}
	assert.False(t, r.Succeeded())

	r = BuildResult{Outcome: OutcomeNotLaunched, ExitCode: -1}
	assert.False(t, r.Succeeded())
}

// TestDataEntryValidate verifies that both sides of a data mapping
// are required.
func TestDataEntryValidate(t *testing.T) {
	valid := DataEntry{Src: "config", Dst: "config"}
	assert.NoError(t, valid.Validate())

	missing := DataEntry{Src: "", Dst: "config"}
	assert.Error(t, missing.Validate())

	missing = DataEntry{Src: "config", Dst: ""}
	assert.Error(t, missing.Validate())
}

// TestCLIError verifies error formatting, unwrapping, and exit code
// propagation through the CLIError type.
func TestCLIError(t *testing.T) {
	plain := NewCLIError(ExitManifestError, "manifest not found")
	assert.Equal(t, "manifest not found", plain.Error())
	assert.Equal(t, ExitManifestError, plain.Code)
	assert.Nil(t, plain.Unwrap())

	inner := errors.New("permission denied")
	wrapped := WrapCLIError(ExitBuildFailed, "build failed", inner)
	assert.Equal(t, "build failed: permission denied", wrapped.Error())
	assert.Equal(t, ExitBuildFailed, wrapped.Code)

	// errors.Is must see through the wrapper to the underlying error.
	assert.True(t, errors.Is(wrapped, inner))

	// errors.As must recover the CLIError from a plain error value.
	var cliErr *CLIError
	var err error = wrapped
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, ExitBuildFailed, cliErr.Code)
}
