package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPauseReadsOneByte verifies the pause consumes exactly one byte of
// non-terminal input and echoes the prompt.
func TestPauseReadsOneByte(t *testing.T) {
	in := strings.NewReader("xy")
	var out bytes.Buffer

	err := Pause(in, &out, "")
	require.NoError(t, err)
	assert.Contains(t, out.String(), DefaultPrompt)

	// Exactly one byte consumed — the rest of the input is untouched.
	assert.Equal(t, 1, in.Len())
}

// TestPauseEOF verifies an exhausted input (piped invocation with no
// stdin) returns immediately instead of erroring or hanging.
func TestPauseEOF(t *testing.T) {
	var out bytes.Buffer
	err := Pause(strings.NewReader(""), &out, "")
	assert.NoError(t, err)
}

// TestPauseCtrlC verifies a Ctrl-C byte dismisses the prompt with
// ErrCancelled so callers can exit with a cancellation status.
func TestPauseCtrlC(t *testing.T) {
	var out bytes.Buffer
	err := Pause(strings.NewReader("\x03"), &out, "")
	assert.ErrorIs(t, err, ErrCancelled)
}

// TestPauseCustomPrompt verifies a caller-supplied prompt replaces the
// default.
func TestPauseCustomPrompt(t *testing.T) {
	var out bytes.Buffer
	err := Pause(strings.NewReader("\n"), &out, "hit a key")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "hit a key")
	assert.NotContains(t, out.String(), DefaultPrompt)
}

// TestSetupUTF8NonFatal verifies console setup never panics and its
// error (if any) is usable as a plain warning.
func TestSetupUTF8NonFatal(t *testing.T) {
	// On non-Windows this is a no-op; on Windows without a console the
	// call may fail, which callers log and ignore. Either way it must
	// return rather than abort.
	_ = SetupUTF8()
}
