package docker

import (
	"bytes"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/docker/docker/pkg/stdcopy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuildCommand verifies the in-container command installs PyInstaller
// and runs it against the spec file with the standard output directories.
func TestBuildCommand(t *testing.T) {
	spec := &BuildSpec{
		Image:    "python:3.11-slim",
		SpecFile: "app.spec",
	}

	cmd := spec.buildCommand()
	assert.Contains(t, cmd, "pip install --quiet pyinstaller")
	assert.Contains(t, cmd, "python -m PyInstaller --clean")
	assert.Contains(t, cmd, "--distpath dist")
	assert.Contains(t, cmd, "--workpath build")
	assert.Contains(t, cmd, "app.spec")
}

// TestStreamLogsFlushesBeforeDone verifies the done channel closes only
// after every buffered byte — including the tail, where a failed build's
// error lines live — has been demuxed onto the output writers.
func TestStreamLogsFlushesBeforeDone(t *testing.T) {
	pr, pw := io.Pipe()
	var stdout, stderr bytes.Buffer
	done := streamLogs(pr, &stdout, &stderr)

	outw := stdcopy.NewStdWriter(pw, stdcopy.Stdout)
	errw := stdcopy.NewStdWriter(pw, stdcopy.Stderr)

	// Several frames, written one at a time like a live daemon stream.
	for i := 0; i < 50; i++ {
		_, err := outw.Write([]byte(fmt.Sprintf("collecting module %d\n", i)))
		require.NoError(t, err)
	}
	_, err := errw.Write([]byte("ERROR: hidden import not found\n"))
	require.NoError(t, err)
	require.NoError(t, pw.Close())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("log copier did not finish after the stream closed")
	}

	assert.Contains(t, stdout.String(), "collecting module 49")
	assert.Equal(t, "ERROR: hidden import not found\n", stderr.String())
}

// TestDrainLogsReturnsWhenDone verifies the drain returns immediately
// for an already-finished copier, the no-logs case included.
func TestDrainLogsReturnsWhenDone(t *testing.T) {
	start := time.Now()
	drainLogs(closedChan())
	assert.Less(t, time.Since(start), time.Second)
}
