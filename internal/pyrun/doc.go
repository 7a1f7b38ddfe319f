// Package pyrun executes Python subprocesses against a resolved runtime.
//
// It is the only place pybundle spawns interpreter processes. Two modes
// are provided: Capture for short probes (PyInstaller version checks),
// where stdout is returned and stderr is folded into the error, and
// Stream for the build itself, where the child inherits the launcher's
// console so its output is visible to the user as it happens.
//
// Every invocation takes a context.Context and an explicit model.Runtime;
// the runtime's environment overrides are appended to the inherited
// environment, so activation state never leaks into the launcher process.
package pyrun
