// Package venv resolves the Python runtime a build runs against.
//
// The original launcher sourced the virtual environment's activation
// script, mutating its own process environment before delegating to the
// build. This package replaces that with an explicit value: Resolve
// probes for a project-local virtual environment (a pure existence
// check, no side effects) and returns a model.Runtime carrying the
// interpreter path and the environment overrides an activation script
// would have applied. Subprocesses receive that runtime explicitly;
// the launcher's own environment is never touched.
package venv
