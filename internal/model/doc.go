// Package model defines the domain types and value objects for the
// pybundle CLI.
//
// This package contains pure data structures with no external dependencies.
// All entities (Runtime, BuildResult, DataEntry, etc.) are transient
// in-process representations — the only state pybundle persists is the
// build-info report written next to the produced artifact.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
