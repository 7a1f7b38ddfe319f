// Package bundler orchestrates one packaging run.
//
// The sequence mirrors the packaging script this tool replaces: make
// sure PyInstaller is available (installing it via pip when allowed),
// clear the previous build output, regenerate the PyInstaller spec file
// from the manifest, run the build — locally against the resolved
// runtime or inside a Docker container — and record the result in a
// build-info report next to the artifact.
//
// The bundler never decides what a failure means for the process exit
// status; it reports the build command's exit code as data and leaves
// the policy to the CLI layer.
package bundler
