// Package docker runs containerized packaging builds.
//
// When a build is invoked with --docker, the PyInstaller step runs inside
// a Python container instead of a local interpreter: the project is
// bind-mounted, the build command executes in the container, and its
// output streams onto the launcher's console. Build containers carry
// pybundle.* labels so strays left behind by interrupted runs can be
// found and removed by label filter.
//
// The package wraps the Docker Engine SDK client and handles automatic
// socket detection across platforms.
package docker
