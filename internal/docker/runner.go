// runner.go implements the containerized build path: create a container
// from the configured Python image with the project bind-mounted, run
// the PyInstaller command inside it, stream its output to the console,
// wait for completion, and remove the container.
//
// The produced artifacts land in the project's dist/ directory through
// the bind mount, exactly where a local build would have put them.
package docker

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/shun-okamoto/pybundle/internal/model"
)

// workspaceMount is where the project directory is mounted inside the
// build container.
const workspaceMount = "/src"

// BuildSpec describes one containerized build invocation.
type BuildSpec struct {
	// Image is the container image to run the build in.
	Image string

	// ProjectDir is the absolute host path bind-mounted at /src.
	ProjectDir string

	// SpecFile is the PyInstaller spec file name, relative to ProjectDir.
	SpecFile string

	// App is the application name, recorded in the container labels.
	App string

	// Pull forces an image pull before the build.
	Pull bool
}

// buildCommand is the shell command executed inside the container.
// PyInstaller is installed into the container's own interpreter first;
// the image is throwaway, so there is no venv indirection inside it.
func (s *BuildSpec) buildCommand() string {
	return fmt.Sprintf(
		"pip install --quiet pyinstaller && python -m PyInstaller --clean --distpath dist --workpath build %s",
		s.SpecFile,
	)
}

// RunBuild executes a packaging build inside a container and returns the
// build command's exit code. Mirroring the local build path, a non-zero
// exit is reported as data; the returned error covers daemon and
// container lifecycle failures only.
func RunBuild(ctx context.Context, cli *Client, spec *BuildSpec) (int, error) {
	if spec.Pull {
		if err := pullImage(ctx, cli, spec.Image); err != nil {
			return -1, err
		}
	}

	labels := BuildLabels(spec.App, spec.Image)

	id, err := createBuildContainer(ctx, cli, spec, labels)
	if err != nil {
		// A missing image is the common cause here; retry once after an
		// explicit pull unless one already happened.
		if !spec.Pull && isMissingImage(err) {
			if pullErr := pullImage(ctx, cli, spec.Image); pullErr != nil {
				return -1, pullErr
			}
			id, err = createBuildContainer(ctx, cli, spec, labels)
		}
		if err != nil {
			return -1, model.WrapCLIError(model.ExitDockerNotRunning,
				fmt.Sprintf("failed to create build container from %s", spec.Image), err)
		}
	}

	// Remove the container whatever happens from here on; the bind mount
	// means nothing of value lives inside it.
	defer func() {
		_ = cli.Inner().ContainerRemove(context.Background(), id,
			container.RemoveOptions{Force: true})
	}()

	if err := cli.Inner().ContainerStart(ctx, id, container.StartOptions{}); err != nil {
		return -1, model.WrapCLIError(model.ExitDockerNotRunning, "failed to start build container", err)
	}

	// Stream the container's output onto the console while waiting.
	// Docker multiplexes stdout/stderr on one stream; stdcopy demuxes
	// them back onto ours.
	logsDone := closedChan()
	logs, err := cli.Inner().ContainerLogs(ctx, id, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
	})
	if err == nil {
		defer logs.Close()
		logsDone = streamLogs(logs, os.Stdout, os.Stderr)
	}

	waitCh, errCh := cli.Inner().ContainerWait(ctx, id, container.WaitConditionNotRunning)
	select {
	case status := <-waitCh:
		// The container has exited but the followed log stream may still
		// hold buffered output — the failure lines of a broken build live
		// at the tail. Let the copier finish before tearing anything down.
		drainLogs(logsDone)
		if status.Error != nil {
			return -1, model.NewCLIError(model.ExitDockerNotRunning,
				fmt.Sprintf("build container wait failed: %s", status.Error.Message))
		}
		return int(status.StatusCode), nil
	case err := <-errCh:
		return -1, model.WrapCLIError(model.ExitDockerNotRunning, "failed to wait for build container", err)
	case <-ctx.Done():
		return -1, model.WrapCLIError(model.ExitGeneralError, "build cancelled", ctx.Err())
	}
}

// createBuildContainer creates (but does not start) the build container
// and returns its ID.
func createBuildContainer(ctx context.Context, cli *Client, spec *BuildSpec, labels map[string]string) (string, error) {
	created, err := cli.Inner().ContainerCreate(ctx,
		&container.Config{
			Image:      spec.Image,
			Cmd:        []string{"sh", "-c", spec.buildCommand()},
			WorkingDir: workspaceMount,
			Labels:     labels,
		},
		&container.HostConfig{
			Mounts: []mount.Mount{{
				Type:   mount.TypeBind,
				Source: spec.ProjectDir,
				Target: workspaceMount,
			}},
		},
		nil, nil, "")
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

// streamLogs demuxes the multiplexed container log stream onto stdout
// and stderr in the background. The returned channel closes when the
// copy finishes, which the daemon triggers by closing a followed stream
// once the container exits.
func streamLogs(logs io.Reader, stdout, stderr io.Writer) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = stdcopy.StdCopy(stdout, stderr, logs)
	}()
	return done
}

// drainLogs waits for the log copier to flush. Normally instantaneous;
// the timeout keeps a stream the daemon never closes from holding the
// build open forever.
func drainLogs(done <-chan struct{}) {
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

// closedChan returns an already-closed channel, the no-logs stand-in
// for a streamLogs result.
func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// pullImage pulls the build image, draining the progress stream so the
// pull actually completes before the create call runs.
func pullImage(ctx context.Context, cli *Client, ref string) error {
	rd, err := cli.Inner().ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return model.WrapCLIError(model.ExitDockerNotRunning,
			fmt.Sprintf("failed to pull image %s", ref), err)
	}
	defer rd.Close()
	_, _ = io.Copy(io.Discard, rd)
	return nil
}

// isMissingImage recognizes the daemon's image-not-found create failure.
// The SDK types these errors, so no message matching is needed.
func isMissingImage(err error) bool {
	return cerrdefs.IsNotFound(err)
}

// ListBuildContainers returns every pybundle-labelled container on the
// daemon, including exited ones — strays from interrupted builds are
// exactly what the cleanup path is after.
func ListBuildContainers(ctx context.Context, cli *Client) ([]BuildContainer, error) {
	filterArgs := filters.NewArgs(
		filters.Arg("label", LabelManagedBy+"="+ManagedByValue),
	)

	containers, err := cli.Inner().ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		return nil, model.WrapCLIError(model.ExitDockerNotRunning,
			"failed to list build containers", err)
	}

	result := make([]BuildContainer, 0, len(containers))
	for _, c := range containers {
		app, createdAt, managed := ParseLabels(c.Labels)
		if !managed {
			continue
		}
		name := ""
		if len(c.Names) > 0 {
			// The API reports names with a leading slash.
			name = strings.TrimPrefix(c.Names[0], "/")
		}
		result = append(result, BuildContainer{
			ID:        c.ID,
			Name:      name,
			App:       app,
			Status:    c.State,
			CreatedAt: createdAt,
		})
	}
	return result, nil
}

// RemoveBuildContainers force-removes the given containers and returns
// how many were removed. Removal continues past individual failures so
// one stuck container does not block the rest of the cleanup.
func RemoveBuildContainers(ctx context.Context, cli *Client, containers []BuildContainer) (int, error) {
	removed := 0
	var firstErr error
	for _, c := range containers {
		err := cli.Inner().ContainerRemove(ctx, c.ID, container.RemoveOptions{Force: true})
		if err != nil {
			if firstErr == nil {
				firstErr = model.WrapCLIError(model.ExitDockerNotRunning,
					fmt.Sprintf("failed to remove container %s", c.Name), err)
			}
			continue
		}
		removed++
	}
	return removed, firstErr
}
