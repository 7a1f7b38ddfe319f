// Package cli — clean.go implements the "pybundle clean" command.
//
// Clean removes everything a build leaves behind: the PyInstaller work
// directory, the dist directory (including the build-info report), the
// generated spec file, and — with --containers — stray build containers
// left on the Docker daemon by interrupted containerized builds.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shun-okamoto/pybundle/internal/bundler"
	"github.com/shun-okamoto/pybundle/internal/docker"
	"github.com/shun-okamoto/pybundle/internal/manifest"
	"github.com/shun-okamoto/pybundle/internal/model"
)

// cleanFlags holds the flag values for the clean command.
type cleanFlags struct {
	containers bool // --containers: also remove stray build containers
}

// NewCleanCommand creates the "clean" cobra command.
func NewCleanCommand() *cobra.Command {
	flags := &cleanFlags{}

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove build output and generated files",
		Long: `Remove the build and dist directories and the generated spec file.

With --containers, stray pybundle build containers on the Docker daemon
are also removed (interrupted --docker builds can leave them behind).

Examples:
  pybundle clean
  pybundle clean --containers`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd.Context(), flags)
		},
	}

	cmd.Flags().BoolVar(&flags.containers, "containers", false, "Also remove stray build containers")

	return cmd
}

// cleanResult is the JSON shape of the clean command's output.
type cleanResult struct {
	Removed           []string `json:"removed"`
	ContainersRemoved int      `json:"containersRemoved,omitempty"`
}

// runClean removes build leftovers on disk and, optionally, on the
// Docker daemon.
func runClean(ctx context.Context, flags *cleanFlags) error {
	projectDir, err := os.Getwd()
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to get current directory", err)
	}

	m, err := manifest.LoadOrDefault(projectDir)
	if err != nil {
		return err
	}

	removed, err := bundler.CleanArtifacts(projectDir, m, true)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to remove build output", err)
	}

	result := cleanResult{Removed: removed}
	if result.Removed == nil {
		result.Removed = []string{}
	}

	if flags.containers {
		n, err := cleanContainers(ctx)
		if err != nil {
			return err
		}
		result.ContainersRemoved = n
	}

	if IsJSONOutput() {
		printJSON(result)
		return nil
	}

	if len(result.Removed) == 0 {
		fmt.Println("Nothing to remove")
	}
	for _, path := range result.Removed {
		fmt.Printf("Removed %s\n", path)
	}
	if flags.containers {
		fmt.Printf("Removed %d build container(s)\n", result.ContainersRemoved)
	}
	return nil
}

// cleanContainers removes every pybundle-labelled container from the
// daemon and returns how many went away.
func cleanContainers(ctx context.Context) (int, error) {
	cli, err := docker.NewClient()
	if err != nil {
		return 0, err
	}
	defer func() { _ = cli.Close() }()

	containers, err := docker.ListBuildContainers(ctx, cli)
	if err != nil {
		return 0, err
	}
	for _, c := range containers {
		VerboseLog("Removing build container %s", c.String())
	}

	return docker.RemoveBuildContainers(ctx, cli, containers)
}
