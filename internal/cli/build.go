// Package cli — build.go implements the "pybundle build" command.
//
// This is the launcher flow the tool exists for:
//  1. Configure console encoding (failure is a warning, never fatal)
//  2. Print the banner identifying the application being packaged
//  3. Resolve the virtual environment, or warn and fall back to the
//     system interpreter
//  4. Announce and run the packaging build (local or containerized),
//     with the build's output inheriting the console
//  5. Print the summary, hold the window open on a key press, and exit
//     with the build command's own status
//
// The pause always happens before the exit status is applied, so a user
// who double-clicked the binary gets to read the output whatever the
// outcome — including when the build command never launched.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/shun-okamoto/pybundle/internal/bundler"
	"github.com/shun-okamoto/pybundle/internal/console"
	"github.com/shun-okamoto/pybundle/internal/manifest"
	"github.com/shun-okamoto/pybundle/internal/model"
	"github.com/shun-okamoto/pybundle/internal/venv"
)

// buildFlags holds the flag values for the build command.
type buildFlags struct {
	config    string // --config: explicit manifest path
	venvDir   string // --venv: virtual environment directory override
	docker    bool   // --docker: run the build inside a container
	image     string // --image: container image override
	noInstall bool   // --no-install: never pip-install PyInstaller
	keep      bool   // --keep: keep previous build/dist output
	noPause   bool   // --no-pause: skip the final key-press prompt
}

// NewBuildCommand creates the "build" cobra command.
func NewBuildCommand() *cobra.Command {
	flags := &buildFlags{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Package the application into a distributable executable",
		Long: `Package the project's Python application with PyInstaller.

The project's virtual environment (.venv or venv) is used when present;
otherwise the system interpreter is used and a warning is printed. The
build's output streams to this console, and the command holds the window
open on a final key press before exiting with the build's status.

Examples:
  pybundle build
  pybundle build --docker
  pybundle build --venv env312 --no-pause
  pybundle build --config packaging/pybundle.jsonc`,

		// The original launcher takes no arguments; anything positional
		// is a usage error.
		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.config, "config", "c", "", "Manifest path (default: pybundle.jsonc in the project root)")
	cmd.Flags().StringVar(&flags.venvDir, "venv", "", "Virtual environment directory (default: probe .venv, venv)")
	cmd.Flags().BoolVar(&flags.docker, "docker", false, "Run the build inside a Docker container")
	cmd.Flags().StringVar(&flags.image, "image", "", "Container image for --docker (default: manifest dockerImage)")
	cmd.Flags().BoolVar(&flags.noInstall, "no-install", false, "Fail instead of pip-installing a missing PyInstaller")
	cmd.Flags().BoolVar(&flags.keep, "keep", false, "Keep previous build/dist output")
	cmd.Flags().BoolVar(&flags.noPause, "no-pause", false, "Skip the final key-press prompt")

	return cmd
}

// runBuild is the orchestration function for the build command.
func runBuild(cmd *cobra.Command, flags *buildFlags) error {
	// Step 1: console encoding. Never fatal — the run continues on a
	// plain code page with at worst garbled non-ASCII text.
	if err := console.SetupUTF8(); err != nil {
		VerboseLog("Console UTF-8 setup failed (continuing): %v", err)
	}

	projectDir, err := os.Getwd()
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to get current directory", err)
	}

	// Step 2: manifest. A missing manifest is fine (pure defaults); a
	// broken one is not.
	var m *manifest.Manifest
	if flags.config != "" {
		m, err = manifest.Load(flags.config, projectDir)
	} else {
		m, err = manifest.LoadOrDefault(projectDir)
	}
	if err != nil {
		return err
	}
	if m.Path != "" {
		VerboseLog("Manifest: %s", m.Path)
	} else {
		VerboseLog("No manifest found, using defaults")
	}

	printBanner(m.Name)

	// Step 3: runtime resolution. Overrides, most specific first:
	// --venv flag, then PYBUNDLE_VENV, then the manifest's venv field.
	venvOverride := flags.venvDir
	if venvOverride == "" {
		venvOverride = os.Getenv("PYBUNDLE_VENV")
	}
	if venvOverride == "" {
		venvOverride = m.Venv
	}

	var rt *model.Runtime
	var resolveErr error
	if flags.docker {
		// Containerized builds bring their own interpreter; the local
		// environment is irrelevant.
		fmt.Println("Building inside a container, skipping local environment checks")
	} else {
		var usedVenv bool
		rt, usedVenv, resolveErr = venv.Resolve(projectDir, venvOverride, os.Getenv("PYBUNDLE_PYTHON"))
		switch {
		case resolveErr != nil:
			color.Red("Warning: %v", resolveErr)
		case usedVenv:
			color.Green("Virtual environment activated: %s", rt.VenvDir)
		default:
			color.Yellow("Warning: no virtual environment found, using %s", rt.Describe())
		}
	}

	// Step 4: run the build. The bundler reports the build command's
	// exit status as data; buildErr carries the launcher-level verdict.
	fmt.Println()
	fmt.Println("Starting packaging...")
	fmt.Println()

	image := flags.image
	if image == "" {
		image = os.Getenv("PYBUNDLE_DOCKER_IMAGE")
	}

	b := bundler.New(VerboseLog)
	res, buildErr := b.Run(cmd.Context(), bundler.Options{
		ProjectDir:  projectDir,
		Manifest:    m,
		Runtime:     rt,
		Clean:       !flags.keep,
		Install:     !flags.noInstall,
		Docker:      flags.docker,
		DockerImage: image,
	})

	// A failed environment resolution only matters if the build also
	// could not launch; prefer the more specific resolution error then.
	if buildErr != nil && resolveErr != nil && res.Outcome == model.OutcomeNotLaunched {
		buildErr = resolveErr
	}

	// Step 5: summary, pause, exit status — in that order, always.
	printBuildResult(res)

	if !flags.noPause {
		fmt.Println()
		if pauseErr := console.Pause(os.Stdin, os.Stdout, ""); pauseErr != nil {
			// Ctrl-C at the prompt becomes the exit status — unless the
			// build already failed, which stays the more useful verdict.
			if errors.Is(pauseErr, console.ErrCancelled) && buildErr == nil {
				return model.NewCLIError(model.ExitUserCancelled, "cancelled by user")
			}
			VerboseLog("Pause interrupted: %v", pauseErr)
		}
	}

	return buildErr
}

// printBanner prints the fixed identification banner, the launcher's
// first visible output.
func printBanner(appName string) {
	title := fmt.Sprintf("%s — Packaging Launcher", appName)
	color.New(color.Bold).Println(title)
	fmt.Println(strings.Repeat("=", len([]rune(title))))
}

// printBuildResult outputs the build summary in text or JSON format.
func printBuildResult(res *model.BuildResult) {
	if IsJSONOutput() {
		printJSON(res)
		return
	}

	fmt.Println()
	switch res.Outcome {
	case model.OutcomeSucceeded:
		fmt.Println(strings.Repeat("=", 50))
		color.Green("Packaging complete!")
		if res.Artifact != "" {
			fmt.Printf("Executable: %s\n", res.Artifact)
		}
		fmt.Printf("Duration:   %s\n", res.Duration.Round(time.Millisecond))
		fmt.Println(strings.Repeat("=", 50))
	case model.OutcomeFailed:
		color.Red("Packaging failed (exit status %d) — check the output above", res.ExitCode)
	default:
		color.Red("Packaging command could not be launched")
	}
}
