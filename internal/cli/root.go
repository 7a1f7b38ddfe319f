// Package cli implements the cobra-based CLI commands for pybundle.
//
// Each subcommand (build, doctor, clean, init) is defined in its own
// file within this package. This file defines the root command that
// serves as the parent for all subcommands and handles global flags.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/shun-okamoto/pybundle/internal/model"
)

// Global flag variables shared across all subcommands. They are bound
// to cobra persistent flags on the root command, which makes them
// available to every subcommand automatically.
var (
	// jsonOutput switches command output to structured JSON for machine
	// consumption. Errors also render as JSON when set.
	jsonOutput bool

	// verbose enables detailed progress output on stderr.
	verbose bool

	// noColor disables ANSI colors in status output. Colors are also
	// auto-disabled by the color package when stdout is not a terminal.
	noColor bool
)

// version, commit, and date are injected from the main package, which
// receives them from ldflags at build time.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
// This is the entry point for the entire CLI application.
//
// The root command itself performs no action — it provides help text,
// global flags, and the .env preload. Functionality lives in the
// subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pybundle",
		Short: "Packaging launcher for Python desktop applications",
		Long: `pybundle packages a Python application into a distributable executable.

It resolves the project's virtual environment (falling back to the system
interpreter with a warning), generates a PyInstaller spec file from the
pybundle.jsonc manifest, runs the build — locally or inside a Docker
container — and reports the produced artifact.`,

		// SilenceUsage prevents cobra from printing usage on every error;
		// SilenceErrors leaves error formatting to Execute, which renders
		// text or JSON based on the --json flag.
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Best-effort .env preload: PYBUNDLE_PYTHON, PYBUNDLE_VENV and
			// PYBUNDLE_DOCKER_IMAGE overrides can live in a project .env
			// file. A missing file is the normal case, not an error.
			if err := godotenv.Load(); err == nil {
				VerboseLog("Loaded overrides from .env")
			}
			if noColor {
				color.NoColor = true
			}
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	// Register subcommands. Each is defined in its own file and returns
	// a *cobra.Command.
	rootCmd.AddCommand(NewBuildCommand())
	rootCmd.AddCommand(NewDoctorCommand())
	rootCmd.AddCommand(NewCleanCommand())
	rootCmd.AddCommand(NewInitCommand())

	return rootCmd
}

// Execute runs the root command and handles exit codes.
// This is the main entry point called from main.go.
//
// CLIError values carry their own exit codes; other errors default to
// exit code 1.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		var cliErr *model.CLIError
		if errors.As(err, &cliErr) {
			printError(cliErr.Message, cliErr.Err)
			os.Exit(int(cliErr.Code))
		}

		printError(err.Error(), nil)
		os.Exit(int(model.ExitGeneralError))
	}
}

// printError outputs an error message in the appropriate format
// (JSON or text) based on the --json global flag. Errors go to stderr
// in both modes, keeping stdout reserved for command output.
func printError(message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		prefix := color.New(color.FgRed, color.Bold).Sprint("Error:")
		if underlying != nil {
			fmt.Fprintf(os.Stderr, "%s %s: %v\n", prefix, message, underlying)
		} else {
			fmt.Fprintf(os.Stderr, "%s %s\n", prefix, message)
		}
	}
}

// VerboseLog prints a message to stderr only when verbose mode is
// enabled. Used throughout the CLI for progress and debug output.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}

// IsJSONOutput returns whether the --json flag is set.
// Subcommands use this to decide their output format.
func IsJSONOutput() bool {
	return jsonOutput
}

// printJSON marshals v with indentation onto stdout. Used by every
// subcommand's --json output path.
func printJSON(v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(data))
}
