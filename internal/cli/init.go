// Package cli — init.go implements the "pybundle init" command, which
// writes a commented starter manifest into the project root.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shun-okamoto/pybundle/internal/manifest"
	"github.com/shun-okamoto/pybundle/internal/model"
)

// initFlags holds the flag values for the init command.
type initFlags struct {
	force bool // --force: overwrite an existing manifest
}

// NewInitCommand creates the "init" cobra command.
func NewInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter pybundle.jsonc manifest",
		Long: `Write a commented starter manifest into the current directory.

The generated file documents every field inline; edit it to match the
application, then run "pybundle build".

Examples:
  pybundle init
  pybundle init --force`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(flags)
		},
	}

	cmd.Flags().BoolVar(&flags.force, "force", false, "Overwrite an existing manifest")

	return cmd
}

// runInit writes the starter manifest.
func runInit(flags *initFlags) error {
	projectDir, err := os.Getwd()
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to get current directory", err)
	}

	path, err := manifest.WriteStarter(projectDir, flags.force)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		printJSON(map[string]string{"manifest": path})
		return nil
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
