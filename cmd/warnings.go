package cmd

import (
	"github.com/huangsam/fwchore/core"
	"github.com/huangsam/fwchore/internal/contract"
	"github.com/huangsam/fwchore/internal/outwriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// warningsCmd compares compiler warnings between HEAD and the base branch.
var warningsCmd = &cobra.Command{
	Use:   "warnings [chip]",
	Short: "Diff compiler warnings between HEAD and the base branch",
	Long: `Build the selected chip twice, once at HEAD and once at the merge base
with the base branch, and report which compiler warnings were added or
removed in between.

Warnings are normalized before comparison: line numbers are masked so a
warning that merely moved does not show up as both added and removed. The
repository is checked out at the merge base for the second build and restored
afterwards, even when the build fails.

The chip argument accepts the usual spellings (9117, A0, B0, 9116); the
default is the 9117 A0 flash target.

Examples:
  # Warnings introduced on this branch relative to the inferred base
  fwchore warnings

  # Compare the B0 build against a specific base branch
  fwchore warnings B0 --base release/2.9

  # Machine-readable output for CI
  fwchore warnings --output json --output-file warnings.json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		chip := "9117"
		if len(args) == 1 {
			chip = args[0]
		}

		runner := core.NewBuildRunner(cfg.RepoRoot, cfg.Jobs)
		if progress := outwriter.NewBuildProgress(); progress != nil {
			runner.Progress = progress
		}

		report, err := core.ExecuteWarningDiff(rootCtx, cfg, gitClient, runner, chip)
		if err != nil {
			contract.LogFatal("Warning diff failed", err)
		}
		if err := outwriter.WriteWarningDiff(report, cfg, viper.GetString("output-file")); err != nil {
			contract.LogFatal("Failed to write warning diff", err)
		}
	},
}
