package cmd

import (
	"fmt"

	"github.com/huangsam/fwchore/core"
	"github.com/huangsam/fwchore/internal/contract"
	"github.com/spf13/cobra"
)

// styleCmd checks formatting of C sources changed since the merge base.
var styleCmd = &cobra.Command{
	Use:   "style",
	Short: "Check clang-format compliance of files changed on this branch",
	Long: `Run clang-format in dry-run mode over every .c and .h file changed since
the merge base with the base branch. Only files covered by a .clang-format
config somewhere in their directory ancestry are checked, so legacy trees
without a config are left alone.

With --apply, offending files are rewritten in place instead of just listed.

Examples:
  # List files that would be reformatted
  fwchore style

  # Fix them
  fwchore style --apply`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		report, err := core.ExecuteStyleCheck(rootCtx, cfg, gitClient)
		if err != nil {
			contract.LogFatal("Style check failed", err)
		}

		if report.Clean() {
			fmt.Printf("✅ %d files checked, all formatted\n", report.Checked)
			return
		}

		for _, path := range report.NeedsFormat {
			fmt.Println(path)
		}
		if report.Applied {
			fmt.Printf("✨ Reformatted %d of %d files\n", len(report.NeedsFormat), report.Checked)
			return
		}
		contract.LogFatal("Formatting check failed", fmt.Errorf("%d of %d files need formatting (rerun with --apply)", len(report.NeedsFormat), report.Checked))
	},
}
