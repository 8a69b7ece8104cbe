package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/fwchore/core"
	"github.com/huangsam/fwchore/schema"
	"github.com/spf13/cobra"
)

// remoteCmd reports whether the remote has commits this checkout lacks.
var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Check whether the remote has commits not fetched yet",
	Long: `Dry-run a fetch against the repository's remote and report whether there
are commits this checkout has not seen. The check is advisory: builds run
either way, but a stale checkout usually means a stale comparison.

Exit status is non-zero when the remote is ahead, so the command slots into
scripts and CI gates.`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		switch core.CheckRemoteSync(rootCtx, gitClient, cfg.RepoRoot) {
		case schema.RemoteInSync:
			fmt.Println("✅ Up to date with remote")
		case schema.RemoteUnreachable:
			fmt.Println("⚠️  Remote unreachable, skipping check")
		case schema.RemoteAhead:
			fmt.Println("❌ Remote has commits not fetched yet")
			os.Exit(1)
		}
	},
}
