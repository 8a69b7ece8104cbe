package cmd

import (
	"fmt"
	"time"

	"github.com/huangsam/fwchore/core"
	"github.com/huangsam/fwchore/internal/contract"
	"github.com/huangsam/fwchore/internal/iocache"
	"github.com/huangsam/fwchore/internal/outwriter"
	"github.com/huangsam/fwchore/schema"
	"github.com/spf13/cobra"
)

// buildCmd runs firmware builds for one or more targets.
var buildCmd = &cobra.Command{
	Use:   "build [targets...]",
	Short: "Build firmware targets and copy the flash images aside",
	Long: `Build the requested firmware targets, classify the compiler output as it
streams by, and copy each resulting .rps image into the destination directory
named after the target and commit.

Targets are selected by alias (the spellings the team already uses) or by full
identifier. With no arguments, every flash target is built; add --thorough to
run the ROM-content checks as well.

Builds whose source tree hash matches a previously recorded success are
skipped unless --force is given. The build tool is re-invoked automatically
when it asks for another pass, up to --rerun-limit times.

Examples:
  # Build the usual 9117 pair
  fwchore build A0 B0

  # Build everything, including ROM checks, stopping at the first failure
  fwchore build --thorough --break

  # Rebuild even if nothing changed, with 8 parallel jobs
  fwchore build A0 --force -j 8`,
	Args:    cobra.ArbitraryArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		targets, err := resolveTargets(args)
		if err != nil {
			contract.LogFatal("Invalid target selection", err)
		}

		archive := contract.NewBuildLogArchive(cfg.DestDir)
		defer func() { _ = archive.Close() }()

		runner := core.NewBuildRunner(cfg.RepoRoot, cfg.Jobs)
		runner.Archive = archive
		if progress := outwriter.NewBuildProgress(); progress != nil {
			runner.Progress = progress
		}

		history := iocache.Manager.GetHistoryStore()

		start := time.Now()
		rows, runErr := core.ExecuteBuildChores(rootCtx, cfg, gitClient, history, runner, targets)
		if err := outwriter.WriteChoreSummary(rows, cfg, time.Since(start)); err != nil {
			contract.LogWarn("writing summary", err)
		}
		if runErr != nil {
			contract.LogFatal("Build chores failed", runErr)
		}
	},
}

// resolveTargets maps CLI spellings to targets. With no arguments every flash
// target is selected, plus the ROM targets when the run is thorough.
func resolveTargets(args []string) ([]schema.Target, error) {
	if len(args) == 0 {
		all, err := schema.Targets()
		if err != nil {
			return nil, err
		}
		var selected []schema.Target
		for _, t := range all {
			if t.ROM && !cfg.Thorough {
				continue
			}
			selected = append(selected, t)
		}
		return selected, nil
	}

	var selected []schema.Target
	for _, arg := range args {
		t, ok := schema.TargetByAlias(arg)
		if !ok {
			return nil, fmt.Errorf("unknown target %q", arg)
		}
		selected = append(selected, t)
	}
	return selected, nil
}

// targetsCmd lists the registry so operators can discover aliases.
var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List every known build target and its aliases",
	Run: func(cmd *cobra.Command, _ []string) {
		all, err := schema.Targets()
		if err != nil {
			contract.LogFatal("Target registry is invalid", err)
		}
		for _, t := range all {
			kind := "flash"
			if t.ROM {
				kind = "rom"
			}
			cmd.Printf("%-14s %-6s %-16s aliases: %v\n", t.ID, kind, t.Name, t.Aliases)
		}
	},
}
