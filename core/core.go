// Package core implements the firmware chore flows: streaming build output
// classification, the rerun-aware build controller, warning-delta sessions
// between commits, and the orchestration that ties the chores together.
package core

import (
	"context"
	"fmt"

	"github.com/huangsam/fwchore/internal/contract"
	"github.com/huangsam/fwchore/schema"
)

// ExecuteBuildChores runs the requested build targets, bracketed by an
// optional imprint commit, and returns the summary rows.
func ExecuteBuildChores(ctx context.Context, cfg *contract.Config, git contract.GitClient, history contract.HistoryStore, runner *BuildRunner, targets []schema.Target) ([]schema.ChoreRow, error) {
	engine := NewChoreEngine(cfg, git, history, runner)

	// Remote state is advisory; it never blocks builds.
	switch CheckRemoteSync(ctx, git, cfg.RepoRoot) {
	case schema.RemoteAhead:
		engine.addRow("Remote sync", schema.ResultFail, "remote has commits not fetched yet")
	case schema.RemoteUnreachable:
		engine.addRow("Remote sync", schema.ResultSkip, "remote unreachable")
	case schema.RemoteInSync:
		engine.addRow("Remote sync", schema.ResultPass, "up to date with remote")
	}

	imprinted := false
	if cfg.Imprint {
		var err error
		imprinted, err = engine.Imprint(ctx)
		if err != nil {
			return engine.Rows(), err
		}
	}

	buildErr := engine.ExecuteBuilds(ctx, targets)

	if imprinted {
		if err := engine.WipeImprint(ctx); err != nil {
			contract.LogWarn("removing imprint commit", err)
		}
	}
	return engine.Rows(), buildErr
}

// ExecuteWarningDiff compares compiler warnings for one chip between HEAD and
// the merge base with the base branch.
func ExecuteWarningDiff(ctx context.Context, cfg *contract.Config, git contract.GitClient, runner *BuildRunner, chip string) (schema.DiffReport, error) {
	target, ok := schema.WarningChipTarget(chip)
	if !ok {
		return schema.DiffReport{}, fmt.Errorf("unknown chip %q", chip)
	}

	engine := NewChoreEngine(cfg, git, nil, runner)
	mergeBase, err := engine.ResolveMergeBase(ctx)
	if err != nil {
		return schema.DiffReport{}, err
	}

	session := NewWarningDiffSession(git, runner)
	return session.Compare(ctx, target, mergeBase, cfg.RerunLimit)
}

// ExecuteStyleCheck runs the formatting check over everything changed since
// the merge base with the base branch.
func ExecuteStyleCheck(ctx context.Context, cfg *contract.Config, git contract.GitClient) (schema.StyleReport, error) {
	engine := NewChoreEngine(cfg, git, nil, nil)
	mergeBase, err := engine.ResolveMergeBase(ctx)
	if err != nil {
		return schema.StyleReport{}, err
	}
	return CheckStyle(ctx, git, cfg.RepoRoot, mergeBase, cfg.ApplyStyle)
}
