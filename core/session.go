package core

import (
	"context"
	"fmt"

	"github.com/huangsam/fwchore/internal/contract"
	"github.com/huangsam/fwchore/schema"
)

// targetBuilder is the slice of BuildRunner the session needs.
type targetBuilder interface {
	RunToCompletion(ctx context.Context, target schema.Target, rerunLimit int) (*schema.BuildOutcome, error)
}

// WarningDiffSession compares compiler warnings between the current checkout
// and a base commit. It builds the new generation first so a broken working
// tree is caught before any checkout happens.
type WarningDiffSession struct {
	Git      contract.GitClient
	Census   *WarningCensus
	Builder  targetBuilder
	RepoRoot string
}

// NewWarningDiffSession wires a session around a runner whose census is shared
// with the session.
func NewWarningDiffSession(git contract.GitClient, runner *BuildRunner) *WarningDiffSession {
	if runner.Census == nil {
		runner.Census = NewWarningCensus()
	}
	return &WarningDiffSession{
		Git:      git,
		Census:   runner.Census,
		Builder:  runner,
		RepoRoot: runner.RepoRoot,
	}
}

// Compare builds the target at HEAD and at baseRef and reports the warning
// delta. The working tree is returned to its original checkout even when the
// base-generation build fails.
func (s *WarningDiffSession) Compare(ctx context.Context, target schema.Target, baseRef string, rerunLimit int) (schema.DiffReport, error) {
	var report schema.DiffReport

	// New generation first: no checkout has happened yet, so a failure here
	// leaves the repository untouched.
	if err := s.Census.SelectGeneration(schema.NewGeneration); err != nil {
		return report, err
	}
	newOutcome, err := s.Builder.RunToCompletion(ctx, target, rerunLimit)
	if err != nil {
		return report, fmt.Errorf("new-generation build: %w", err)
	}

	// The build rewrites tracked generated files; put them back so the
	// checkout below starts from a clean tree.
	if err := s.Git.RestorePaths(ctx, s.RepoRoot, target.GeneratedFiles); err != nil {
		return report, fmt.Errorf("restore generated files: %w", err)
	}

	if !newOutcome.Succeeded() {
		return report, fmt.Errorf("new-generation build failed (%s); not comparing against %s",
			newOutcome.FailReason, baseRef)
	}

	if err := s.Git.Checkout(ctx, s.RepoRoot, baseRef); err != nil {
		return report, fmt.Errorf("checkout %s: %w", baseRef, err)
	}
	defer func() {
		// Best effort: always try to come back to the original checkout.
		if restoreErr := s.Git.RestorePaths(ctx, s.RepoRoot, target.GeneratedFiles); restoreErr != nil {
			contract.LogWarn("restoring generated files", restoreErr)
		}
		if backErr := s.Git.CheckoutPrevious(ctx, s.RepoRoot); backErr != nil {
			contract.LogWarn("returning to original checkout", backErr)
		}
	}()

	if err := s.Census.SelectGeneration(schema.OldGeneration); err != nil {
		return report, err
	}
	oldOutcome, err := s.Builder.RunToCompletion(ctx, target, rerunLimit)
	if err != nil {
		return report, fmt.Errorf("old-generation build: %w", err)
	}
	if !oldOutcome.Succeeded() {
		return report, fmt.Errorf("old-generation build at %s failed (%s)", baseRef, oldOutcome.FailReason)
	}

	return s.Census.Diff(), nil
}
