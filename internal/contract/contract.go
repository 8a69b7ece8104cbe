// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/fwchore/schema"
)

// GitClient defines the version-control operations the chore engine needs.
// This allows the core logic to be tested without needing a real git executable.
type GitClient interface {
	// --- Generic / Low-Level ---

	// Run executes a git command and returns the combined output.
	// Its use should be minimized in favor of the explicit methods below.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// --- Repository State ---

	// RepoRoot returns the absolute path to the root of the Git repository
	// containing the given context path.
	RepoRoot(ctx context.Context, contextPath string) (string, error)

	// HeadHash returns the full commit hash of HEAD.
	HeadHash(ctx context.Context, repoPath string) (string, error)

	// ShortHeadHash returns the abbreviated commit hash of HEAD.
	ShortHeadHash(ctx context.Context, repoPath string) (string, error)

	// TreeHash returns the hash of the tree object HEAD points at.
	TreeHash(ctx context.Context, repoPath string) (string, error)

	// CurrentBranch returns the checked-out branch name, or "" when detached.
	CurrentBranch(ctx context.Context, repoPath string) (string, error)

	// IsDirty reports whether the working tree has uncommitted changes.
	IsDirty(ctx context.Context, repoPath string) (bool, error)

	// --- Refs / History ---

	// VerifyRef fails when the given branch name or commit ID is unknown.
	VerifyRef(ctx context.Context, repoPath string, ref string) error

	// MergeBase returns the common ancestor of two refs.
	MergeBase(ctx context.Context, repoPath string, a, b string) (string, error)

	// IsAncestor reports whether anc is an ancestor of desc.
	IsAncestor(ctx context.Context, repoPath string, anc, desc string) (bool, error)

	// DecoratedLog returns `git log --pretty=format:%D` output starting at ref,
	// used for base-branch inference.
	DecoratedLog(ctx context.Context, repoPath string, ref string) (string, error)

	// DiffNameOnly lists the files changed between ref and the working tree.
	DiffNameOnly(ctx context.Context, repoPath string, ref string) ([]string, error)

	// --- Mutations ---

	// Checkout switches the working tree to the given ref.
	Checkout(ctx context.Context, repoPath string, ref string) error

	// CheckoutPrevious switches back to the previously checked-out ref.
	CheckoutPrevious(ctx context.Context, repoPath string) error

	// RestorePaths restores the given paths to their committed state.
	RestorePaths(ctx context.Context, repoPath string, paths []string) error

	// CommitAll commits every tracked change with the given message.
	CommitAll(ctx context.Context, repoPath string, message string) error

	// ResetToParent moves HEAD back one commit, keeping the working tree.
	ResetToParent(ctx context.Context, repoPath string) error

	// --- Remote ---

	// FetchDryRun runs a dry-run fetch and returns its combined output plus
	// whether the remote could be reached at all.
	FetchDryRun(ctx context.Context, repoPath string) (string, bool)
}

// HistoryManager defines the interface for managing the build-history store.
// This allows the persistence layer to be mocked for testing.
type HistoryManager interface {
	GetHistoryStore() HistoryStore
}

// HistoryStore records one row per build run so past builds can be inspected
// and unchanged trees can skip recompilation.
type HistoryStore interface {
	// BeginRun inserts a new in-progress run and returns its unique ID.
	BeginRun(rec schema.BuildRunRecord) (int64, error)

	// EndRun updates the run with completion data.
	EndRun(runID int64, endTime time.Time, status string, imageSize *int64, artifactPath *string) error

	// LastSuccessForTree returns the most recent successful run of the given
	// target at the given tree hash, or nil when there is none.
	LastSuccessForTree(treeHash string, target string) (*schema.BuildRunRecord, error)

	// ListRuns returns the most recent runs, newest first.
	ListRuns(limit int) ([]schema.BuildRunRecord, error)

	// GetStatus returns status information about the history store.
	GetStatus() (schema.HistoryStatus, error)

	// Clear removes all history rows.
	Clear() error

	// Close closes the underlying connection.
	Close() error
}
