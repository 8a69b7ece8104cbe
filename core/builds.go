package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/huangsam/fwchore/internal/contract"
	"github.com/huangsam/fwchore/schema"
)

// imprintMessage marks the throwaway commit that freezes a dirty working tree
// so the build history can reference an exact tree hash.
const imprintMessage = "fwchore: imprint working tree"

// fallbackBaseBranch is used when no remote branch decorates the history.
const fallbackBaseBranch = "master"

// ChoreEngine orchestrates the firmware chores for one repository checkout.
type ChoreEngine struct {
	Cfg     *contract.Config
	Git     contract.GitClient
	History contract.HistoryStore // nil disables build history
	Runner  *BuildRunner

	rows []schema.ChoreRow
}

// NewChoreEngine wires an engine from validated configuration.
func NewChoreEngine(cfg *contract.Config, git contract.GitClient, history contract.HistoryStore, runner *BuildRunner) *ChoreEngine {
	return &ChoreEngine{Cfg: cfg, Git: git, History: history, Runner: runner}
}

// Rows returns the summary rows accumulated so far.
func (e *ChoreEngine) Rows() []schema.ChoreRow {
	return e.rows
}

// addRow appends one summary row.
func (e *ChoreEngine) addRow(name string, result schema.ChoreResult, comment string) {
	e.rows = append(e.rows, schema.ChoreRow{Name: name, Result: result, Comment: comment})
}

// InferBaseBranch finds the nearest remote branch decorating the commit log.
// Explicit configuration always wins; the fallback is the conventional trunk.
func (e *ChoreEngine) InferBaseBranch(ctx context.Context) (string, error) {
	if e.Cfg.BaseBranch != "" {
		return e.Cfg.BaseBranch, nil
	}

	out, err := e.Git.DecoratedLog(ctx, e.Cfg.RepoRoot, "HEAD")
	if err != nil {
		return "", fmt.Errorf("read decorated log: %w", err)
	}
	for _, line := range strings.Split(out, "\n") {
		for _, ref := range strings.Split(line, ", ") {
			ref = strings.TrimSpace(ref)
			ref = strings.TrimPrefix(ref, "HEAD -> ")
			if strings.HasPrefix(ref, "tag: ") || ref == "origin/HEAD" {
				continue
			}
			if branch, ok := strings.CutPrefix(ref, "origin/"); ok {
				return branch, nil
			}
		}
	}
	return fallbackBaseBranch, nil
}

// ResolveMergeBase returns the common ancestor of HEAD and the base branch.
func (e *ChoreEngine) ResolveMergeBase(ctx context.Context) (string, error) {
	base, err := e.InferBaseBranch(ctx)
	if err != nil {
		return "", err
	}
	if err := e.Git.VerifyRef(ctx, e.Cfg.RepoRoot, base); err != nil {
		return "", err
	}
	return e.Git.MergeBase(ctx, e.Cfg.RepoRoot, base, "HEAD")
}

// Imprint commits a dirty working tree so the run is attributed to a concrete
// tree hash. Returns true when a commit was created; the caller must undo it
// with WipeImprint before handing the repository back.
func (e *ChoreEngine) Imprint(ctx context.Context) (bool, error) {
	dirty, err := e.Git.IsDirty(ctx, e.Cfg.RepoRoot)
	if err != nil {
		return false, err
	}
	if !dirty {
		return false, nil
	}
	if err := e.Git.CommitAll(ctx, e.Cfg.RepoRoot, imprintMessage); err != nil {
		return false, fmt.Errorf("imprint commit: %w", err)
	}
	return true, nil
}

// WipeImprint removes the imprint commit, leaving the working tree as it was.
func (e *ChoreEngine) WipeImprint(ctx context.Context) error {
	return e.Git.ResetToParent(ctx, e.Cfg.RepoRoot)
}

// ExecuteBuilds runs the requested targets in order, deduplicated, honoring
// break-on-failure. Each target contributes one summary row.
func (e *ChoreEngine) ExecuteBuilds(ctx context.Context, targets []schema.Target) error {
	seen := make(map[schema.TargetID]struct{})
	for _, target := range targets {
		if _, dup := seen[target.ID]; dup {
			continue
		}
		seen[target.ID] = struct{}{}

		var row schema.ChoreRow
		if target.ROM {
			row = e.buildROM(ctx, target)
		} else {
			row = e.buildFlash(ctx, target)
		}
		e.rows = append(e.rows, row)

		if row.Result == schema.ResultFail && e.Cfg.BreakOnFailure {
			return fmt.Errorf("build %s failed: %s", target.ID, row.Comment)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return nil
}

// buildFlash builds one flash target and copies the resulting image aside.
func (e *ChoreEngine) buildFlash(ctx context.Context, target schema.Target) schema.ChoreRow {
	name := target.Name

	treeHash, err := e.Git.TreeHash(ctx, e.Cfg.RepoRoot)
	if err != nil {
		return schema.ChoreRow{Name: name, Result: schema.ResultFail, Comment: err.Error()}
	}

	if e.History != nil && !e.Cfg.ForceRebuild {
		if prev, err := e.History.LastSuccessForTree(treeHash, string(target.ID)); err == nil && prev != nil {
			return schema.ChoreRow{
				Name:    name,
				Result:  schema.ResultSkip,
				Comment: fmt.Sprintf("unchanged tree, built %s", prev.StartTime.Format("2006-01-02 15:04")),
			}
		}
	}

	runID := e.beginHistory(ctx, target, treeHash)

	outcome, err := e.Runner.RunToCompletion(ctx, target, e.Cfg.RerunLimit)
	e.restoreGenerated(ctx, target)
	if err != nil {
		e.endHistory(runID, schema.StatusCancelled, nil, nil)
		return schema.ChoreRow{Name: name, Result: schema.ResultFail, Comment: err.Error()}
	}
	if !outcome.Succeeded() {
		e.endHistory(runID, schema.StatusFailure, nil, nil)
		return schema.ChoreRow{Name: name, Result: schema.ResultFail, Comment: outcome.FailReason}
	}

	artifact, copyErr := e.copyArtifact(target)
	if copyErr != nil {
		e.endHistory(runID, schema.StatusSuccess, outcome.ImageSize, nil)
		return schema.ChoreRow{Name: name, Result: schema.ResultFail, Comment: copyErr.Error()}
	}
	e.endHistory(runID, schema.StatusSuccess, outcome.ImageSize, &artifact)

	comment := fmt.Sprintf("image %s", filepath.Base(artifact))
	if outcome.ImageSize != nil {
		comment = fmt.Sprintf("%d bytes, %s", *outcome.ImageSize, filepath.Base(artifact))
	}
	return schema.ChoreRow{Name: name, Result: schema.ResultPass, Comment: comment}
}

// buildROM builds a ROM target and verifies the generated ROM content against
// the golden copy.
func (e *ChoreEngine) buildROM(ctx context.Context, target schema.Target) schema.ChoreRow {
	name := target.Name

	outcome, err := e.Runner.RunToCompletion(ctx, target, e.Cfg.RerunLimit)
	e.restoreGenerated(ctx, target)
	if err != nil {
		return schema.ChoreRow{Name: name, Result: schema.ResultFail, Comment: err.Error()}
	}
	if !outcome.Succeeded() {
		return schema.ChoreRow{Name: name, Result: schema.ResultFail, Comment: outcome.FailReason}
	}

	if err := CheckROM(e.Cfg.RepoRoot, target.InvocDir, target.GoldenROM); err != nil {
		return schema.ChoreRow{Name: name, Result: schema.ResultFail, Comment: err.Error()}
	}
	return schema.ChoreRow{Name: name, Result: schema.ResultPass, Comment: "ROM content matches golden"}
}

// restoreGenerated puts the build's tracked side-effect files back.
func (e *ChoreEngine) restoreGenerated(ctx context.Context, target schema.Target) {
	if err := e.Git.RestorePaths(ctx, e.Cfg.RepoRoot, target.GeneratedFiles); err != nil {
		contract.LogWarn("restoring generated files", err)
	}
}

// copyArtifact copies the newest .rps image out of the release directory,
// naming it after the target and the current commit.
func (e *ChoreEngine) copyArtifact(target schema.Target) (string, error) {
	pattern := filepath.Join(e.Cfg.RepoRoot, target.ReleaseDir, "*.rps")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no .rps image found under %s", target.ReleaseDir)
	}
	sort.Slice(matches, func(i, j int) bool {
		return modTime(matches[i]).After(modTime(matches[j]))
	})
	src := matches[0]

	if err := os.MkdirAll(e.Cfg.DestDir, 0o755); err != nil {
		return "", err
	}
	dest := filepath.Join(e.Cfg.DestDir, fmt.Sprintf("%s_%s.rps", target.ID, e.Cfg.ShortHash))
	if err := copyFile(src, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// beginHistory opens a history row; a zero ID means history is disabled or
// unavailable.
func (e *ChoreEngine) beginHistory(ctx context.Context, target schema.Target, treeHash string) int64 {
	if e.History == nil {
		return 0
	}
	commit, err := e.Git.HeadHash(ctx, e.Cfg.RepoRoot)
	if err != nil {
		contract.LogWarn("reading HEAD for history", err)
		return 0
	}
	runID, err := e.History.BeginRun(schema.BuildRunRecord{
		Target:     string(target.ID),
		Options:    strings.Join(target.Options, " "),
		Name:       e.Cfg.Name,
		CommitHash: commit,
		TreeHash:   treeHash,
		Status:     string(schema.StatusPending),
		StartTime:  time.Now(),
	})
	if err != nil {
		contract.LogWarn("recording build start", err)
		return 0
	}
	return runID
}

// endHistory closes a history row opened by beginHistory.
func (e *ChoreEngine) endHistory(runID int64, status schema.BuildStatus, imageSize *int64, artifact *string) {
	if e.History == nil || runID == 0 {
		return
	}
	if err := e.History.EndRun(runID, time.Now(), string(status), imageSize, artifact); err != nil {
		contract.LogWarn("recording build end", err)
	}
}

func modTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
