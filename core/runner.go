package core

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/fwchore/internal/contract"
	"github.com/huangsam/fwchore/schema"
)

// ProgressIndicator receives build progress events. The total is an estimate
// taken from a dry run, so Tick may be called more or fewer times than total.
type ProgressIndicator interface {
	Start(description string, total int)
	Tick()
	Finish()
}

// LineArchiver persists raw diagnostic lines for later inspection.
type LineArchiver interface {
	BeginInvocation(target string, options []string)
	Append(line string)
}

// noopProgress is used when no indicator is wired in.
type noopProgress struct{}

func (noopProgress) Start(string, int) {}
func (noopProgress) Tick()             {}
func (noopProgress) Finish()           {}

// outcomeCollector folds classified output lines into a BuildOutcome.
// Context lines are buffered and prefixed to the next diagnostic so that
// multi-line compiler output stays together.
type outcomeCollector struct {
	outcome    *schema.BuildOutcome
	census     *WarningCensus
	progress   ProgressIndicator
	archive    LineArchiver
	contextBuf []string
	raw        strings.Builder
}

func newOutcomeCollector(options []string, census *WarningCensus, progress ProgressIndicator, archive LineArchiver) *outcomeCollector {
	if progress == nil {
		progress = noopProgress{}
	}
	return &outcomeCollector{
		outcome:  schema.NewBuildOutcome(options),
		census:   census,
		progress: progress,
		archive:  archive,
	}
}

// consume processes one multiplexed output line.
func (c *outcomeCollector) consume(src schema.StreamSource, line string) {
	if src == schema.Stderr {
		c.raw.WriteString(line)
		c.raw.WriteByte('\n')
		if c.archive != nil {
			c.archive.Append(line)
		}
	}

	switch Classify(src, line) {
	case schema.SuccessMarker:
		c.outcome.Status = schema.StatusSuccess
		if size, ok := ParseImageSize(line); ok {
			c.outcome.ImageSize = &size
		}
	case schema.RerunMarker:
		c.outcome.MustRerun = true
	case schema.ProgressTick:
		c.progress.Tick()
	case schema.LinkerDiagnostic:
		c.appendLog(schema.LinkerLog, line)
	case schema.ErrorDiagnostic:
		c.appendLog(schema.ErrorLog, line)
	case schema.WarningDiagnostic:
		// The census gets the context-prefixed block, so a multi-line
		// warning keys as one unit.
		block := c.appendLog(schema.WarningLog, line)
		if c.census != nil {
			_ = c.census.Record(block)
		}
	case schema.ContextLine:
		c.contextBuf = append(c.contextBuf, line)
	case schema.IgnoredStdout, schema.IgnoredNoise:
		// dropped
	}
}

// appendLog flushes buffered context ahead of the diagnostic into its bucket
// and returns the assembled block.
func (c *outcomeCollector) appendLog(cat schema.LogCategory, line string) string {
	block := strings.Join(append(c.contextBuf, line), "\n")
	c.contextBuf = c.contextBuf[:0]
	c.outcome.Logs[cat] += block + "\n"
	return block
}

// finalize seals the outcome once the child process has terminated.
func (c *outcomeCollector) finalize(elapsed time.Duration) *schema.BuildOutcome {
	c.outcome.RawLog = c.raw.String()
	c.outcome.Duration = elapsed
	c.progress.Finish()

	switch {
	case c.outcome.Status == schema.StatusSuccess:
	case c.outcome.MustRerun:
		// neither success nor failure yet, another pass decides
	default:
		c.outcome.Status = schema.StatusFailure
		c.outcome.FailReason = schema.ReasonCompileFailed
	}
	return c.outcome
}

// BuildRunner drives the firmware build tool for one repository checkout.
type BuildRunner struct {
	RepoRoot string
	Jobs     int // 0 lets the build tool pick its own parallelism

	Census   *WarningCensus    // optional warning census fed by diagnostics
	Progress ProgressIndicator // optional progress indicator
	Archive  LineArchiver      // optional raw log archive

	// runOnce is swappable for tests; defaults to the real invocation.
	runOnce func(ctx context.Context, target schema.Target, cleanFirst bool) (*schema.BuildOutcome, error)
}

// NewBuildRunner creates a runner rooted at the repository checkout.
func NewBuildRunner(repoRoot string, jobs int) *BuildRunner {
	r := &BuildRunner{RepoRoot: repoRoot, Jobs: jobs}
	r.runOnce = r.RunOnce
	return r
}

// buildArgs assembles the build tool argument list for one target.
func (r *BuildRunner) buildArgs(target schema.Target) []string {
	args := append([]string{}, target.Options...)
	if r.Jobs > 0 {
		args = append(args, "-j"+strconv.Itoa(r.Jobs))
	} else {
		args = append(args, "-j")
	}
	args = append(args, "-Orecurse", "--trace")
	return args
}

// dryRunArgs assembles the argument list for the target-count estimate.
func (r *BuildRunner) dryRunArgs(target schema.Target) []string {
	return append(append([]string{}, target.Options...), "--trace", "--dry-run")
}

// invocationDir resolves the directory the build tool runs in.
func (r *BuildRunner) invocationDir(target schema.Target) string {
	return filepath.Join(r.RepoRoot, target.InvocDir)
}

// clean drops incremental build state. Best effort: a tree that was never
// built has nothing to clean, and the build decides its own outcome anyway.
func (r *BuildRunner) clean(ctx context.Context, target schema.Target) {
	err := RunStreamed(ctx, r.invocationDir(target), "make", []string{"clean"},
		func(schema.StreamSource, string) {})
	if err != nil {
		contract.LogWarn("cleaning build tree", err)
	}
}

// EstimateTargets counts the update steps a full build would perform, using a
// dry run. An estimate of 0 with a nil error means the count was unavailable;
// the progress indicator then runs without a fixed total.
func (r *BuildRunner) EstimateTargets(ctx context.Context, target schema.Target) (int, error) {
	total := 0
	err := RunStreamed(ctx, r.invocationDir(target), "make", r.dryRunArgs(target),
		func(src schema.StreamSource, line string) {
			if src == schema.Stdout && strings.Contains(line, markerProgress) {
				total++
			}
		})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// RunOnce performs a single build invocation, optionally cleaning first, and
// returns the outcome. The returned error covers launch failures and
// cancellation only; a build that compiles nothing still yields a FAILURE
// outcome with a nil error.
func (r *BuildRunner) RunOnce(ctx context.Context, target schema.Target, cleanFirst bool) (*schema.BuildOutcome, error) {
	if cleanFirst {
		r.clean(ctx, target)
	}

	total, err := r.EstimateTargets(ctx, target)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		// The estimate only sizes the progress bar; it never blocks the build.
		contract.LogWarn("estimating build size", err)
		total = 0
	}

	collector := newOutcomeCollector(target.Options, r.Census, r.Progress, r.Archive)
	if r.Archive != nil {
		r.Archive.BeginInvocation(string(target.ID), target.Options)
	}
	if r.Progress != nil {
		r.Progress.Start(target.Name, total)
	}

	start := time.Now()
	runErr := RunStreamed(ctx, r.invocationDir(target), "make", r.buildArgs(target), collector.consume)
	outcome := collector.finalize(time.Since(start))

	if runErr != nil {
		if ctx.Err() != nil {
			outcome.Status = schema.StatusCancelled
			return outcome, runErr
		}
		return nil, runErr
	}
	return outcome, nil
}

// RunToCompletion runs the build, honoring rerun requests up to rerunLimit
// passes. A build still asking for another pass at the limit is reported as a
// distinct failure instead of looping forever.
func (r *BuildRunner) RunToCompletion(ctx context.Context, target schema.Target, rerunLimit int) (*schema.BuildOutcome, error) {
	if rerunLimit < 1 {
		rerunLimit = 1
	}

	var outcome *schema.BuildOutcome
	for pass := 1; ; pass++ {
		// Only the first pass cleans; a rerun pass builds on what the
		// previous pass produced.
		var err error
		outcome, err = r.runOnce(ctx, target, pass == 1)
		if err != nil {
			if outcome != nil {
				outcome.Passes = pass
			}
			return outcome, err
		}
		outcome.Passes = pass

		if !outcome.MustRerun {
			return outcome, nil
		}
		if pass >= rerunLimit {
			outcome.Status = schema.StatusFailure
			outcome.FailReason = schema.ReasonRerunExceeded
			return outcome, nil
		}
	}
}
