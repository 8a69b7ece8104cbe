package core

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/fwchore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingProgress records progress events for assertions.
type countingProgress struct {
	started  int
	ticks    int
	finished int
}

func (p *countingProgress) Start(string, int) { p.started++ }
func (p *countingProgress) Tick()             { p.ticks++ }
func (p *countingProgress) Finish()           { p.finished++ }

// feed drives a collector with (source, line) pairs.
func feed(c *outcomeCollector, pairs ...[2]string) {
	for _, p := range pairs {
		c.consume(schema.StreamSource(p[0]), p[1])
	}
}

func TestCollectorSuccessfulBuild(t *testing.T) {
	progress := &countingProgress{}
	c := newOutcomeCollector([]string{"chip=9117"}, nil, progress, nil)

	feed(c,
		[2]string{"stdout", "make[1]: Entering directory 'LMAC/ebuild/coex'"},
		[2]string{"stdout", "<builtin>: update target 'wlan.o' due to: wlan.c"},
		[2]string{"stdout", "<builtin>: update target 'sme.o' due to: sme.c"},
		[2]string{"stderr", "wlan.c:10:2: warning: unused variable 'x'"},
		[2]string{"stdout", "Size of flash image is 1537024 bytes"},
	)
	out := c.finalize(time.Second)

	assert.Equal(t, schema.StatusSuccess, out.Status)
	assert.False(t, out.MustRerun)
	require.NotNil(t, out.ImageSize)
	assert.Equal(t, int64(1537024), *out.ImageSize)
	assert.Equal(t, 2, progress.ticks)
	assert.Equal(t, 1, progress.finished)
	assert.Contains(t, out.Logs[schema.WarningLog], "unused variable")
	assert.Contains(t, out.RawLog, "unused variable")
	assert.Empty(t, out.Logs[schema.ErrorLog])
}

func TestCollectorFailedBuild(t *testing.T) {
	c := newOutcomeCollector(nil, nil, nil, nil)

	feed(c,
		[2]string{"stderr", "In file included from wlan.c:20:"},
		[2]string{"stderr", "sme.c:88:10: error: expected ';' before 'return'"},
		[2]string{"stdout", "make: *** [all] Error 2"},
	)
	out := c.finalize(time.Second)

	assert.Equal(t, schema.StatusFailure, out.Status)
	assert.Equal(t, schema.ReasonCompileFailed, out.FailReason)
	assert.Nil(t, out.ImageSize)
	// Buffered context precedes the diagnostic it belongs to.
	assert.Equal(t,
		"In file included from wlan.c:20:\nsme.c:88:10: error: expected ';' before 'return'\n",
		out.Logs[schema.ErrorLog])
}

func TestCollectorContextFlushedOncePerDiagnostic(t *testing.T) {
	c := newOutcomeCollector(nil, nil, nil, nil)

	feed(c,
		[2]string{"stderr", "In file included from wlan.c:20:"},
		[2]string{"stderr", "wlan.c:10:2: warning: unused variable 'x'"},
		[2]string{"stderr", "wlan.c:11:2: warning: unused variable 'y'"},
	)
	out := c.finalize(time.Second)

	assert.Equal(t,
		"In file included from wlan.c:20:\nwlan.c:10:2: warning: unused variable 'x'\n"+
			"wlan.c:11:2: warning: unused variable 'y'\n",
		out.Logs[schema.WarningLog])
}

func TestCollectorRerunRequested(t *testing.T) {
	c := newOutcomeCollector(nil, nil, nil, nil)

	feed(c, [2]string{"stdout", "Please run make again!"})
	out := c.finalize(time.Second)

	assert.True(t, out.MustRerun)
	// A rerun pass is neither success nor failure.
	assert.Equal(t, schema.StatusPending, out.Status)
}

func TestCollectorNoiseDropped(t *testing.T) {
	c := newOutcomeCollector(nil, nil, nil, nil)

	feed(c, [2]string{"stderr", "/tmp/ccG12abc.s: Assembler messages:"})
	out := c.finalize(time.Second)

	assert.Empty(t, out.Logs)
	// Noise still lands in the raw archive.
	assert.Contains(t, out.RawLog, "/tmp/cc")
}

func TestCollectorFeedsCensus(t *testing.T) {
	census := NewWarningCensus()
	require.NoError(t, census.SelectGeneration(schema.NewGeneration))

	c := newOutcomeCollector(nil, census, nil, nil)
	feed(c,
		[2]string{"stderr", "wlan.c:10:2: warning: unused variable 'x'"},
		[2]string{"stderr", "wlan.c:55:2: warning: unused variable 'x'"},
	)

	assert.Equal(t, 2,
		census.Count(schema.NewGeneration, "wlan.c:#:#: warning: unused variable 'x'"))
}

func TestCollectorCensusGetsContextBlock(t *testing.T) {
	census := NewWarningCensus()
	require.NoError(t, census.SelectGeneration(schema.NewGeneration))

	c := newOutcomeCollector(nil, census, nil, nil)
	feed(c,
		[2]string{"stderr", "wlan.c: In function 'foo':"},
		[2]string{"stderr", "wlan.c:10:2: warning: unused variable 'x'"},
	)

	// The context and its warning count as one unit under one key, so a
	// multi-line warning that moves functions is a real delta.
	assert.Equal(t, 1,
		census.Count(schema.NewGeneration,
			"wlan.c: In function 'foo':\nwlan.c:#:#: warning: unused variable 'x'"))
	assert.Equal(t, 0,
		census.Count(schema.NewGeneration, "wlan.c:#:#: warning: unused variable 'x'"))
}

// scriptedRunner returns canned outcomes per pass via the runOnce hook and
// records the cleanFirst flag each pass was invoked with.
func scriptedRunner(t *testing.T, outcomes []*schema.BuildOutcome) (*BuildRunner, *[]bool) {
	t.Helper()
	r := NewBuildRunner("/repo", 0)
	pass := 0
	cleans := &[]bool{}
	r.runOnce = func(_ context.Context, _ schema.Target, cleanFirst bool) (*schema.BuildOutcome, error) {
		require.Less(t, pass, len(outcomes), "more passes than scripted")
		*cleans = append(*cleans, cleanFirst)
		out := outcomes[pass]
		pass++
		return out, nil
	}
	return r, cleans
}

func rerunOutcome() *schema.BuildOutcome {
	out := schema.NewBuildOutcome(nil)
	out.MustRerun = true
	return out
}

func successOutcome() *schema.BuildOutcome {
	out := schema.NewBuildOutcome(nil)
	out.Status = schema.StatusSuccess
	return out
}

func TestRunToCompletionSinglePass(t *testing.T) {
	target, ok := schema.TargetByID(schema.RS9117A0)
	require.True(t, ok)

	r, _ := scriptedRunner(t, []*schema.BuildOutcome{successOutcome()})
	out, err := r.RunToCompletion(context.Background(), target, 5)
	require.NoError(t, err)
	assert.Equal(t, schema.StatusSuccess, out.Status)
	assert.Equal(t, 1, out.Passes)
}

func TestRunToCompletionHonorsRerun(t *testing.T) {
	target, ok := schema.TargetByID(schema.RS9117A0)
	require.True(t, ok)

	r, cleans := scriptedRunner(t, []*schema.BuildOutcome{
		rerunOutcome(), rerunOutcome(), successOutcome(),
	})
	out, err := r.RunToCompletion(context.Background(), target, 5)
	require.NoError(t, err)
	assert.Equal(t, schema.StatusSuccess, out.Status)
	assert.Equal(t, 3, out.Passes)
	// Only the first pass starts from a clean tree; rerun passes build on
	// what the previous pass produced.
	assert.Equal(t, []bool{true, false, false}, *cleans)
}

func TestRunToCompletionRerunLimit(t *testing.T) {
	target, ok := schema.TargetByID(schema.RS9117A0)
	require.True(t, ok)

	outcomes := make([]*schema.BuildOutcome, 5)
	for i := range outcomes {
		outcomes[i] = rerunOutcome()
	}
	r, _ := scriptedRunner(t, outcomes)

	out, err := r.RunToCompletion(context.Background(), target, 5)
	require.NoError(t, err)
	assert.Equal(t, schema.StatusFailure, out.Status)
	assert.Equal(t, schema.ReasonRerunExceeded, out.FailReason)
	assert.Equal(t, 5, out.Passes)
}

func TestRunToCompletionPropagatesRunError(t *testing.T) {
	target, ok := schema.TargetByID(schema.RS9117A0)
	require.True(t, ok)

	wantErr := errors.New("launch failed")
	r := NewBuildRunner("/repo", 0)
	r.runOnce = func(context.Context, schema.Target, bool) (*schema.BuildOutcome, error) {
		return nil, wantErr
	}

	_, err := r.RunToCompletion(context.Background(), target, 5)
	assert.ErrorIs(t, err, wantErr)
}

// writeFakeMake installs a build-tool stand-in on PATH that logs every argv
// line to the returned file, then runs the given shell fragment.
func writeFakeMake(t *testing.T, script string) string {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available in PATH")
	}

	dir := t.TempDir()
	argLog := filepath.Join(dir, "argv.log")
	body := "#!/bin/sh\necho \"$@\" >> \"" + argLog + "\"\n" + script
	require.NoError(t, os.WriteFile(filepath.Join(dir, "make"), []byte(body), 0o755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return argLog
}

// fakeRepo lays out the invocation directory the runner expects.
func fakeRepo(t *testing.T, target schema.Target) string {
	t.Helper()
	repo := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(repo, target.InvocDir), 0o755))
	return repo
}

func TestRunToCompletionCleansOnlyOnce(t *testing.T) {
	target, ok := schema.TargetByID(schema.RS9117A0)
	require.True(t, ok)

	state := filepath.Join(t.TempDir(), "second-pass")
	argLog := writeFakeMake(t, `
case "$*" in
  clean) exit 0 ;;
  *--dry-run*) echo "<builtin>: update target 'wlan.o' due to: wlan.c"; exit 0 ;;
esac
if [ ! -f "`+state+`" ]; then
  touch "`+state+`"
  echo "Please run make again!"
else
  echo "Size of flash image is 1024 bytes"
fi
`)

	r := NewBuildRunner(fakeRepo(t, target), 0)
	out, err := r.RunToCompletion(context.Background(), target, 5)
	require.NoError(t, err)
	assert.Equal(t, schema.StatusSuccess, out.Status)
	assert.Equal(t, 2, out.Passes)

	data, err := os.ReadFile(argLog)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "clean", lines[0], "the first invocation cleans the tree")
	assert.Equal(t, 1, strings.Count(string(data), "clean"), "rerun passes build on the previous pass")
}

func TestRunOnceBuildsWhenEstimateFails(t *testing.T) {
	target, ok := schema.TargetByID(schema.RS9117A0)
	require.True(t, ok)

	// The dry run emits a line past the scanner limit, so the estimate
	// errors out; the real build must still run.
	writeFakeMake(t, `
case "$*" in
  *--dry-run*)
    head -c 2097152 /dev/zero | tr '\0' 'x'
    echo ""
    exit 0 ;;
esac
echo "Size of flash image is 1024 bytes"
`)

	r := NewBuildRunner(fakeRepo(t, target), 0)
	out, err := r.RunOnce(context.Background(), target, false)
	require.NoError(t, err)
	assert.Equal(t, schema.StatusSuccess, out.Status)
}

func TestBuildArgs(t *testing.T) {
	target, ok := schema.TargetByID(schema.RS9116A11)
	require.True(t, ok)

	r := NewBuildRunner("/repo", 0)
	assert.Equal(t,
		[]string{"chip=9118", "rev=2", "-j", "-Orecurse", "--trace"},
		r.buildArgs(target))

	r.Jobs = 8
	assert.Equal(t,
		[]string{"chip=9118", "rev=2", "-j8", "-Orecurse", "--trace"},
		r.buildArgs(target))

	assert.Equal(t,
		[]string{"chip=9118", "rev=2", "--trace", "--dry-run"},
		r.dryRunArgs(target))
}
