package core

import (
	"context"
	"os/exec"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/fwchore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineRecorder collects multiplexed lines for assertions.
type lineRecorder struct {
	mu    sync.Mutex
	lines map[schema.StreamSource][]string
}

func newLineRecorder() *lineRecorder {
	return &lineRecorder{lines: make(map[schema.StreamSource][]string)}
}

func (r *lineRecorder) sink(src schema.StreamSource, line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines[src] = append(r.lines[src], line)
}

func (r *lineRecorder) get(src schema.StreamSource) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lines[src]
}

func TestPumpStreamsPreservesPerStreamOrder(t *testing.T) {
	stdout := strings.NewReader("one\ntwo\nthree\n")
	stderr := strings.NewReader("warn-a\nwarn-b\n")

	rec := newLineRecorder()
	err := pumpStreams(context.Background(), stdout, stderr, rec.sink)
	require.NoError(t, err)

	assert.Equal(t, []string{"one", "two", "three"}, rec.get(schema.Stdout))
	assert.Equal(t, []string{"warn-a", "warn-b"}, rec.get(schema.Stderr))
}

func TestPumpStreamsEmptyStreams(t *testing.T) {
	rec := newLineRecorder()
	err := pumpStreams(context.Background(), strings.NewReader(""), strings.NewReader(""), rec.sink)
	require.NoError(t, err)
	assert.Empty(t, rec.get(schema.Stdout))
	assert.Empty(t, rec.get(schema.Stderr))
}

func TestRunStreamedCapturesBothStreams(t *testing.T) {
	skipIfShellNotAvailable(t)

	rec := newLineRecorder()
	err := RunStreamed(context.Background(), t.TempDir(), "sh",
		[]string{"-c", "echo out-line; echo err-line 1>&2"}, rec.sink)
	require.NoError(t, err)

	assert.Equal(t, []string{"out-line"}, rec.get(schema.Stdout))
	assert.Equal(t, []string{"err-line"}, rec.get(schema.Stderr))
}

func TestRunStreamedToleratesNonZeroExit(t *testing.T) {
	skipIfShellNotAvailable(t)

	rec := newLineRecorder()
	err := RunStreamed(context.Background(), t.TempDir(), "sh",
		[]string{"-c", "echo before-failure; exit 2"}, rec.sink)

	// Exit status is advisory; markers decide outcomes.
	assert.NoError(t, err)
	assert.Equal(t, []string{"before-failure"}, rec.get(schema.Stdout))
}

func TestRunStreamedLaunchFailure(t *testing.T) {
	rec := newLineRecorder()
	err := RunStreamed(context.Background(), t.TempDir(), "definitely-not-a-binary-12345", nil, rec.sink)
	assert.Error(t, err)
}

func TestRunStreamedCancellation(t *testing.T) {
	skipIfShellNotAvailable(t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	rec := newLineRecorder()
	err := RunStreamed(ctx, t.TempDir(), "sh", []string{"-c", "sleep 30"}, rec.sink)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func skipIfShellNotAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skipf("sh not found in PATH: %v", err)
	}
}
