package core

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/huangsam/fwchore/schema"
	"golang.org/x/sync/errgroup"
)

// Scanner limits for build output. Generated linker maps can produce very long
// single lines.
const (
	scanInitialBuf = 64 * 1024
	scanMaxLine    = 1024 * 1024
)

// streamLine carries one line of child output tagged with its source stream.
type streamLine struct {
	src  schema.StreamSource
	text string
}

// pumpStreams reads both child streams concurrently and hands every line to
// sink from a single goroutine. Relative order within each stream is
// preserved; interleaving across streams is whatever the scheduler delivers.
func pumpStreams(ctx context.Context, stdout, stderr io.Reader, sink func(schema.StreamSource, string)) error {
	lines := make(chan streamLine, 256)

	g, ctx := errgroup.WithContext(ctx)
	scan := func(src schema.StreamSource, r io.Reader) func() error {
		return func() error {
			scanner := bufio.NewScanner(r)
			scanner.Buffer(make([]byte, 0, scanInitialBuf), scanMaxLine)
			for scanner.Scan() {
				select {
				case lines <- streamLine{src: src, text: scanner.Text()}:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return scanner.Err()
		}
	}
	g.Go(scan(schema.Stdout, stdout))
	g.Go(scan(schema.Stderr, stderr))

	go func() {
		// Both producers have returned before the channel closes, so the
		// consumer below never races a send.
		_ = g.Wait()
		close(lines)
	}()

	for line := range lines {
		sink(line.src, line.text)
	}
	return g.Wait()
}

// RunStreamed launches a child process and feeds its output lines to sink.
// A non-zero exit status is not an error: build outcomes are decided by
// output markers, not exit codes. Context cancellation and failure to launch
// are reported as errors.
func RunStreamed(ctx context.Context, dir string, name string, args []string, sink func(schema.StreamSource, string)) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch %s: %w", name, err)
	}

	pumpErr := pumpStreams(ctx, stdout, stderr, sink)
	waitErr := cmd.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if pumpErr != nil {
		return fmt.Errorf("read %s output: %w", name, pumpErr)
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return nil // outcome comes from markers
	}
	return waitErr
}
