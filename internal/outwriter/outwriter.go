// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/huangsam/fwchore/internal/contract"
	"github.com/huangsam/fwchore/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/term"
)

// WriteChoreSummary prints the chore summary table after a run.
func WriteChoreSummary(rows []schema.ChoreRow, cfg *contract.Config, duration time.Duration) error {
	return writeChoreTable(rows, cfg, duration, os.Stdout)
}

// writeChoreTable generates and writes the human-readable summary table.
func writeChoreTable(rows []schema.ChoreRow, cfg *contract.Config, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"#", "Chore", "Result", "Comment"})

	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignLeft
	})

	maxComment := getMaxTableCommentWidth(cfg)
	var data [][]string
	for i, row := range rows {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			row.Name,
			formatResult(row.Result, cfg),
			contract.TruncatePath(row.Comment, maxComment),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	passed := 0
	for _, row := range rows {
		if row.Result == schema.ResultPass || row.Result == schema.ResultDone {
			passed++
		}
	}
	if _, err := fmt.Fprintf(writer, "Completed %d chores (%d passed) in %v\n", len(rows), passed, duration.Round(time.Second)); err != nil {
		return err
	}
	return nil
}

// formatResult renders a chore result, colored when the config allows it.
func formatResult(result schema.ChoreResult, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.GetColorLabel(string(result))
	}
	return string(result)
}

// getMaxTableCommentWidth calculates the maximum width for comments in table
// output based on terminal width.
func getMaxTableCommentWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for the rank, chore and result columns plus borders
	baseWidth := 40

	available := termWidth - baseWidth
	if available < 20 {
		// Minimum reasonable comment width
		return 20
	}
	if available > 90 {
		// Maximum comment width to keep rows scannable
		return 90
	}
	return available
}
