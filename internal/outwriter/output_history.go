package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/huangsam/fwchore/internal/contract"
	"github.com/huangsam/fwchore/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// historyTimeFormat renders run timestamps in the history table.
const historyTimeFormat = "2006-01-02 15:04:05"

// WriteHistory outputs past build runs, dispatching based on the output format
// configured.
func WriteHistory(runs []schema.BuildRunRecord, cfg *contract.Config, outputFile string) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(outputFile, func(w io.Writer) error {
			return writeHistoryJSON(w, runs)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(outputFile, func(w io.Writer) error {
			csvWriter := csv.NewWriter(w)
			defer csvWriter.Flush()
			return writeHistoryCSV(csvWriter, runs)
		}, "Wrote CSV")
	default:
		// Default to human-readable table
		return writeWithFile(outputFile, func(w io.Writer) error {
			return writeHistoryTable(runs, cfg, w)
		}, "Wrote table")
	}
}

// WriteHistoryStatus prints status information about the history store.
func WriteHistoryStatus(status schema.HistoryStatus, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		return writeJSON(os.Stdout, status)
	}

	fmt.Printf("Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)
	if status.TotalRuns > 0 {
		fmt.Printf("Last run: %s\n", status.LastRunTime.Format(historyTimeFormat))
		fmt.Printf("Oldest run: %s\n", status.OldestRunTime.Format(historyTimeFormat))
	}
	return nil
}

// writeHistoryTable generates and writes the human-readable run listing.
func writeHistoryTable(runs []schema.BuildRunRecord, cfg *contract.Config, writer io.Writer) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(writer, "No build history recorded yet")
		return err
	}

	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Run", "Target", "Status", "Size", "Commit", "Started", "Duration"})

	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, run := range runs {
		status := run.Status
		if cfg.UseColors {
			status = colorStatus(run.Status)
		}
		data = append(data, []string{
			strconv.FormatInt(run.RunID, 10),
			run.Target,
			status,
			formatImageSize(run.ImageSize),
			shortCommit(run.CommitHash),
			run.StartTime.Format(historyTimeFormat),
			formatRunDuration(run),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(writer, "Showing %d runs\n", len(runs))
	return err
}

// writeHistoryCSV writes past build runs in CSV format.
func writeHistoryCSV(w *csv.Writer, runs []schema.BuildRunRecord) error {
	header := []string{
		"run_id",
		"target",
		"options",
		"name",
		"commit_hash",
		"tree_hash",
		"status",
		"image_size",
		"artifact_path",
		"start_time",
		"end_time",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, run := range runs {
		endTime := ""
		if run.EndTime != nil {
			endTime = run.EndTime.Format(time.RFC3339)
		}
		artifact := ""
		if run.ArtifactPath != nil {
			artifact = *run.ArtifactPath
		}
		rec := []string{
			strconv.FormatInt(run.RunID, 10),
			run.Target,
			run.Options,
			run.Name,
			run.CommitHash,
			run.TreeHash,
			run.Status,
			formatImageSize(run.ImageSize),
			artifact,
			run.StartTime.Format(time.RFC3339),
			endTime,
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// writeHistoryJSON writes past build runs in JSON format.
func writeHistoryJSON(w io.Writer, runs []schema.BuildRunRecord) error {
	// Add rank so consumers keep the newest-first ordering
	type jsonRun struct {
		Rank int `json:"rank"`
		schema.BuildRunRecord
	}

	output := make([]jsonRun, len(runs))
	for i, run := range runs {
		output[i] = jsonRun{Rank: i + 1, BuildRunRecord: run}
	}
	return writeJSON(w, output)
}

// colorStatus maps a stored build status onto the result label palette.
func colorStatus(status string) string {
	switch status {
	case string(schema.StatusSuccess):
		return contract.PassColor.Sprint(status)
	case string(schema.StatusFailure):
		return contract.FailColor.Sprint(status)
	case string(schema.StatusCancelled):
		return contract.SkipColor.Sprint(status)
	default:
		return contract.InfoColor.Sprint(status)
	}
}

func formatImageSize(size *int64) string {
	if size == nil {
		return "-"
	}
	return strconv.FormatInt(*size, 10)
}

func shortCommit(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}

func formatRunDuration(run schema.BuildRunRecord) string {
	if run.EndTime == nil {
		return "-"
	}
	return run.EndTime.Sub(run.StartTime).Round(time.Second).String()
}
