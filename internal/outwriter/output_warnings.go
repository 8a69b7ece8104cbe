package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/huangsam/fwchore/internal/contract"
	"github.com/huangsam/fwchore/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// warningDelta is one normalized warning with its count change.
type warningDelta struct {
	Change  string `json:"change"` // "added" or "removed"
	Count   int    `json:"count"`
	Warning string `json:"warning"`
}

// WriteWarningDiff outputs the warning delta, dispatching based on the output
// format configured.
func WriteWarningDiff(report schema.DiffReport, cfg *contract.Config, outputFile string) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(outputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(outputFile, func(w io.Writer) error {
			csvWriter := csv.NewWriter(w)
			defer csvWriter.Flush()
			return writeWarningCSV(csvWriter, report)
		}, "Wrote CSV")
	default:
		// Default to human-readable table
		return writeWithFile(outputFile, func(w io.Writer) error {
			return writeWarningTable(report, cfg, w)
		}, "Wrote table")
	}
}

// flattenDeltas turns the report maps into sorted rows, added first.
func flattenDeltas(report schema.DiffReport) []warningDelta {
	var deltas []warningDelta
	for _, warning := range sortedKeys(report.Added) {
		deltas = append(deltas, warningDelta{Change: "added", Count: report.Added[warning], Warning: warning})
	}
	for _, warning := range sortedKeys(report.Removed) {
		deltas = append(deltas, warningDelta{Change: "removed", Count: report.Removed[warning], Warning: warning})
	}
	return deltas
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// writeWarningTable generates and writes the human-readable warning delta.
func writeWarningTable(report schema.DiffReport, cfg *contract.Config, writer io.Writer) error {
	if report.Empty() {
		_, err := fmt.Fprintln(writer, "No warning changes against the base branch 🎉")
		return err
	}

	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Change", "Count", "Warning"})

	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignLeft
	})

	var data [][]string
	for _, delta := range flattenDeltas(report) {
		change := delta.Change
		if cfg.UseColors {
			if delta.Change == "added" {
				change = contract.FailColor.Sprint(delta.Change)
			} else {
				change = contract.PassColor.Sprint(delta.Change)
			}
		}
		data = append(data, []string{change, strconv.Itoa(delta.Count), delta.Warning})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(writer, "%d warnings added, %d removed\n", report.AddedTotal, report.RemovedTotal)
	return err
}

// writeWarningCSV writes the warning delta in CSV format.
func writeWarningCSV(w *csv.Writer, report schema.DiffReport) error {
	if err := w.Write([]string{"change", "count", "warning"}); err != nil {
		return err
	}
	for _, delta := range flattenDeltas(report) {
		rec := []string{delta.Change, strconv.Itoa(delta.Count), delta.Warning}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}
