package iocache

import (
	"errors"
	"fmt"

	"github.com/huangsam/fwchore/internal/parquet"
)

// ExecuteHistoryExport performs the actual export of build history to a Parquet file.
func ExecuteHistoryExport(outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	// Get the history store
	store := Manager.GetHistoryStore()
	if store == nil {
		return errors.New("build history is not initialized")
	}

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}

	if status.TotalRuns == 0 {
		return errors.New("no build history found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total build runs: %d\n", status.TotalRuns)

	// Retrieve all build runs
	runs, err := store.ListRuns(status.TotalRuns)
	if err != nil {
		return fmt.Errorf("failed to retrieve build runs: %w", err)
	}

	// Convert to Parquet format
	parquetRuns := parquet.ConvertBuildRunRecords(runs)

	// Write build runs to Parquet
	runsFile := outputFile + ".build_runs.parquet"
	if err := parquet.WriteBuildRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write build runs: %w", err)
	}
	fmt.Printf("Exported %d build runs to: %s\n", len(parquetRuns), runsFile)

	fmt.Println("\nExport complete! The Parquet file can be used with:")
	fmt.Println("  - Apache Spark")
	fmt.Println("  - Apache Arrow")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}
