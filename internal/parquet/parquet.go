// Package parquet provides data structures and functions for exporting build
// history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/fwchore/schema"
	"github.com/parquet-go/parquet-go"
)

// BuildRun represents a single firmware build invocation with metadata.
// This struct maps to the fwchore_build_runs database table.
type BuildRun struct {
	// RunID is the unique identifier for this build run
	RunID int64 `parquet:"run_id,snappy"`

	// Target is the firmware target identifier, e.g. 9117-a0
	Target string `parquet:"target,snappy"`

	// Options are the make variables passed to the build
	Options string `parquet:"options,snappy"`

	// Name is an optional operator-chosen label for the run
	Name *string `parquet:"name,optional,snappy"`

	// CommitHash is the commit the build ran at
	CommitHash string `parquet:"commit_hash,snappy"`

	// TreeHash identifies the exact source tree contents
	TreeHash string `parquet:"tree_hash,snappy"`

	// Status is the final build status
	Status string `parquet:"status,snappy"`

	// ImageSize is the flash image size in bytes (nullable)
	ImageSize *int64 `parquet:"image_size,optional,snappy"`

	// ArtifactPath is where the image was copied (nullable)
	ArtifactPath *string `parquet:"artifact_path,optional,snappy"`

	// StartTime is when the build began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the build completed (nullable, stored as TIMESTAMP with nanosecond precision)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`
}

// WriteBuildRunsParquet writes a slice of BuildRun structs to a Parquet file.
func WriteBuildRunsParquet(data []BuildRun, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the BuildRun struct tags
	writer := parquet.NewGenericWriter[BuildRun](file)
	defer func() { _ = writer.Close() }()

	// Write all records to the file
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// ConvertBuildRunRecords converts schema.BuildRunRecord to BuildRun for Parquet export.
func ConvertBuildRunRecords(records []schema.BuildRunRecord) []BuildRun {
	result := make([]BuildRun, len(records))
	for i, record := range records {
		var name *string
		if record.Name != "" {
			n := record.Name
			name = &n
		}
		result[i] = BuildRun{
			RunID:        record.RunID,
			Target:       record.Target,
			Options:      record.Options,
			Name:         name,
			CommitHash:   record.CommitHash,
			TreeHash:     record.TreeHash,
			Status:       record.Status,
			ImageSize:    record.ImageSize,
			ArtifactPath: record.ArtifactPath,
			StartTime:    record.StartTime,
			EndTime:      record.EndTime,
		}
	}
	return result
}
