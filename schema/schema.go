// Package schema has configs, models and shared types for all parts of fwchore.
package schema

import "time"

// Distinct failure reasons carried by a FAILURE outcome.
const (
	ReasonCompileFailed = "compilation failed"
	ReasonRerunExceeded = "stuck in rerun: build tool kept requesting another pass"
)

// BuildOutcome is the result of one build invocation.
// It is created empty at the start of an attempt, mutated as output lines
// arrive, and treated as immutable once the child process terminates.
type BuildOutcome struct {
	Status     BuildStatus            // pending until a marker decides otherwise
	MustRerun  bool                   // build tool asked to be invoked again
	ImageSize  *int64                 // flash image size in bytes, SUCCESS only
	Logs       map[LogCategory]string // categorized diagnostic text blocks
	RawLog     string                 // every diagnostic-stream line, for archival
	FailReason string                 // set on FAILURE for distinct failure modes
	Options    []string               // the build options this attempt ran with
	Passes     int                    // number of invocations consumed (rerun loop)
	Duration   time.Duration
}

// NewBuildOutcome creates a pending outcome for one build attempt.
func NewBuildOutcome(options []string) *BuildOutcome {
	opts := make([]string, len(options))
	copy(opts, options)
	return &BuildOutcome{
		Status:  StatusPending,
		Logs:    make(map[LogCategory]string),
		Options: opts,
	}
}

// Succeeded reports whether the attempt ended with the success marker.
func (o *BuildOutcome) Succeeded() bool {
	return o.Status == StatusSuccess
}

// DiffReport is the read-only result of a warning census diff.
// Counts are multiset deltas: a warning whose count grows from 1 to 3
// contributes 2 to Added, not a wholesale add/remove pair.
type DiffReport struct {
	Added        map[string]int `json:"added"`
	Removed      map[string]int `json:"removed"`
	AddedTotal   int            `json:"added_total"`
	RemovedTotal int            `json:"removed_total"`
}

// Empty reports whether the two generations were identical.
func (r DiffReport) Empty() bool {
	return len(r.Added) == 0 && len(r.Removed) == 0
}

// ChoreRow is one row of the end-of-run summary table.
type ChoreRow struct {
	Name    string
	Result  ChoreResult
	Comment string
}

// RemoteSyncState classifies the relationship between the base branch and its remote.
type RemoteSyncState string

// All remote sync states.
const (
	RemoteUnreachable RemoteSyncState = "unreachable"
	RemoteAhead       RemoteSyncState = "ahead"
	RemoteInSync      RemoteSyncState = "in-sync"
)

// StyleReport summarizes a formatting check over files changed since the merge base.
type StyleReport struct {
	Checked     int      // candidate files examined
	NeedsFormat []string // files that clang-format would rewrite
	Applied     bool     // fixes were written in place
}

// Clean reports whether no file required formatting.
func (r StyleReport) Clean() bool {
	return len(r.NeedsFormat) == 0
}

// BuildRunRecord is one persisted build-history row.
type BuildRunRecord struct {
	RunID        int64
	Target       string
	Options      string
	Name         string
	CommitHash   string
	TreeHash     string
	Status       string
	ImageSize    *int64
	ArtifactPath *string
	StartTime    time.Time
	EndTime      *time.Time
}

// HistoryStatus represents the status of the build-history store.
type HistoryStatus struct {
	Backend        string    `json:"backend"`
	Connected      bool      `json:"connected"`
	TotalRuns      int       `json:"total_runs"`
	LastRunTime    time.Time `json:"last_run_time"`
	OldestRunTime  time.Time `json:"oldest_run_time"`
	TableSizeBytes int64     `json:"table_size_bytes"`
}
