package schema

// Custom string types for type safety.
type (
	// BuildStatus represents the lifecycle state of one build attempt.
	BuildStatus string

	// StreamSource identifies which child-process stream a line came from.
	StreamSource string

	// LineCategory is the classification assigned to one line of build output.
	LineCategory string

	// LogCategory names a bucket of accumulated diagnostic text.
	LogCategory string

	// Generation selects which side of the warning census is active.
	Generation string

	// ChoreResult is the summary-table verdict for one chore.
	ChoreResult string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for build history.
	DatabaseBackend string
)

// All build statuses supported.
const (
	StatusPending   BuildStatus = "pending" // default
	StatusSuccess   BuildStatus = "success"
	StatusFailure   BuildStatus = "failure"
	StatusCancelled BuildStatus = "cancelled"
)

// Child-process output streams.
const (
	Stdout StreamSource = "stdout"
	Stderr StreamSource = "stderr"
)

// All line categories, in the order the classifier considers them.
const (
	SuccessMarker     LineCategory = "success-marker"
	RerunMarker       LineCategory = "rerun-marker"
	ProgressTick      LineCategory = "progress-tick"
	IgnoredStdout     LineCategory = "ignored-stdout"
	IgnoredNoise      LineCategory = "ignored-noise"
	LinkerDiagnostic  LineCategory = "linker"
	ErrorDiagnostic   LineCategory = "error"
	WarningDiagnostic LineCategory = "warning"
	ContextLine       LineCategory = "context"
)

// Log buckets accumulated per build attempt.
const (
	LinkerLog  LogCategory = "linker"
	ErrorLog   LogCategory = "error"
	WarningLog LogCategory = "warning"
)

// Census generations.
const (
	OldGeneration Generation = "old"
	NewGeneration Generation = "new"
)

// All chore results rendered in the summary table.
const (
	ResultPass ChoreResult = "PASS"
	ResultFail ChoreResult = "FAIL"
	ResultDone ChoreResult = "DONE"
	ResultSkip ChoreResult = "SKIP"
	ResultNA   ChoreResult = "N/A"
)

// All output modes supported.
const (
	TextOut OutputMode = "text" // default
	CSVOut  OutputMode = "csv"
	JSONOut OutputMode = "json"
)

// All history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut: {},
	CSVOut:  {},
	JSONOut: {},
}

// ValidDatabaseBackends lists all valid history backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidGenerations lists all valid census generations.
var ValidGenerations = map[Generation]struct{}{
	OldGeneration: {},
	NewGeneration: {},
}
