package cmd

import (
	"fmt"

	"github.com/huangsam/fwchore/internal/contract"
	"github.com/huangsam/fwchore/internal/iocache"
	"github.com/huangsam/fwchore/internal/outwriter"
	"github.com/huangsam/fwchore/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historySetup loads minimal configuration needed for history operations.
// This is used by commands that need history access without full shared setup.
func historySetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get history-related config values
	backendStr := viper.GetString("history-backend")
	connStr := viper.GetString("history-db-connect")

	// Handle empty backend as NoneBackend
	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.NoneBackend
	} else {
		backend = schema.DatabaseBackend(backendStr)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Initialize the store with the loaded config
	if err := iocache.InitHistory(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize build history: %w", err)
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.Output = schema.OutputMode(viper.GetString("output"))
	cfg.HistoryLimit = viper.GetInt("history-limit")
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = contract.DefaultHistoryRow
	}

	colors, err := contract.ParseBoolString(viper.GetString("color"))
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors
	cfg.Width = viper.GetInt("width")

	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize the store or create
// tables, allowing migrations to run on a fresh database.
func historyMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backendStr := viper.GetString("history-backend")
	connStr := viper.GetString("history-db-connect")

	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.NoneBackend
	} else {
		backend = schema.DatabaseBackend(backendStr)
	}

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetHistoryDBFilePath()
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr

	return nil
}

// historyMigrateSetupWrapper wraps historyMigrateSetup to provide PreRunE for migrate command.
func historyMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return historyMigrateSetup()
}

// historyCmd lists past build runs and manages the history store.
//
// Note: History subcommands use minimal initialization (historySetup) instead
// of the full sharedSetup used by build commands. This avoids Git repo
// validation for simple history operations.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show and manage recorded build runs",
	Long: `Show past build runs and manage the backing store.

Every build records its target, options, commit and tree hashes, image size
and timing. The tree hash is what lets fwchore skip builds whose sources have
not changed since the last success.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show history store statistics
  export  - Export runs to Parquet for analytics
  clear   - Remove all recorded runs
  migrate - Run database schema migrations

Examples:
  # Last 25 runs
  fwchore history

  # All runs a CI dashboard can ingest
  fwchore history --output json --history-limit 500`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runs, err := iocache.Manager.GetHistoryStore().ListRuns(cfg.HistoryLimit)
		if err != nil {
			contract.LogFatal("Failed to list build runs", err)
		}
		if err := outwriter.WriteHistory(runs, cfg, viper.GetString("output-file")); err != nil {
			contract.LogFatal("Failed to write build runs", err)
		}
	},
}

// historyClearCmd clears the recorded runs.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded build runs",
	Long: `Delete every recorded build run.

WARNING: This action cannot be undone. Consider exporting first.

After clearing, the next build of every target runs from scratch because no
tree hash can match a past success.`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearHistory(cfg.HistoryBackend, contract.GetHistoryDBFilePath(), cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear build history", err)
		}
		fmt.Println("Build history cleared successfully.")
	},
}

// historyStatusCmd shows history store status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display history store statistics and connection details",
	Long: `Show detailed information about the build history store.

Displays:
- Backend type and connection status
- Total number of build runs stored
- Last and oldest run timestamps

Use this to verify history tracking is enabled and the database is healthy.`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetHistoryStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		if err := outwriter.WriteHistoryStatus(status, cfg); err != nil {
			contract.LogFatal("Failed to write history status", err)
		}
	},
}

// historyExportCmd exports build runs to a Parquet file.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded build runs to Parquet for analytics",
	Long: `Export all recorded build runs to Parquet format for use with analytics
tools such as DuckDB, pandas and Apache Spark.

Requires: --output-file parameter

Examples:
  # Export all runs
  fwchore history export --output-file fwchore-runs.parquet

  # Query with DuckDB
  duckdb -c "SELECT target, count(*) FROM read_parquet('fwchore-runs.parquet.build_runs.parquet') GROUP BY target"`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteHistoryExport(viper.GetString("output-file")); err != nil {
			contract.LogFatal("Failed to export build history", err)
		}
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the build history store.

By default, migrates to the latest version. Use --target-version for specific
versions.

Examples:
  # Migrate to latest version (default)
  fwchore history migrate

  # Migrate to specific version
  fwchore history migrate --target-version 1

  # Rollback everything
  fwchore history migrate --target-version 0`,
	PreRunE: historyMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
