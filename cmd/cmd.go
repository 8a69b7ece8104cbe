// Package cmd defines the command-line interface for fwchore.
package cmd

import (
	"github.com/huangsam/fwchore/internal/contract"
	"github.com/huangsam/fwchore/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(warningsCmd)
	rootCmd.AddCommand(styleCmd)
	rootCmd.AddCommand(remoteCmd)
	rootCmd.AddCommand(targetsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("repo", "r", ".", "Path to the firmware repository")
	rootCmd.PersistentFlags().StringP("dest", "d", "", "Directory for built .rps images (default <repo>/out)")
	rootCmd.PersistentFlags().StringP("name", "n", "", "Operator name recorded in build history")
	rootCmd.PersistentFlags().StringP("base", "b", "", "Base branch for warning diffs and style checks (default inferred from the commit log)")
	rootCmd.PersistentFlags().IntP("jobs", "j", 0, "Parallel build jobs (0 = let the build tool decide)")
	rootCmd.PersistentFlags().Int("rerun-limit", contract.DefaultRerunLimit, "Build passes tolerated when the build tool keeps asking to run again")
	rootCmd.PersistentFlags().Bool("break", false, "Stop the chore run at the first failed build")
	rootCmd.PersistentFlags().Bool("force", false, "Build even when the tree hash matches a past success")
	rootCmd.PersistentFlags().Bool("thorough", false, "Include ROM-content checks alongside flash builds")
	rootCmd.PersistentFlags().StringP("output", "o", string(schema.TextOut), "Output format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("history-backend", string(schema.SQLiteBackend), "History backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of buildCmd to Viper
	buildCmd.Flags().Bool("imprint", false, "Commit a dirty working tree for the duration of the run so history records an exact tree")
	if err := viper.BindPFlags(buildCmd.Flags()); err != nil {
		contract.LogFatal("Error binding build flags", err)
	}

	// Bind all flags of styleCmd to Viper
	styleCmd.Flags().Bool("apply", false, "Rewrite files that fail the formatting check")
	if err := viper.BindPFlags(styleCmd.Flags()); err != nil {
		contract.LogFatal("Error binding style flags", err)
	}

	// Bind all flags of historyCmd to Viper
	historyCmd.Flags().IntP("history-limit", "l", contract.DefaultHistoryRow, "Number of runs to display")
	if err := viper.BindPFlags(historyCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
