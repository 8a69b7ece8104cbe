package contract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/fwchore/schema"
)

// Default values for configuration.
const (
	DefaultRerunLimit = 5
	MaxRerunLimit     = 20
	DefaultHistoryRow = 25
)

// Config holds the runtime configuration for a chore run.
// This struct remains the "final, validated" config.
type Config struct {
	RepoRoot  string // absolute path to the firmware repository root
	DestDir   string // where build artifacts (.rps images) are copied
	Name      string // operator name recorded in build history
	ShortHash string // abbreviated HEAD hash, used in artifact names

	BaseBranch string // reference branch for warning diffs and style checks
	Jobs       int    // parallel build jobs (0 = let the build tool decide)
	RerunLimit int    // rerun-request passes tolerated before giving up

	BreakOnFailure bool // stop the chore run at the first failed build
	ForceRebuild   bool // build even when the tree hash matches a past success
	Thorough       bool // run ROM checks in addition to flash builds
	ApplyStyle     bool // rewrite files that fail the formatting check
	Imprint        bool // commit a fingerprint of the run into the repo

	Output    schema.OutputMode
	UseColors bool // enable colored labels in table output
	Width     int  // terminal width override (0 = auto-detect)

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // please use env var as this is plaintext
	HistoryLimit     int    // rows shown by the history command
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RepoPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Dest             string `mapstructure:"dest"`
	Name             string `mapstructure:"name"`
	Base             string `mapstructure:"base"`
	Jobs             int    `mapstructure:"jobs"`
	RerunLimit       int    `mapstructure:"rerun-limit"`
	Break            bool   `mapstructure:"break"`
	Force            bool   `mapstructure:"force"`
	Thorough         bool   `mapstructure:"thorough"`
	Output           string `mapstructure:"output"`
	Color            string `mapstructure:"color"`
	Width            int    `mapstructure:"width"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`

	// --- Fields from styleCmd.Flags() ---
	Apply bool `mapstructure:"apply"`

	// --- Fields from buildCmd.Flags() ---
	Imprint bool `mapstructure:"imprint"`

	// --- Fields from historyCmd.Flags() ---
	HistoryLimit int `mapstructure:"history-limit"`
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	// All validation functions read from 'input' and populate 'cfg'.
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := resolveRepoRoot(ctx, cfg, client, input); err != nil {
		return err
	}
	if err := resolveDestDir(cfg, input); err != nil {
		return err
	}
	if err := resolveBaseBranch(ctx, cfg, client, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-git related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.Name = strings.TrimSpace(input.Name)
	cfg.BreakOnFailure = input.Break
	cfg.ForceRebuild = input.Force
	cfg.Thorough = input.Thorough
	cfg.ApplyStyle = input.Apply
	cfg.Imprint = input.Imprint
	cfg.Width = input.Width

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Jobs Validation ---
	if input.Jobs < 0 {
		return fmt.Errorf("jobs cannot be negative (received %d)", input.Jobs)
	}
	cfg.Jobs = input.Jobs

	// --- 2. RerunLimit Validation ---
	if input.RerunLimit < 1 || input.RerunLimit > MaxRerunLimit {
		return fmt.Errorf("rerun-limit must be between 1 and %d (received %d)", MaxRerunLimit, input.RerunLimit)
	}
	cfg.RerunLimit = input.RerunLimit

	// --- 3. Output Validation ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", cfg.Output)
	}

	// --- 4. History Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return err
	}

	// --- 5. History Limit Validation ---
	cfg.HistoryLimit = input.HistoryLimit
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultHistoryRow
	}

	return nil
}

// resolveRepoRoot resolves the firmware repository root from the given path.
func resolveRepoRoot(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	searchPath := input.RepoPathStr
	if searchPath == "" {
		searchPath = "."
	}
	absSearchPath, err := filepath.Abs(searchPath)
	if err != nil {
		return err
	}
	absSearchPath = filepath.Clean(absSearchPath)

	info, statErr := os.Stat(absSearchPath)
	gitContextPath := absSearchPath
	if statErr == nil && !info.IsDir() {
		gitContextPath = filepath.Dir(absSearchPath)
	}

	gitRoot, err := client.RepoRoot(ctx, gitContextPath)
	if err != nil {
		return err
	}
	cfg.RepoRoot = gitRoot

	shortHash, err := client.ShortHeadHash(ctx, gitRoot)
	if err != nil {
		return err
	}
	cfg.ShortHash = shortHash

	return nil
}

// resolveDestDir resolves and creates the artifact destination directory.
func resolveDestDir(cfg *Config, input *ConfigRawInput) error {
	dest := input.Dest
	if dest == "" {
		dest = filepath.Join(cfg.RepoRoot, "out")
	}
	expanded, err := ExpandHome(dest)
	if err != nil {
		return err
	}
	absDest, err := filepath.Abs(expanded)
	if err != nil {
		return err
	}
	cfg.DestDir = absDest
	return nil
}

// resolveBaseBranch validates an explicit base branch. An empty value is left
// for the chore engine to infer from the decorated commit log.
func resolveBaseBranch(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	base := strings.TrimSpace(input.Base)
	if base == "" {
		cfg.BaseBranch = ""
		return nil
	}
	if err := client.VerifyRef(ctx, cfg.RepoRoot, base); err != nil {
		return err
	}
	cfg.BaseBranch = base
	return nil
}
