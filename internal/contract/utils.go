package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Chore result label constants.
const (
	PassValue = "PASS" // build or check succeeded
	FailValue = "FAIL" // build or check failed
	DoneValue = "DONE" // chore completed, no pass/fail semantics
	SkipValue = "SKIP" // chore skipped (unchanged tree, missing input)
	NAValue   = "N/A"  // chore never ran
)

// Color variables for console output.
var (
	PassColor = color.New(color.FgGreen, color.Bold) // passColor marks a successful chore.
	FailColor = color.New(color.FgRed, color.Bold)   // failColor marks a failed chore.
	SkipColor = color.New(color.FgYellow)            // skipColor marks a chore that did not run.
	InfoColor = color.New(color.FgCyan)              // infoColor marks neutral status text.
)

// GetColorLabel returns a colored chore result label for console output (table).
func GetColorLabel(result string) string {
	switch result {
	case PassValue, DoneValue:
		return PassColor.Sprint(result)
	case FailValue:
		return FailColor.Sprint(result)
	case SkipValue:
		return SkipColor.Sprint(result)
	default:
		return InfoColor.Sprint(result)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the
// provided file path. It falls back to os.Stdout for an empty path.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for build history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".fwchore_history.db"
	}
	return filepath.Join(homeDir, ".fwchore_history.db")
}

// ExpandHome expands a leading "~" in a path to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot expand '~' in path %q: %w", path, err)
		}
		return filepath.Join(homeDir, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}

// TruncatePath truncates a path from the left so its tail stays visible.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
