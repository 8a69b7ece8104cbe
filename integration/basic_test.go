//go:build basic

// Package integration contains integration tests for fwchore.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFwchoreVersion verifies the binary starts and reports its version.
func TestFwchoreVersion(t *testing.T) {
	err := runFwchoreCommand(t, "version")
	require.NoError(t, err)
}

// TestFwchoreTargets verifies the target registry renders.
func TestFwchoreTargets(t *testing.T) {
	binaryPath := getFwchoreBinary()
	cmd := exec.Command(binaryPath, "targets")
	cmd.Dir = "../"
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "output: %s", output)

	out := string(output)
	assert.Contains(t, out, "9117-a0")
	assert.Contains(t, out, "9116-a10-rom")
	assert.Contains(t, out, "aliases:")
}

// TestFwchoreHistorySQLite exercises the history commands against a scratch
// SQLite database in an isolated HOME.
func TestFwchoreHistorySQLite(t *testing.T) {
	home := t.TempDir()
	binaryPath := getFwchoreBinary()

	run := func(args ...string) ([]byte, error) {
		cmd := exec.Command(binaryPath, args...)
		cmd.Dir = "../"
		cmd.Env = append(os.Environ(), "HOME="+home)
		return cmd.CombinedOutput()
	}

	output, err := run("history", "status")
	require.NoError(t, err, "output: %s", output)
	assert.Contains(t, string(output), "sqlite")

	output, err = run("history")
	require.NoError(t, err, "output: %s", output)

	output, err = run("history", "clear")
	require.NoError(t, err, "output: %s", output)

	// The default database file lives under HOME.
	_, statErr := os.Stat(filepath.Join(home, ".fwchore_history.db"))
	assert.True(t, os.IsNotExist(statErr), "clear removes the database file")
}
