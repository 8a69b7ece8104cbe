//go:build basic || database

package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

var (
	// sharedBinaryPath holds the path to a shared fwchore binary built once for all tests.
	sharedBinaryPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	// Run all tests
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getFwchoreBinary returns the path to the fwchore binary, building it once if needed.
func getFwchoreBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		// Create a temp directory for the binary
		var err error
		tempDir, err = os.MkdirTemp("", "fwchore-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		binaryPath := filepath.Join(tempDir, "fwchore")
		buildCmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/fwchore")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		err = buildCmd.Run()
		if err != nil {
			panic(fmt.Sprintf("failed to build fwchore: %v", err))
		}

		sharedBinaryPath = binaryPath
	})

	return sharedBinaryPath
}

// runFwchoreCommand runs the shared binary from the project root.
func runFwchoreCommand(t *testing.T, args ...string) error {
	binaryPath := getFwchoreBinary()
	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = "../" // Run from project root
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Logf("Command failed: %s\nOutput: %s", cmd.String(), string(output))
		return err
	}
	return nil
}
