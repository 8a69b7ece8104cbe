package core

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// romContentFile is the memory image a ROM build drops next to the build tree.
const romContentFile = "rom_content_TA.mem"

// CheckROM compares a freshly generated ROM memory image against the golden
// copy committed to the repository. ROM content must never drift: any byte
// difference is a failure.
func CheckROM(repoRoot, invocDir, goldenPath string) error {
	generated := filepath.Join(repoRoot, invocDir, romContentFile)
	golden := filepath.Join(repoRoot, goldenPath)

	genData, err := os.ReadFile(generated)
	if err != nil {
		return fmt.Errorf("read generated ROM content: %w", err)
	}
	goldenData, err := os.ReadFile(golden)
	if err != nil {
		return fmt.Errorf("read golden ROM content: %w", err)
	}

	if len(genData) != len(goldenData) {
		return fmt.Errorf("ROM content size changed: generated %d bytes, golden %d bytes",
			len(genData), len(goldenData))
	}
	if !bytes.Equal(genData, goldenData) {
		return fmt.Errorf("ROM content differs from %s", goldenPath)
	}
	return nil
}
