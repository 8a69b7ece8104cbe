package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/huangsam/fwchore/internal/contract"
	"github.com/huangsam/fwchore/schema"
)

// clangFormatConfig is the per-directory marker enabling formatting checks.
// Legacy firmware directories without one are left alone.
const clangFormatConfig = ".clang-format"

// styleExtensions are the file suffixes subject to formatting checks.
var styleExtensions = []string{".c", ".h"}

// CheckStyle runs clang-format over the C sources changed since baseRef.
// With apply set, offending files are rewritten in place; otherwise they are
// only reported.
func CheckStyle(ctx context.Context, git contract.GitClient, repoRoot, baseRef string, apply bool) (schema.StyleReport, error) {
	var report schema.StyleReport

	if _, err := exec.LookPath("clang-format"); err != nil {
		return report, fmt.Errorf("clang-format not found in PATH: %w", err)
	}

	changed, err := git.DiffNameOnly(ctx, repoRoot, baseRef)
	if err != nil {
		return report, fmt.Errorf("list changed files: %w", err)
	}

	for _, rel := range changed {
		if !hasStyleExtension(rel) {
			continue
		}
		abs := filepath.Join(repoRoot, rel)
		if _, statErr := os.Stat(abs); statErr != nil {
			continue // deleted since baseRef
		}
		if !hasFormatConfig(repoRoot, rel) {
			continue
		}
		report.Checked++

		dirty, err := needsFormat(ctx, abs)
		if err != nil {
			return report, fmt.Errorf("clang-format %s: %w", rel, err)
		}
		if !dirty {
			continue
		}
		report.NeedsFormat = append(report.NeedsFormat, rel)
		if apply {
			cmd := exec.CommandContext(ctx, "clang-format", "-i", abs)
			if out, err := cmd.CombinedOutput(); err != nil {
				return report, fmt.Errorf("clang-format -i %s: %s", rel, strings.TrimSpace(string(out)))
			}
			report.Applied = true
		}
	}
	return report, nil
}

// needsFormat reports whether clang-format would rewrite the file.
func needsFormat(ctx context.Context, path string) (bool, error) {
	cmd := exec.CommandContext(ctx, "clang-format", "--dry-run", "-Werror", path)
	err := cmd.Run()
	if err == nil {
		return false, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return true, nil
	}
	return false, err
}

// hasStyleExtension reports whether the path is a C source or header.
func hasStyleExtension(path string) bool {
	ext := filepath.Ext(path)
	for _, want := range styleExtensions {
		if ext == want {
			return true
		}
	}
	return false
}

// hasFormatConfig walks from the file's directory up to the repository root
// looking for a .clang-format file.
func hasFormatConfig(repoRoot, rel string) bool {
	dir := filepath.Dir(filepath.Join(repoRoot, rel))
	root := filepath.Clean(repoRoot)
	for {
		if _, err := os.Stat(filepath.Join(dir, clangFormatConfig)); err == nil {
			return true
		}
		if dir == root || dir == string(filepath.Separator) {
			return false
		}
		dir = filepath.Dir(dir)
	}
}
