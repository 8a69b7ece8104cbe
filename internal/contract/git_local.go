package contract

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct{}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

// Run executes a git command and returns its stdout output.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil, fmt.Errorf("git '%v' exit: %s", strings.Join(fullArgs, " "), strings.TrimSpace(string(exitErr.Stderr)))
	} else if err != nil {
		return nil, fmt.Errorf("git '%v' unknown: %w", strings.Join(fullArgs, " "), err)
	}
	return out, nil
}

// runTrimmed runs a git command and returns its output with whitespace trimmed.
func (c *LocalGitClient) runTrimmed(ctx context.Context, repoPath string, args ...string) (string, error) {
	out, err := c.Run(ctx, repoPath, args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// RepoRoot implements the GitClient interface by executing 'git rev-parse --show-toplevel'.
func (c *LocalGitClient) RepoRoot(ctx context.Context, contextPath string) (string, error) {
	return c.runTrimmed(ctx, contextPath, "rev-parse", "--show-toplevel")
}

// HeadHash implements the GitClient interface.
func (c *LocalGitClient) HeadHash(ctx context.Context, repoPath string) (string, error) {
	return c.runTrimmed(ctx, repoPath, "rev-parse", "HEAD")
}

// ShortHeadHash implements the GitClient interface.
func (c *LocalGitClient) ShortHeadHash(ctx context.Context, repoPath string) (string, error) {
	return c.runTrimmed(ctx, repoPath, "rev-parse", "--short", "HEAD")
}

// TreeHash implements the GitClient interface. The tree hash identifies the
// exact source content regardless of commit metadata.
func (c *LocalGitClient) TreeHash(ctx context.Context, repoPath string) (string, error) {
	return c.runTrimmed(ctx, repoPath, "rev-parse", "HEAD^{tree}")
}

// CurrentBranch implements the GitClient interface. A detached HEAD yields "".
func (c *LocalGitClient) CurrentBranch(ctx context.Context, repoPath string) (string, error) {
	out, err := c.runTrimmed(ctx, repoPath, "branch", "--show-current")
	if err != nil {
		return "", err
	}
	return out, nil
}

// IsDirty implements the GitClient interface via 'git status --porcelain'.
func (c *LocalGitClient) IsDirty(ctx context.Context, repoPath string) (bool, error) {
	out, err := c.runTrimmed(ctx, repoPath, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return out != "", nil
}

// VerifyRef implements the GitClient interface.
func (c *LocalGitClient) VerifyRef(ctx context.Context, repoPath string, ref string) error {
	_, err := c.Run(ctx, repoPath, "rev-parse", "--verify", "--quiet", ref+"^{commit}")
	if err != nil {
		return fmt.Errorf("unknown branch or commit '%s': %w", ref, err)
	}
	return nil
}

// MergeBase implements the GitClient interface.
func (c *LocalGitClient) MergeBase(ctx context.Context, repoPath string, a, b string) (string, error) {
	return c.runTrimmed(ctx, repoPath, "merge-base", a, b)
}

// IsAncestor implements the GitClient interface.
func (c *LocalGitClient) IsAncestor(ctx context.Context, repoPath string, anc, desc string) (bool, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", repoPath, "merge-base", "--is-ancestor", anc, desc)
	err := cmd.Run()
	if err == nil {
		return true, nil
	}
	// Exit status 1 means "not an ancestor"; anything else is a real failure.
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return false, nil
	}
	return false, fmt.Errorf("git merge-base --is-ancestor: %w", err)
}

// DecoratedLog implements the GitClient interface.
func (c *LocalGitClient) DecoratedLog(ctx context.Context, repoPath string, ref string) (string, error) {
	out, err := c.Run(ctx, repoPath, "log", "--pretty=format:%D", ref)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// DiffNameOnly implements the GitClient interface.
func (c *LocalGitClient) DiffNameOnly(ctx context.Context, repoPath string, ref string) ([]string, error) {
	out, err := c.runTrimmed(ctx, repoPath, "diff", "--name-only", ref)
	if err != nil {
		return nil, err
	}
	if out == "" {
		return []string{}, nil
	}
	return strings.Split(out, "\n"), nil
}

// Checkout implements the GitClient interface.
func (c *LocalGitClient) Checkout(ctx context.Context, repoPath string, ref string) error {
	_, err := c.Run(ctx, repoPath, "checkout", ref)
	return err
}

// CheckoutPrevious implements the GitClient interface via 'git checkout -'.
func (c *LocalGitClient) CheckoutPrevious(ctx context.Context, repoPath string) error {
	_, err := c.Run(ctx, repoPath, "checkout", "-")
	return err
}

// RestorePaths implements the GitClient interface. Unknown paths are ignored
// because some generated files only exist for a subset of targets.
func (c *LocalGitClient) RestorePaths(ctx context.Context, repoPath string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"checkout", "--"}, paths...)
	if _, err := c.Run(ctx, repoPath, args...); err != nil {
		// Retry one path at a time so a single missing path does not
		// prevent the rest from being restored.
		for _, p := range paths {
			_, _ = c.Run(ctx, repoPath, "checkout", "--", p)
		}
	}
	return nil
}

// CommitAll implements the GitClient interface.
func (c *LocalGitClient) CommitAll(ctx context.Context, repoPath string, message string) error {
	_, err := c.Run(ctx, repoPath, "commit", "-a", "-m", message)
	return err
}

// ResetToParent implements the GitClient interface via a mixed reset.
func (c *LocalGitClient) ResetToParent(ctx context.Context, repoPath string) error {
	_, err := c.Run(ctx, repoPath, "reset", "HEAD~1")
	return err
}

// FetchDryRun implements the GitClient interface. Both output streams are
// captured because git reports fetch candidates on stderr.
func (c *LocalGitClient) FetchDryRun(ctx context.Context, repoPath string) (string, bool) {
	cmd := exec.CommandContext(ctx, "git", "-C", repoPath, "fetch", "--dry-run")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), false
	}
	return string(out), true
}
