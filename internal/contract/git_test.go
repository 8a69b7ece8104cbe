package contract

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// skipIfGitNotAvailable skips the test if git binary is not found in PATH
func skipIfGitNotAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git binary not found in PATH: %v", err)
	}
}

// initTestRepo creates a scratch repository with one commit on branch "main".
func initTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		)
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
	}
	run("init", "-b", "main")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.c"), []byte("int a;\n"), 0o644))
	run("add", "a.c")
	run("commit", "-m", "initial")
	return dir
}

// TestMockGitClient_Run ensures the mock correctly records and returns
// expected values when its Run method is called.
func TestMockGitClient_Run(t *testing.T) {
	mockClient := new(MockGitClient)

	const expectedRepoPath = "/path/to/repo"
	expectedArgs := []string{"log", "-1", "--oneline"}
	expectedOutput := []byte("a1b2c3d commit message")
	expectedError := errors.New("mocked git error")

	// The `Run` method implementation in MockGitClient converts the inputs
	// (repoPath string, args ...string) into a single []interface{} array
	// for `m.Called()`. We must match this structure in `.On()`.
	var calledArgs []any
	calledArgs = append(calledArgs, expectedRepoPath)
	for _, arg := range expectedArgs {
		calledArgs = append(calledArgs, arg)
	}

	mockClient.
		On("Run", calledArgs...).
		Return(expectedOutput, expectedError).
		Once()

	actualOutput, actualError := mockClient.Run(context.Background(), expectedRepoPath, expectedArgs...)

	assert.Equal(t, expectedOutput, actualOutput)
	assert.Equal(t, expectedError, actualError)
	mockClient.AssertExpectations(t)
}

// TestNewLocalGitClient tests the constructor for LocalGitClient.
func TestNewLocalGitClient(t *testing.T) {
	client := NewLocalGitClient()
	assert.NotNil(t, client, "NewLocalGitClient should return a non-nil client")
	assert.IsType(t, &LocalGitClient{}, client)
}

// TestLocalGitClient_Run tests the Run method with various scenarios.
func TestLocalGitClient_Run(t *testing.T) {
	skipIfGitNotAvailable(t)

	client := NewLocalGitClient()
	ctx := context.Background()
	repo := initTestRepo(t)

	tests := []struct {
		name        string
		repoPath    string
		args        []string
		expectError bool
	}{
		{
			name:     "valid status",
			repoPath: repo,
			args:     []string{"status", "--porcelain"},
		},
		{
			name:        "invalid repo path",
			repoPath:    "/nonexistent/path",
			args:        []string{"status"},
			expectError: true,
		},
		{
			name:        "invalid git command",
			repoPath:    repo,
			args:        []string{"invalid-command"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Run(ctx, tt.repoPath, tt.args...)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestLocalGitClient_RepoState exercises the read-only state queries.
func TestLocalGitClient_RepoState(t *testing.T) {
	skipIfGitNotAvailable(t)

	client := NewLocalGitClient()
	ctx := context.Background()
	repo := initTestRepo(t)

	root, err := client.RepoRoot(ctx, repo)
	assert.NoError(t, err)
	assert.NotEmpty(t, root)

	head, err := client.HeadHash(ctx, repo)
	assert.NoError(t, err)
	assert.Len(t, head, 40)

	short, err := client.ShortHeadHash(ctx, repo)
	assert.NoError(t, err)
	assert.NotEmpty(t, short)
	assert.Less(t, len(short), 40)

	tree, err := client.TreeHash(ctx, repo)
	assert.NoError(t, err)
	assert.Len(t, tree, 40)
	assert.NotEqual(t, head, tree)

	branch, err := client.CurrentBranch(ctx, repo)
	assert.NoError(t, err)
	assert.Equal(t, "main", branch)

	dirty, err := client.IsDirty(ctx, repo)
	assert.NoError(t, err)
	assert.False(t, dirty)

	// RepoRoot fails outside any repository
	_, err = client.RepoRoot(ctx, "/nonexistent/path")
	assert.Error(t, err)
}

// TestLocalGitClient_DirtyAndRestore covers working-tree mutation helpers.
func TestLocalGitClient_DirtyAndRestore(t *testing.T) {
	skipIfGitNotAvailable(t)

	client := NewLocalGitClient()
	ctx := context.Background()
	repo := initTestRepo(t)

	require.NoError(t, os.WriteFile(filepath.Join(repo, "a.c"), []byte("int b;\n"), 0o644))

	dirty, err := client.IsDirty(ctx, repo)
	assert.NoError(t, err)
	assert.True(t, dirty)

	files, err := client.DiffNameOnly(ctx, repo, "HEAD")
	assert.NoError(t, err)
	assert.Equal(t, []string{"a.c"}, files)

	// Restore tolerates a mix of known and unknown paths.
	assert.NoError(t, client.RestorePaths(ctx, repo, []string{"a.c", "missing.c"}))

	dirty, err = client.IsDirty(ctx, repo)
	assert.NoError(t, err)
	assert.False(t, dirty)
}

// TestLocalGitClient_Refs covers ref verification and ancestry queries.
func TestLocalGitClient_Refs(t *testing.T) {
	skipIfGitNotAvailable(t)

	client := NewLocalGitClient()
	ctx := context.Background()
	repo := initTestRepo(t)

	assert.NoError(t, client.VerifyRef(ctx, repo, "main"))
	assert.Error(t, client.VerifyRef(ctx, repo, "no-such-branch"))

	head, err := client.HeadHash(ctx, repo)
	require.NoError(t, err)

	base, err := client.MergeBase(ctx, repo, "main", "HEAD")
	assert.NoError(t, err)
	assert.Equal(t, head, base)

	ok, err := client.IsAncestor(ctx, repo, head, "HEAD")
	assert.NoError(t, err)
	assert.True(t, ok)

	out, err := client.DecoratedLog(ctx, repo, "HEAD")
	assert.NoError(t, err)
	assert.Contains(t, out, "main")
}
