package contract

import (
	"context"
	"time"

	"github.com/huangsam/fwchore/schema"
	"github.com/stretchr/testify/mock"
)

// MockGitClient is an autogenerated mock type for the GitClient type.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Run implements the contract.GitClient interface.
func (m *MockGitClient) Run(_ context.Context, repoPath string, args ...string) ([]byte, error) {
	var mockArgs []interface{}
	mockArgs = append(mockArgs, repoPath)
	for _, arg := range args {
		mockArgs = append(mockArgs, arg)
	}
	ret := m.Called(mockArgs...)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// RepoRoot implements the contract.GitClient interface.
func (m *MockGitClient) RepoRoot(_ context.Context, contextPath string) (string, error) {
	ret := m.Called(contextPath)
	root, _ := ret.Get(0).(string)
	return root, ret.Error(1)
}

// HeadHash implements the contract.GitClient interface.
func (m *MockGitClient) HeadHash(_ context.Context, repoPath string) (string, error) {
	ret := m.Called(repoPath)
	hash, _ := ret.Get(0).(string)
	return hash, ret.Error(1)
}

// ShortHeadHash implements the contract.GitClient interface.
func (m *MockGitClient) ShortHeadHash(_ context.Context, repoPath string) (string, error) {
	ret := m.Called(repoPath)
	hash, _ := ret.Get(0).(string)
	return hash, ret.Error(1)
}

// TreeHash implements the contract.GitClient interface.
func (m *MockGitClient) TreeHash(_ context.Context, repoPath string) (string, error) {
	ret := m.Called(repoPath)
	hash, _ := ret.Get(0).(string)
	return hash, ret.Error(1)
}

// CurrentBranch implements the contract.GitClient interface.
func (m *MockGitClient) CurrentBranch(_ context.Context, repoPath string) (string, error) {
	ret := m.Called(repoPath)
	branch, _ := ret.Get(0).(string)
	return branch, ret.Error(1)
}

// IsDirty implements the contract.GitClient interface.
func (m *MockGitClient) IsDirty(_ context.Context, repoPath string) (bool, error) {
	ret := m.Called(repoPath)
	dirty, _ := ret.Get(0).(bool)
	return dirty, ret.Error(1)
}

// VerifyRef implements the contract.GitClient interface.
func (m *MockGitClient) VerifyRef(_ context.Context, repoPath string, ref string) error {
	ret := m.Called(repoPath, ref)
	return ret.Error(0)
}

// MergeBase implements the contract.GitClient interface.
func (m *MockGitClient) MergeBase(_ context.Context, repoPath string, a, b string) (string, error) {
	ret := m.Called(repoPath, a, b)
	base, _ := ret.Get(0).(string)
	return base, ret.Error(1)
}

// IsAncestor implements the contract.GitClient interface.
func (m *MockGitClient) IsAncestor(_ context.Context, repoPath string, anc, desc string) (bool, error) {
	ret := m.Called(repoPath, anc, desc)
	ok, _ := ret.Get(0).(bool)
	return ok, ret.Error(1)
}

// DecoratedLog implements the contract.GitClient interface.
func (m *MockGitClient) DecoratedLog(_ context.Context, repoPath string, ref string) (string, error) {
	ret := m.Called(repoPath, ref)
	out, _ := ret.Get(0).(string)
	return out, ret.Error(1)
}

// DiffNameOnly implements the contract.GitClient interface.
func (m *MockGitClient) DiffNameOnly(_ context.Context, repoPath string, ref string) ([]string, error) {
	ret := m.Called(repoPath, ref)
	files, _ := ret.Get(0).([]string)
	return files, ret.Error(1)
}

// Checkout implements the contract.GitClient interface.
func (m *MockGitClient) Checkout(_ context.Context, repoPath string, ref string) error {
	ret := m.Called(repoPath, ref)
	return ret.Error(0)
}

// CheckoutPrevious implements the contract.GitClient interface.
func (m *MockGitClient) CheckoutPrevious(_ context.Context, repoPath string) error {
	ret := m.Called(repoPath)
	return ret.Error(0)
}

// RestorePaths implements the contract.GitClient interface.
func (m *MockGitClient) RestorePaths(_ context.Context, repoPath string, paths []string) error {
	ret := m.Called(repoPath, paths)
	return ret.Error(0)
}

// CommitAll implements the contract.GitClient interface.
func (m *MockGitClient) CommitAll(_ context.Context, repoPath string, message string) error {
	ret := m.Called(repoPath, message)
	return ret.Error(0)
}

// ResetToParent implements the contract.GitClient interface.
func (m *MockGitClient) ResetToParent(_ context.Context, repoPath string) error {
	ret := m.Called(repoPath)
	return ret.Error(0)
}

// FetchDryRun implements the contract.GitClient interface.
func (m *MockGitClient) FetchDryRun(_ context.Context, repoPath string) (string, bool) {
	ret := m.Called(repoPath)
	out, _ := ret.Get(0).(string)
	reachable, _ := ret.Get(1).(bool)
	return out, reachable
}

// MockHistoryManager is a mock type for the HistoryManager type.
type MockHistoryManager struct {
	mock.Mock
}

var _ HistoryManager = &MockHistoryManager{} // Compile-time check

// GetHistoryStore implements the contract.HistoryManager interface.
func (m *MockHistoryManager) GetHistoryStore() HistoryStore {
	ret := m.Called()
	store, _ := ret.Get(0).(HistoryStore)
	return store
}

// MockHistoryStore is a mock type for the HistoryStore type.
type MockHistoryStore struct {
	mock.Mock
}

var _ HistoryStore = &MockHistoryStore{} // Compile-time check

// BeginRun implements the contract.HistoryStore interface.
func (m *MockHistoryStore) BeginRun(rec schema.BuildRunRecord) (int64, error) {
	ret := m.Called(rec)
	id, _ := ret.Get(0).(int64)
	return id, ret.Error(1)
}

// EndRun implements the contract.HistoryStore interface.
func (m *MockHistoryStore) EndRun(runID int64, endTime time.Time, status string, imageSize *int64, artifactPath *string) error {
	ret := m.Called(runID, endTime, status, imageSize, artifactPath)
	return ret.Error(0)
}

// LastSuccessForTree implements the contract.HistoryStore interface.
func (m *MockHistoryStore) LastSuccessForTree(treeHash string, target string) (*schema.BuildRunRecord, error) {
	ret := m.Called(treeHash, target)
	rec, _ := ret.Get(0).(*schema.BuildRunRecord)
	return rec, ret.Error(1)
}

// ListRuns implements the contract.HistoryStore interface.
func (m *MockHistoryStore) ListRuns(limit int) ([]schema.BuildRunRecord, error) {
	ret := m.Called(limit)
	runs, _ := ret.Get(0).([]schema.BuildRunRecord)
	return runs, ret.Error(1)
}

// GetStatus implements the contract.HistoryStore interface.
func (m *MockHistoryStore) GetStatus() (schema.HistoryStatus, error) {
	ret := m.Called()
	status, _ := ret.Get(0).(schema.HistoryStatus)
	return status, ret.Error(1)
}

// Clear implements the contract.HistoryStore interface.
func (m *MockHistoryStore) Clear() error {
	ret := m.Called()
	return ret.Error(0)
}

// Close implements the contract.HistoryStore interface.
func (m *MockHistoryStore) Close() error {
	ret := m.Called()
	return ret.Error(0)
}
