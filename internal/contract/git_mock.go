package contract

import (
	"context"
	"time"

	"github.com/huangsam/branchspot/schema"
	"github.com/stretchr/testify/mock"
)

// MockGitClient is a testify mock of GitClient.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Run implements the GitClient interface.
func (m *MockGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	mockArgs := []any{ctx, repoPath}
	for _, arg := range args {
		mockArgs = append(mockArgs, arg)
	}
	ret := m.Called(mockArgs...)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// GetRepoRoot implements the GitClient interface.
func (m *MockGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	ret := m.Called(ctx, contextPath)
	return ret.String(0), ret.Error(1)
}

// GetRepoHash implements the GitClient interface.
func (m *MockGitClient) GetRepoHash(ctx context.Context, repoPath string) (string, error) {
	ret := m.Called(ctx, repoPath)
	return ret.String(0), ret.Error(1)
}

// GetRemoteHead implements the GitClient interface.
func (m *MockGitClient) GetRemoteHead(ctx context.Context, repoPath string) (string, error) {
	ret := m.Called(ctx, repoPath)
	return ret.String(0), ret.Error(1)
}

// GetCurrentBranch implements the GitClient interface.
func (m *MockGitClient) GetCurrentBranch(ctx context.Context, repoPath string) (string, error) {
	ret := m.Called(ctx, repoPath)
	return ret.String(0), ret.Error(1)
}

// ResolveRef implements the GitClient interface.
func (m *MockGitClient) ResolveRef(ctx context.Context, repoPath string, ref string) (string, error) {
	ret := m.Called(ctx, repoPath, ref)
	return ret.String(0), ret.Error(1)
}

// GetMergeBase implements the GitClient interface.
func (m *MockGitClient) GetMergeBase(ctx context.Context, repoPath string, a, b string) (string, error) {
	ret := m.Called(ctx, repoPath, a, b)
	return ret.String(0), ret.Error(1)
}

// ListLocalBranches implements the GitClient interface.
func (m *MockGitClient) ListLocalBranches(ctx context.Context, repoPath string) ([]string, error) {
	ret := m.Called(ctx, repoPath)
	names, _ := ret.Get(0).([]string)
	return names, ret.Error(1)
}

// ListBranches implements the GitClient interface.
func (m *MockGitClient) ListBranches(ctx context.Context, repoPath string) ([]BranchRef, error) {
	ret := m.Called(ctx, repoPath)
	refs, _ := ret.Get(0).([]BranchRef)
	return refs, ret.Error(1)
}

// GetBranchRefs implements the GitClient interface.
func (m *MockGitClient) GetBranchRefs(ctx context.Context, repoPath string) ([]byte, error) {
	ret := m.Called(ctx, repoPath)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// ListMergedBranches implements the GitClient interface.
func (m *MockGitClient) ListMergedBranches(ctx context.Context, repoPath string, target string) ([]string, error) {
	ret := m.Called(ctx, repoPath, target)
	names, _ := ret.Get(0).([]string)
	return names, ret.Error(1)
}

// CountCommits implements the GitClient interface.
func (m *MockGitClient) CountCommits(ctx context.Context, repoPath string, revRange string) (int, error) {
	ret := m.Called(ctx, repoPath, revRange)
	return ret.Int(0), ret.Error(1)
}

// ListCommits implements the GitClient interface.
func (m *MockGitClient) ListCommits(ctx context.Context, repoPath string, revRange string) ([]string, error) {
	ret := m.Called(ctx, repoPath, revRange)
	commits, _ := ret.Get(0).([]string)
	return commits, ret.Error(1)
}

// GetAuthors implements the GitClient interface.
func (m *MockGitClient) GetAuthors(ctx context.Context, repoPath string, ref string, noMerges bool, limit int) ([]string, error) {
	ret := m.Called(ctx, repoPath, ref, noMerges, limit)
	authors, _ := ret.Get(0).([]string)
	return authors, ret.Error(1)
}

// GetCommitDates implements the GitClient interface.
func (m *MockGitClient) GetCommitDates(ctx context.Context, repoPath string, ref string, since time.Time, limit int) ([]time.Time, error) {
	ret := m.Called(ctx, repoPath, ref, since, limit)
	dates, _ := ret.Get(0).([]time.Time)
	return dates, ret.Error(1)
}

// GetCommitStat implements the GitClient interface.
func (m *MockGitClient) GetCommitStat(ctx context.Context, repoPath string, rev string) (schema.DiffStat, error) {
	ret := m.Called(ctx, repoPath, rev)
	stat, _ := ret.Get(0).(schema.DiffStat)
	return stat, ret.Error(1)
}

// GetDiffStat implements the GitClient interface.
func (m *MockGitClient) GetDiffStat(ctx context.Context, repoPath string, base, head string) (schema.DiffStat, error) {
	ret := m.Called(ctx, repoPath, base, head)
	stat, _ := ret.Get(0).(schema.DiffStat)
	return stat, ret.Error(1)
}
