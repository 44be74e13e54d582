// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/branchspot/schema"
)

// BranchRef is a branch enumerated by GitClient.ListBranches.
type BranchRef struct {
	Name string            // Short name, remote branches keep their remote prefix
	Kind schema.BranchKind // Local or remote
}

// GitClient defines every repository query the branch pipeline issues.
// This allows the core analysis logic to be tested without needing a real git executable.
// Implementations never retry; callers decide whether a failure is fatal or degradable.
type GitClient interface {
	// --- Generic / Low-Level ---

	// Run executes a git command and returns its standard output.
	// Its use should be minimized in favor of the explicit methods below.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// --- Repository / Reference Resolution ---

	// GetRepoRoot returns the absolute path to the root of the Git repository
	// containing the given context path.
	GetRepoRoot(ctx context.Context, contextPath string) (string, error)

	// GetRepoHash returns the current HEAD commit hash of the repository.
	GetRepoHash(ctx context.Context, repoPath string) (string, error)

	// GetRemoteHead returns the branch the origin remote's HEAD points to, without the remote prefix.
	GetRemoteHead(ctx context.Context, repoPath string) (string, error)

	// GetCurrentBranch returns the checked out branch, or an empty string when HEAD is detached.
	GetCurrentBranch(ctx context.Context, repoPath string) (string, error)

	// ResolveRef returns the commit id a reference points to.
	ResolveRef(ctx context.Context, repoPath string, ref string) (string, error)

	// GetMergeBase returns the best common ancestor of two references.
	GetMergeBase(ctx context.Context, repoPath string, a, b string) (string, error)

	// --- Branch Enumeration ---

	// ListLocalBranches returns the short names of all local branches.
	ListLocalBranches(ctx context.Context, repoPath string) ([]string, error)

	// ListBranches returns every local and remote-tracking branch, skipping symbolic refs.
	ListBranches(ctx context.Context, repoPath string) ([]BranchRef, error)

	// GetBranchRefs returns raw ref metadata, one "refname|objectname|committerdate|authorname" line per branch.
	GetBranchRefs(ctx context.Context, repoPath string) ([]byte, error)

	// ListMergedBranches returns the short names of branches already merged into target.
	ListMergedBranches(ctx context.Context, repoPath string, target string) ([]string, error)

	// --- Commit Queries ---

	// CountCommits returns the number of commits in a revision range.
	CountCommits(ctx context.Context, repoPath string, revRange string) (int, error)

	// ListCommits returns the commit ids in a revision range.
	ListCommits(ctx context.Context, repoPath string, revRange string) ([]string, error)

	// GetAuthors returns one author name per commit reachable from ref. A limit of 0 means unlimited.
	GetAuthors(ctx context.Context, repoPath string, ref string, noMerges bool, limit int) ([]string, error)

	// GetCommitDates returns committer dates of commits reachable from ref since a point in time.
	// A limit of 0 means unlimited.
	GetCommitDates(ctx context.Context, repoPath string, ref string, since time.Time, limit int) ([]time.Time, error)

	// --- Diff Statistics ---

	// GetCommitStat returns the numstat summary of a single commit.
	GetCommitStat(ctx context.Context, repoPath string, rev string) (schema.DiffStat, error)

	// GetDiffStat returns the numstat summary of head against its merge base with base.
	GetDiffStat(ctx context.Context, repoPath string, base, head string) (schema.DiffStat, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetBranchStore() CacheStore
	GetAnalysisStore() AnalysisStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// AnalysisStore defines the interface for tracking analysis runs and storing branch metrics.
type AnalysisStore interface {
	// BeginAnalysis creates a new analysis run and returns its unique ID
	BeginAnalysis(repoPath string, startTime time.Time, configParams map[string]any) (int64, error)

	// EndAnalysis updates the analysis run with completion data
	EndAnalysis(analysisID int64, endTime time.Time, defaultBranch string, totalBranches int) error

	// RecordBranchMetrics stores the metrics of one analyzed branch
	RecordBranchMetrics(analysisID int64, metrics schema.BranchMetrics) error

	// GetStatus returns status information about the analysis store
	GetStatus() (schema.AnalysisStatus, error)

	// GetAllAnalysisRuns retrieves all analysis runs ordered by ID
	GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error)

	// GetAllBranchMetrics retrieves all branch metrics ordered by run and branch name
	GetAllBranchMetrics() ([]schema.BranchMetricsRecord, error)

	// Close closes the underlying connection
	Close() error
}
