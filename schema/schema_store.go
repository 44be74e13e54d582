package schema

import "time"

// BranchMetrics is the per-branch row recorded for every tracked run.
type BranchMetrics struct {
	AnalysisTime      time.Time
	BranchName        string
	Kind              BranchKind
	Depth             AnalysisDepth
	CommitCount       int
	Ahead             int
	Behind            int
	ContributorCount  int
	ConflictFileCount int
	Size              int
	Stale             bool
	Mergeable         bool
	Degraded          bool
	LastActivity      *time.Time
}

// NewBranchMetrics projects a BranchAnalysis onto its stored metrics row.
func NewBranchMetrics(b BranchAnalysis, analysisTime time.Time) BranchMetrics {
	return BranchMetrics{
		AnalysisTime:      analysisTime,
		BranchName:        b.Name,
		Kind:              b.Kind,
		Depth:             b.Depth,
		CommitCount:       b.CommitCount,
		Ahead:             b.Divergence.Ahead,
		Behind:            b.Divergence.Behind,
		ContributorCount:  len(b.Contributors),
		ConflictFileCount: b.ConflictFileCount,
		Size:              b.Size,
		Stale:             b.Stale,
		Mergeable:         b.Mergeable,
		Degraded:          b.Degraded,
		LastActivity:      b.LastActivity,
	}
}

// AnalysisRunRecord represents a row from the branchspot_analysis_runs table.
type AnalysisRunRecord struct {
	AnalysisID            int64
	RepoPath              string
	DefaultBranch         string
	StartTime             time.Time
	EndTime               *time.Time
	RunDurationMs         *int32
	TotalBranchesAnalyzed int32
	ConfigParams          *string
}

// BranchMetricsRecord represents a row from the branchspot_branch_metrics table.
type BranchMetricsRecord struct {
	AnalysisID        int64
	BranchName        string
	AnalysisTime      time.Time
	Kind              string
	Depth             string
	CommitCount       int32
	Ahead             int32
	Behind            int32
	ContributorCount  int32
	ConflictFileCount int32
	Size              int32
	Stale             bool
	Mergeable         bool
	Degraded          bool
	LastActivity      *time.Time
}
