package schema

import "time"

// ProgressFunc observes scheduler progress. Completed values never decrease within a run.
type ProgressFunc func(completed, total int, message string)

// RepositorySummary holds predicate counts over all analyzed branches.
type RepositorySummary struct {
	Path            string `json:"path"`
	DefaultBranch   string `json:"default_branch"`
	TotalBranches   int    `json:"total_branches"`
	LocalBranches   int    `json:"local_branches"`
	RemoteBranches  int    `json:"remote_branches"`
	StaleBranches   int    `json:"stale_branches"`
	MergeableCount  int    `json:"mergeable_branches"`
	ConflictedCount int    `json:"conflicted_branches"`
}

// BranchStatistics is the numeric statistics block of a run.
type BranchStatistics struct {
	TotalCommits       int        `json:"total_commits"`
	AverageCommits     float64    `json:"average_commits"`
	AverageAhead       float64    `json:"average_ahead"`
	AverageBehind      float64    `json:"average_behind"`
	MaxAhead           int        `json:"max_ahead"`
	MaxBehind          int        `json:"max_behind"`
	TotalContributors  int        `json:"total_contributors"`
	TotalLinesTouched  int        `json:"total_lines_touched"`
	DegradedBranches   int        `json:"degraded_branches"`
	OldestActivity     *time.Time `json:"oldest_activity,omitempty"`
	NewestActivity     *time.Time `json:"newest_activity,omitempty"`
	MedianAgeDays      float64    `json:"median_age_days"`
	BranchesWithoutAge int        `json:"branches_without_age"`
}

// DailyCount is one point of the global daily commit series.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// ContributorCredit is one leaderboard entry. Commits are an approximation:
// each branch credits ceil(commits / contributors) to every contributor.
type ContributorCredit struct {
	Name    string `json:"name"`
	Commits int    `json:"commits"`
}

// ActivityOverview is the time and contributor view over all branches.
type ActivityOverview struct {
	DailyCommits    []DailyCount           `json:"daily_commits"`
	TopContributors []ContributorCredit    `json:"top_contributors"`
	Categories      map[BranchCategory]int `json:"categories"`
}

// AnalysisResult is everything a single run produces.
type AnalysisResult struct {
	Summary     RepositorySummary `json:"summary"`
	Branches    []BranchAnalysis  `json:"branches"`
	Statistics  BranchStatistics  `json:"statistics"`
	Activity    ActivityOverview  `json:"activity"`
	Depth       AnalysisDepth     `json:"depth"`
	GeneratedAt time.Time         `json:"generated_at"`
	Duration    time.Duration     `json:"duration_ns"`
}

// FindBranch returns the analysis for a branch name.
func (r *AnalysisResult) FindBranch(name string) (BranchAnalysis, bool) {
	for _, b := range r.Branches {
		if b.Name == name {
			return b, true
		}
	}
	return BranchAnalysis{}, false
}
