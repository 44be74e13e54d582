package agg

import (
	"sort"
	"time"

	"github.com/huangsam/branchspot/schema"
)

// DefaultTopContributors is the leaderboard size used when none is given.
const DefaultTopContributors = 10

// Summarize computes every aggregate of a run. It is a pure function of its inputs.
func Summarize(repoPath, defaultBranch string, branches []schema.BranchAnalysis, top int, now time.Time) (schema.RepositorySummary, schema.BranchStatistics, schema.ActivityOverview) {
	return BuildSummary(repoPath, defaultBranch, branches),
		BuildStatistics(branches, now),
		BuildActivityOverview(branches, top)
}

// BuildSummary counts branches by kind and state.
func BuildSummary(repoPath, defaultBranch string, branches []schema.BranchAnalysis) schema.RepositorySummary {
	s := schema.RepositorySummary{
		Path:          repoPath,
		DefaultBranch: defaultBranch,
		TotalBranches: len(branches),
	}
	for _, b := range branches {
		switch b.Kind {
		case schema.RemoteBranch:
			s.RemoteBranches++
		default:
			s.LocalBranches++
		}
		if b.Stale {
			s.StaleBranches++
		}
		if b.Mergeable {
			s.MergeableCount++
		}
		if b.Conflicted() {
			s.ConflictedCount++
		}
	}
	return s
}

// BuildStatistics computes the numeric statistics block.
func BuildStatistics(branches []schema.BranchAnalysis, now time.Time) schema.BranchStatistics {
	var st schema.BranchStatistics
	if len(branches) == 0 {
		return st
	}

	contributors := make(map[string]struct{})
	var totalAhead, totalBehind int
	var ages []int
	for _, b := range branches {
		st.TotalCommits += b.CommitCount
		totalAhead += b.Divergence.Ahead
		totalBehind += b.Divergence.Behind
		st.MaxAhead = max(st.MaxAhead, b.Divergence.Ahead)
		st.MaxBehind = max(st.MaxBehind, b.Divergence.Behind)
		st.TotalLinesTouched += b.Size
		if b.Degraded {
			st.DegradedBranches++
		}
		for _, c := range b.Contributors {
			contributors[c] = struct{}{}
		}

		if b.LastActivity == nil {
			st.BranchesWithoutAge++
			continue
		}
		if st.OldestActivity == nil || b.LastActivity.Before(*st.OldestActivity) {
			st.OldestActivity = b.LastActivity
		}
		if st.NewestActivity == nil || b.LastActivity.After(*st.NewestActivity) {
			st.NewestActivity = b.LastActivity
		}
		ages = append(ages, b.AgeDays(now))
	}

	n := float64(len(branches))
	st.AverageCommits = float64(st.TotalCommits) / n
	st.AverageAhead = float64(totalAhead) / n
	st.AverageBehind = float64(totalBehind) / n
	st.TotalContributors = len(contributors)
	st.MedianAgeDays = median(ages)
	return st
}

// median returns the median of ints, or 0 for an empty slice.
func median(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}

// BuildActivityOverview merges commit-frequency series, attributes commits to
// contributors and counts branch categories. A top of 0 or less uses DefaultTopContributors.
func BuildActivityOverview(branches []schema.BranchAnalysis, top int) schema.ActivityOverview {
	if top <= 0 {
		top = DefaultTopContributors
	}
	return schema.ActivityOverview{
		DailyCommits:    mergeDailySeries(branches),
		TopContributors: rankContributors(branches, top),
		Categories:      countCategories(branches),
	}
}

// mergeDailySeries sums every branch series by date, ordered by date.
func mergeDailySeries(branches []schema.BranchAnalysis) []schema.DailyCount {
	totals := make(map[string]int)
	for _, b := range branches {
		for date, count := range b.CommitFrequency {
			totals[date] += count
		}
	}
	series := make([]schema.DailyCount, 0, len(totals))
	for date, count := range totals {
		series = append(series, schema.DailyCount{Date: date, Count: count})
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Date < series[j].Date
	})
	return series
}

// rankContributors credits ceil(commits / contributors) of each branch to every
// contributor of that branch, then keeps the top entries.
func rankContributors(branches []schema.BranchAnalysis, top int) []schema.ContributorCredit {
	credits := make(map[string]int)
	for _, b := range branches {
		n := len(b.Contributors)
		if n == 0 {
			continue
		}
		share := (b.CommitCount + n - 1) / n
		for _, c := range b.Contributors {
			credits[c] += share
		}
	}

	board := make([]schema.ContributorCredit, 0, len(credits))
	for name, commits := range credits {
		board = append(board, schema.ContributorCredit{Name: name, Commits: commits})
	}
	sort.Slice(board, func(i, j int) bool {
		if board[i].Commits != board[j].Commits {
			return board[i].Commits > board[j].Commits
		}
		return board[i].Name < board[j].Name
	})
	if len(board) > top {
		board = board[:top]
	}
	return board
}

// countCategories buckets branches. A branch counts as exactly one of
// active or stale, and may also count as mergeable or conflicted.
func countCategories(branches []schema.BranchAnalysis) map[schema.BranchCategory]int {
	counts := make(map[schema.BranchCategory]int, len(schema.AllBranchCategories))
	for _, c := range schema.AllBranchCategories {
		counts[c] = 0
	}
	for _, b := range branches {
		if b.Stale {
			counts[schema.StaleCategory]++
		} else {
			counts[schema.ActiveCategory]++
		}
		if b.Mergeable {
			counts[schema.MergeableCategory]++
		}
		if b.Conflicted() {
			counts[schema.ConflictedCategory]++
		}
	}
	return counts
}
