// Package algo has the branch selection algorithms of the pipeline.
package algo

import (
	"slices"
	"time"

	"github.com/huangsam/branchspot/schema"
)

// SelectBranches applies the staleness cut and then the ordering and cap.
// The default and current branches survive both steps whenever they are present.
func SelectBranches(facts []schema.BranchFact, defaultBranch string, opts schema.AnalysisOptions, now time.Time) []schema.BranchFact {
	kept := FilterStale(facts, defaultBranch, opts.StaleDaysThreshold, now)
	return PrioritizeBranches(kept, defaultBranch, opts.MaxBranches)
}

// FilterStale drops branches whose last commit is older than thresholdDays.
// A threshold of 0 or less keeps everything. The default and current branches
// are never dropped, and branches with an unknown timestamp are never stale.
func FilterStale(facts []schema.BranchFact, defaultBranch string, thresholdDays int, now time.Time) []schema.BranchFact {
	if thresholdDays <= 0 {
		return slices.Clone(facts)
	}
	cutoff := now.Add(-time.Duration(thresholdDays) * 24 * time.Hour)
	kept := make([]schema.BranchFact, 0, len(facts))
	for _, f := range facts {
		if f.Name == defaultBranch || f.IsCurrent || f.LastCommit == nil || !f.LastCommit.Before(cutoff) {
			kept = append(kept, f)
		}
	}
	return kept
}

// PrioritizeBranches orders branches as default, current, then most recent
// activity first with ties broken by name. It truncates to maxBranches when positive.
func PrioritizeBranches(facts []schema.BranchFact, defaultBranch string, maxBranches int) []schema.BranchFact {
	sorted := slices.Clone(facts)
	slices.SortStableFunc(sorted, func(a, b schema.BranchFact) int {
		if ra, rb := priority(a, defaultBranch), priority(b, defaultBranch); ra != rb {
			return ra - rb
		}
		if ta, tb := unixOrEpoch(a.LastCommit), unixOrEpoch(b.LastCommit); ta != tb {
			if ta > tb {
				return -1
			}
			return 1
		}
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		default:
			return 0
		}
	})
	if maxBranches > 0 && len(sorted) > maxBranches {
		sorted = sorted[:maxBranches]
	}
	return sorted
}

// priority ranks the default branch 0, the current branch 1 and everything else 2.
func priority(f schema.BranchFact, defaultBranch string) int {
	switch {
	case f.Name == defaultBranch:
		return 0
	case f.IsCurrent:
		return 1
	default:
		return 2
	}
}

// unixOrEpoch treats an unknown timestamp as the epoch.
func unixOrEpoch(t *time.Time) int64 {
	if t == nil {
		return 0
	}
	return t.UnixNano()
}
