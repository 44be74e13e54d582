// Package schema has models, options and constants shared by every part of branchspot.
package schema

import "time"

// StalenessWindow is the freshness window behind BranchAnalysis.Stale.
const StalenessWindow = 30 * 24 * time.Hour

// FrequencyWindow is the lookback window for commit-frequency series.
const FrequencyWindow = 30 * 24 * time.Hour

// DateLayout is the day-granularity key used in commit-frequency series.
const DateLayout = "2006-01-02"

// BranchFact is the raw per-branch metadata built by the bulk collector.
// It is created once per run and never mutated afterwards.
type BranchFact struct {
	Name        string     // Unique branch name within a run (remote branches keep their remote prefix)
	Tip         string     // Tip commit id, empty when unknown
	Kind        BranchKind // Local or remote
	IsCurrent   bool       // Currently checked out
	LastCommit  *time.Time // Last commit timestamp, nil when unknown (never stale)
	Author      string     // Last commit author, empty when unknown
	CommitCount int        // Commits reachable from the tip, 0 when unknown
	Merged      bool       // Already merged into the default branch
}

// Divergence is the ahead/behind pair of a branch relative to the default branch.
type Divergence struct {
	Ahead  int `json:"ahead"`
	Behind int `json:"behind"`
}

// DiffStat summarizes a numstat diff.
type DiffStat struct {
	FilesChanged int `json:"files_changed"`
	Additions    int `json:"additions"`
	Deletions    int `json:"deletions"`
}

// Lines returns the number of lines touched.
func (d DiffStat) Lines() int {
	return d.Additions + d.Deletions
}

// BranchAnalysis is the per-branch result of the tiered analyzer.
// Divergence is always (0,0) for the resolved default branch.
type BranchAnalysis struct {
	Name              string         `json:"name"`
	Tip               string         `json:"tip,omitempty"`
	Kind              BranchKind     `json:"kind"`
	IsCurrent         bool           `json:"is_current"`
	IsDefault         bool           `json:"is_default"`
	LastActivity      *time.Time     `json:"last_activity,omitempty"`
	Author            string         `json:"author,omitempty"`
	CommitCount       int            `json:"commit_count"`
	Merged            bool           `json:"merged"`
	Stale             bool           `json:"stale"`
	Divergence        Divergence     `json:"divergence"`
	Contributors      []string       `json:"contributors"`
	Mergeable         bool           `json:"mergeable"`
	ConflictFileCount int            `json:"conflict_file_count"`
	CommitFrequency   map[string]int `json:"commit_frequency,omitempty"`
	Size              int            `json:"size"`
	Depth             AnalysisDepth  `json:"depth"`
	Degraded          bool           `json:"degraded"`
}

// NewBasicBranchAnalysis builds the basic form of a branch from its fact alone.
// Every derived field is zero or empty. This is also the degraded form.
func NewBasicBranchAnalysis(fact BranchFact, defaultBranch string, now time.Time) BranchAnalysis {
	return BranchAnalysis{
		Name:         fact.Name,
		Tip:          fact.Tip,
		Kind:         fact.Kind,
		IsCurrent:    fact.IsCurrent,
		IsDefault:    fact.Name == defaultBranch,
		LastActivity: fact.LastCommit,
		Author:       fact.Author,
		CommitCount:  fact.CommitCount,
		Merged:       fact.Merged,
		Stale:        IsStale(fact.LastCommit, now),
		Contributors: []string{},
	}
}

// IsStale reports whether a last-activity timestamp falls outside the freshness window.
// An unknown timestamp is never stale.
func IsStale(last *time.Time, now time.Time) bool {
	if last == nil {
		return false
	}
	return last.Before(now.Add(-StalenessWindow))
}

// AgeDays returns whole days since the last activity, or -1 when unknown.
func (b BranchAnalysis) AgeDays(now time.Time) int {
	if b.LastActivity == nil {
		return -1
	}
	return int(now.Sub(*b.LastActivity).Hours() / 24)
}

// Conflicted reports whether the branch changes any file against the default branch.
// ConflictFileCount is a changed-file count from the deep tier, not a trial merge.
func (b BranchAnalysis) Conflicted() bool {
	return b.ConflictFileCount > 0
}
