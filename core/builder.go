package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/branchspot/internal/contract"
	"github.com/huangsam/branchspot/schema"
	"golang.org/x/sync/errgroup"
)

// Query limits of the normal tier.
const (
	normalAuthorLimit    = 50
	normalFrequencyLimit = 100
)

// branchTarget is the resolved default branch a run compares against.
type branchTarget struct {
	Name string // Default branch name
	Tip  string // Default branch tip, empty when it could not be resolved
}

// BranchAnalysisBuilder computes the derived metrics of one branch.
// Every Fetch step only schedules its git queries; they run concurrently
// and Build waits for all of them.
type BranchAnalysisBuilder struct {
	git      contract.GitClient
	repoPath string
	fact     schema.BranchFact
	target   branchTarget
	depth    schema.AnalysisDepth
	now      time.Time

	group  *errgroup.Group
	ctx    context.Context
	result schema.BranchAnalysis

	// Partial values written by the scheduled queries
	ahead, behind   int
	authors         []string
	dates           []time.Time
	diff            schema.DiffStat
	mergeBase       string
	branchTip       string
	mergeableProbed bool
}

// NewBranchAnalysisBuilder is the starting point for analyzing one branch at one depth.
func NewBranchAnalysisBuilder(ctx context.Context, client contract.GitClient, repoPath string, target branchTarget, fact schema.BranchFact, depth schema.AnalysisDepth, now time.Time) *BranchAnalysisBuilder {
	group, gctx := errgroup.WithContext(ctx)
	result := schema.NewBasicBranchAnalysis(fact, target.Name, now)
	result.Depth = depth
	return &BranchAnalysisBuilder{
		git:       client,
		repoPath:  repoPath,
		fact:      fact,
		target:    target,
		depth:     depth,
		now:       now,
		group:     group,
		ctx:       gctx,
		result:    result,
		branchTip: fact.Tip,
	}
}

// ref is the revision used for single-branch queries.
func (b *BranchAnalysisBuilder) ref() string {
	if b.fact.Tip != "" {
		return b.fact.Tip
	}
	return b.fact.Name
}

func (b *BranchAnalysisBuilder) isDefault() bool {
	return b.result.IsDefault
}

// FetchDivergence schedules the ahead and behind queries. Deep analysis lists
// the commit ranges, the other tiers count them. The default branch issues nothing.
func (b *BranchAnalysisBuilder) FetchDivergence() *BranchAnalysisBuilder {
	if b.isDefault() {
		return b
	}
	aheadRange := b.target.Name + ".." + b.fact.Name
	behindRange := b.fact.Name + ".." + b.target.Name

	b.group.Go(func() error {
		n, err := b.rangeSize(aheadRange)
		if err != nil {
			return fmt.Errorf("ahead of %s: %w", b.target.Name, err)
		}
		b.ahead = n
		return nil
	})
	b.group.Go(func() error {
		n, err := b.rangeSize(behindRange)
		if err != nil {
			return fmt.Errorf("behind %s: %w", b.target.Name, err)
		}
		b.behind = n
		return nil
	})
	return b
}

func (b *BranchAnalysisBuilder) rangeSize(revRange string) (int, error) {
	if b.depth == schema.DeepDepth {
		commits, err := b.git.ListCommits(b.ctx, b.repoPath, revRange)
		return len(commits), err
	}
	return b.git.CountCommits(b.ctx, b.repoPath, revRange)
}

// FetchContributors schedules the author query: the latest non-merge commits
// for normal, the whole history for deep.
func (b *BranchAnalysisBuilder) FetchContributors() *BranchAnalysisBuilder {
	if !b.depth.AtLeast(schema.NormalDepth) {
		return b
	}
	noMerges, limit := true, normalAuthorLimit
	if b.depth == schema.DeepDepth {
		noMerges, limit = false, 0
	}
	b.group.Go(func() error {
		authors, err := b.git.GetAuthors(b.ctx, b.repoPath, b.ref(), noMerges, limit)
		if err != nil {
			return fmt.Errorf("authors: %w", err)
		}
		b.authors = authors
		return nil
	})
	return b
}

// FetchSize schedules the size query. Normal measures the tip commit. Deep
// diffs the branch against the default branch, which also yields the
// conflict file count; the default branch falls back to its tip commit.
func (b *BranchAnalysisBuilder) FetchSize() *BranchAnalysisBuilder {
	if !b.depth.AtLeast(schema.NormalDepth) {
		return b
	}
	if b.depth == schema.DeepDepth && !b.isDefault() {
		b.group.Go(func() error {
			stat, err := b.git.GetDiffStat(b.ctx, b.repoPath, b.target.Name, b.fact.Name)
			if err != nil {
				return fmt.Errorf("diff against %s: %w", b.target.Name, err)
			}
			b.diff = stat
			return nil
		})
		return b
	}
	b.group.Go(func() error {
		stat, err := b.git.GetCommitStat(b.ctx, b.repoPath, b.ref())
		if err != nil {
			return fmt.Errorf("tip commit stat: %w", err)
		}
		b.diff = stat
		return nil
	})
	return b
}

// FetchFrequency schedules the commit dates query over the frequency window.
func (b *BranchAnalysisBuilder) FetchFrequency() *BranchAnalysisBuilder {
	if !b.depth.AtLeast(schema.NormalDepth) {
		return b
	}
	limit := normalFrequencyLimit
	if b.depth == schema.DeepDepth {
		limit = 0
	}
	since := b.now.Add(-schema.FrequencyWindow)
	b.group.Go(func() error {
		dates, err := b.git.GetCommitDates(b.ctx, b.repoPath, b.ref(), since, limit)
		if err != nil {
			return fmt.Errorf("commit dates: %w", err)
		}
		b.dates = dates
		return nil
	})
	return b
}

// FetchMergeability schedules the explicit merge-base check of deep analysis.
func (b *BranchAnalysisBuilder) FetchMergeability() *BranchAnalysisBuilder {
	if b.depth != schema.DeepDepth || b.isDefault() {
		return b
	}
	b.mergeableProbed = true
	b.group.Go(func() error {
		base, err := b.git.GetMergeBase(b.ctx, b.repoPath, b.fact.Name, b.target.Name)
		if err != nil {
			return fmt.Errorf("merge base: %w", err)
		}
		b.mergeBase = base
		return nil
	})
	if b.branchTip == "" {
		b.group.Go(func() error {
			tip, err := b.git.ResolveRef(b.ctx, b.repoPath, b.fact.Name)
			if err != nil {
				return fmt.Errorf("resolve tip: %w", err)
			}
			b.branchTip = tip
			return nil
		})
	}
	return b
}

// Build waits for the scheduled queries and assembles the result.
// Any failed query fails the whole build.
func (b *BranchAnalysisBuilder) Build() (schema.BranchAnalysis, error) {
	if err := b.group.Wait(); err != nil {
		return schema.BranchAnalysis{}, err
	}

	r := b.result
	switch {
	case b.isDefault():
		r.Divergence = schema.Divergence{}
		r.Mergeable = true
	case b.mergeableProbed:
		r.Divergence = schema.Divergence{Ahead: b.ahead, Behind: b.behind}
		r.Mergeable = b.mergeBase != "" && (b.mergeBase == b.branchTip || b.mergeBase == b.target.Tip)
	default:
		// Only the deep tier checks mergeability.
		r.Divergence = schema.Divergence{Ahead: b.ahead, Behind: b.behind}
	}

	if b.depth.AtLeast(schema.NormalDepth) {
		r.Contributors = schema.SortedDistinct(b.authors)
		r.Size = b.diff.Lines()
		r.CommitFrequency = dailyCounts(b.dates)
	}
	if b.depth == schema.DeepDepth && !b.isDefault() {
		r.ConflictFileCount = b.diff.FilesChanged
	}
	return r, nil
}

// dailyCounts buckets commit dates by UTC day, returning nil when there are none.
func dailyCounts(dates []time.Time) map[string]int {
	if len(dates) == 0 {
		return nil
	}
	counts := make(map[string]int, len(dates))
	for _, d := range dates {
		counts[d.UTC().Format(schema.DateLayout)]++
	}
	return counts
}
