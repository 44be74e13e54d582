package core

import (
	"context"
	"sync"
	"time"

	"github.com/huangsam/branchspot/internal/contract"
	"github.com/huangsam/branchspot/internal/observability"
	"github.com/huangsam/branchspot/schema"
)

// progressTracker reports completions to the observer under one lock,
// so observed counts never go backwards.
type progressTracker struct {
	mu        sync.Mutex
	completed int
	total     int
	observe   schema.ProgressFunc
}

func (p *progressTracker) done(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completed++
	if p.observe != nil {
		p.observe(p.completed, p.total, name)
	}
}

// analyzeBranches runs the analyzer over every fact with a fixed pool of
// opts.MaxConcurrency workers pulling from a shared channel. A worker takes
// the next branch as soon as it finishes one. Exactly one result is produced
// per fact, in completion order.
func analyzeBranches(ctx context.Context, client contract.GitClient, repoPath string, target branchTarget, facts []schema.BranchFact, opts schema.AnalysisOptions, now time.Time, progress schema.ProgressFunc) []schema.BranchAnalysis {
	factCh := make(chan schema.BranchFact, len(facts))
	resultCh := make(chan schema.BranchAnalysis, len(facts))
	tracker := &progressTracker{total: len(facts), observe: progress}
	metrics := observability.FromContext(ctx)
	depth := string(opts.Depth)

	var wg sync.WaitGroup
	for range min(max(opts.MaxConcurrency, 1), max(len(facts), 1)) {
		wg.Go(func() {
			for fact := range factCh {
				metrics.BranchStarted(ctx)
				start := time.Now()
				result := cachedAnalyzeBranch(ctx, client, repoPath, target, fact, opts, now)
				metrics.BranchFinished(ctx, depth, result.Degraded, time.Since(start))

				recordBranchAnalysis(ctx, result, now)
				resultCh <- result
				tracker.done(fact.Name)
			}
		})
	}

	for _, f := range facts {
		factCh <- f
	}
	close(factCh)

	wg.Wait()
	close(resultCh)

	results := make([]schema.BranchAnalysis, 0, len(facts))
	for r := range resultCh {
		results = append(results, r)
	}
	return results
}

// recordBranchAnalysis stores the branch metrics of a tracked run.
func recordBranchAnalysis(ctx context.Context, result schema.BranchAnalysis, now time.Time) {
	analysisID, ok := getAnalysisID(ctx)
	if !ok || analysisID <= 0 {
		return
	}
	mgr := cacheManagerFromContext(ctx)
	if mgr == nil {
		return
	}
	store := mgr.GetAnalysisStore()
	if store == nil {
		return
	}
	if err := store.RecordBranchMetrics(analysisID, schema.NewBranchMetrics(result, now)); err != nil {
		contract.LogWarn("Analysis tracking failed for branch "+result.Name, err)
	}
}
