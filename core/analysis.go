package core

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/huangsam/branchspot/core/agg"
	"github.com/huangsam/branchspot/core/algo"
	"github.com/huangsam/branchspot/internal/contract"
	"github.com/huangsam/branchspot/schema"
)

// errNoBranches is the cause of a filter failure.
var errNoBranches = errors.New("no branches left after filtering")

// runBranchAnalysisCore runs the whole pipeline once: resolve the default branch,
// collect facts, select branches, analyze them concurrently and aggregate.
func runBranchAnalysisCore(ctx context.Context, repoPath string, opts schema.AnalysisOptions, top int, client contract.GitClient, mgr contract.CacheManager, progress schema.ProgressFunc) (*schema.AnalysisResult, error) {
	start := time.Now()
	now := start

	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	// Add cache manager to context for use in worker goroutines
	if mgr != nil {
		ctx = contextWithCacheManager(ctx, mgr)
	}

	// --- 1. Default branch ---
	resolver := NewDefaultBranchResolver(client, repoPath, opts.DefaultCandidates)
	target := branchTarget{Name: resolver.Resolve(ctx)}
	if tip, err := client.ResolveRef(ctx, repoPath, target.Name); err != nil {
		contract.Logger.WithField("default", target.Name).WithError(err).Debug("default branch tip unavailable")
	} else {
		target.Tip = tip
	}

	// --- 2. Bulk collection ---
	facts, err := agg.CollectBranchFacts(ctx, client, repoPath, target.Name)
	if err != nil {
		return nil, err
	}

	// --- 3. Filter and prioritize ---
	selected := algo.SelectBranches(facts, target.Name, opts, now)
	if len(selected) == 0 {
		return nil, contract.NewAnalysisError(contract.PhaseFilter,
			fmt.Errorf("%w (%d collected, stale threshold %d days)", errNoBranches, len(facts), opts.StaleDaysThreshold))
	}

	// --- 4. Begin history tracking (if configured) ---
	analysisID := beginTracking(ctx, client, repoPath, opts, mgr, start)
	if analysisID > 0 {
		ctx = withAnalysisID(ctx, analysisID)
	}

	// --- 5. Per-branch analysis ---
	branches := analyzeBranches(ctx, client, repoPath, target, selected, opts, now, progress)
	restoreOrder(branches, selected)

	// --- 6. End history tracking ---
	endTracking(mgr, analysisID, target.Name, len(branches))

	// --- 7. Aggregation ---
	summary, stats, activity := agg.Summarize(repoPath, target.Name, branches, top, now)
	return &schema.AnalysisResult{
		Summary:     summary,
		Branches:    branches,
		Statistics:  stats,
		Activity:    activity,
		Depth:       opts.Depth,
		GeneratedAt: now,
		Duration:    time.Since(start),
	}, nil
}

// restoreOrder sorts results back into the prioritized order of the selection.
func restoreOrder(branches []schema.BranchAnalysis, selected []schema.BranchFact) {
	position := make(map[string]int, len(selected))
	for i, f := range selected {
		position[f.Name] = i
	}
	slices.SortFunc(branches, func(a, b schema.BranchAnalysis) int {
		return cmp.Compare(position[a.Name], position[b.Name])
	})
}

// beginTracking opens a history run, returning 0 when tracking is off or fails.
// The run's options and the HEAD commit it ran against are stored with it.
func beginTracking(ctx context.Context, client contract.GitClient, repoPath string, opts schema.AnalysisOptions, mgr contract.CacheManager, start time.Time) int64 {
	if mgr == nil {
		return 0
	}
	store := mgr.GetAnalysisStore()
	if store == nil {
		return 0
	}
	configParams := map[string]any{
		"depth":              string(opts.Depth),
		"max_concurrency":    opts.MaxConcurrency,
		"max_branches":       opts.MaxBranches,
		"stale_days":         opts.StaleDaysThreshold,
		"cache_enabled":      opts.CacheEnabled,
		"default_candidates": opts.DefaultCandidates,
	}
	if head, err := client.GetRepoHash(ctx, repoPath); err == nil {
		configParams["head"] = head
	}
	analysisID, err := store.BeginAnalysis(repoPath, start, configParams)
	if err != nil {
		contract.LogWarn("Analysis tracking initialization failed", err)
		return 0
	}
	return analysisID
}

// endTracking finalizes a history run opened by beginTracking.
func endTracking(mgr contract.CacheManager, analysisID int64, defaultBranch string, total int) {
	if mgr == nil || analysisID <= 0 {
		return
	}
	store := mgr.GetAnalysisStore()
	if store == nil {
		return
	}
	if err := store.EndAnalysis(analysisID, time.Now(), defaultBranch, total); err != nil {
		contract.LogWarn("Failed to finalize analysis tracking", err)
	}
}
