package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/branchspot/internal/contract"
	"github.com/huangsam/branchspot/internal/observability"
	"github.com/huangsam/branchspot/schema"
)

// currentCacheVersion defines the version of the cached branch record
const currentCacheVersion = 1

// cachedAnalyzeBranch serves a branch from the result cache when possible
// and stores fresh, non-degraded results back into it.
func cachedAnalyzeBranch(ctx context.Context, client contract.GitClient, repoPath string, target branchTarget, fact schema.BranchFact, opts schema.AnalysisOptions, now time.Time) schema.BranchAnalysis {
	store := branchStoreFromContext(ctx)
	if !opts.CacheEnabled || store == nil || fact.Tip == "" {
		return analyzeOrDegrade(ctx, client, repoPath, target, fact, opts.Depth, now)
	}

	key := generateCacheKey(repoPath, target, fact, opts.Depth)
	metrics := observability.FromContext(ctx)

	if cached, ok := checkCacheHit(store, key, now); ok {
		metrics.RecordCacheLookup(ctx, true)
		return refreshFromFact(cached, fact, target.Name, now)
	}
	metrics.RecordCacheLookup(ctx, false)

	result := analyzeOrDegrade(ctx, client, repoPath, target, fact, opts.Depth, now)
	if !result.Degraded {
		storeResult(store, key, result, now)
	}
	return result
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit(store contract.CacheStore, key string, now time.Time) (schema.BranchAnalysis, bool) {
	data, version, ts, err := store.Get(key)
	if err != nil || version != currentCacheVersion {
		return schema.BranchAnalysis{}, false
	}
	if now.Sub(time.Unix(ts, 0)) > contract.CacheTTL {
		return schema.BranchAnalysis{}, false
	}
	var result schema.BranchAnalysis
	if err := json.Unmarshal(data, &result); err != nil {
		return schema.BranchAnalysis{}, false
	}
	return result, true
}

// storeResult writes a result into the cache, logging failures.
func storeResult(store contract.CacheStore, key string, result schema.BranchAnalysis, now time.Time) {
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := store.Set(key, data, currentCacheVersion, now.Unix()); err != nil {
		contract.Logger.WithField("branch", result.Name).WithError(err).Debug("branch cache write failed")
	}
}

// refreshFromFact re-applies the fields that depend on the current run
// rather than on the branch content.
func refreshFromFact(cached schema.BranchAnalysis, fact schema.BranchFact, defaultBranch string, now time.Time) schema.BranchAnalysis {
	cached.IsCurrent = fact.IsCurrent
	cached.IsDefault = fact.Name == defaultBranch
	cached.CommitCount = fact.CommitCount
	cached.Merged = fact.Merged
	cached.Stale = schema.IsStale(fact.LastCommit, now)
	if cached.Contributors == nil {
		cached.Contributors = []string{}
	}
	return cached
}

// generateCacheKey creates a unique key from everything the branch result depends on
func generateCacheKey(repoPath string, target branchTarget, fact schema.BranchFact, depth schema.AnalysisDepth) string {
	key := fmt.Sprintf("%s:%s:%s:%s:%s:%s",
		repoPath,
		fact.Name,
		fact.Tip,
		target.Name,
		target.Tip,
		depth,
	)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
