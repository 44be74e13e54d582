package core

import (
	"context"

	"github.com/huangsam/branchspot/internal/contract"
	"github.com/huangsam/branchspot/schema"
)

// Context keys for analysis options
type contextKey string

const (
	suppressHeaderKey contextKey = "suppressHeader"
	analysisIDKey     contextKey = "analysisID"
	cacheManagerKey   contextKey = "cacheManager"
)

// WithSuppressHeader marks the run as headless, as used by the MCP tools
func WithSuppressHeader(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressHeaderKey, true)
}

// shouldSuppressHeader returns whether headers should be suppressed from context
func shouldSuppressHeader(ctx context.Context) bool {
	suppress, ok := ctx.Value(suppressHeaderKey).(bool)
	return ok && suppress
}

// withAnalysisID stores the history run ID in the context
func withAnalysisID(ctx context.Context, analysisID int64) context.Context {
	return context.WithValue(ctx, analysisIDKey, analysisID)
}

// getAnalysisID returns the history run ID from context
func getAnalysisID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(analysisIDKey).(int64)
	return id, ok
}

// contextWithCacheManager makes the cache manager available to worker goroutines
func contextWithCacheManager(ctx context.Context, mgr contract.CacheManager) context.Context {
	return context.WithValue(ctx, cacheManagerKey, mgr)
}

// cacheManagerFromContext returns the cache manager, or nil when none was attached
func cacheManagerFromContext(ctx context.Context) contract.CacheManager {
	mgr, ok := ctx.Value(cacheManagerKey).(contract.CacheManager)
	if !ok {
		return nil
	}
	return mgr
}

// branchStoreFromContext returns the branch cache store, or nil when caching is unavailable
func branchStoreFromContext(ctx context.Context) contract.CacheStore {
	mgr := cacheManagerFromContext(ctx)
	if mgr == nil {
		return nil
	}
	return mgr.GetBranchStore()
}

type progressKey struct{}

// WithProgress attaches a progress observer used by the Execute functions.
func WithProgress(ctx context.Context, progress schema.ProgressFunc) context.Context {
	return context.WithValue(ctx, progressKey{}, progress)
}

// progressFromContext returns the attached observer, or nil
func progressFromContext(ctx context.Context) schema.ProgressFunc {
	progress, _ := ctx.Value(progressKey{}).(schema.ProgressFunc)
	return progress
}
