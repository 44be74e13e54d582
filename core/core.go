// Package core has the branch analysis pipeline and its entry points.
package core

import (
	"context"
	"time"

	"github.com/huangsam/branchspot/core/agg"
	"github.com/huangsam/branchspot/internal/contract"
	"github.com/huangsam/branchspot/internal/observability"
	"github.com/huangsam/branchspot/internal/outwriter"
	"github.com/huangsam/branchspot/schema"
)

// ExecutorFunc defines the function signature for executing different output modes.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager) error

// Analyze runs the branch analysis pipeline on a repository whose path was
// already validated. The manager is optional; without it nothing is cached
// or recorded. The progress observer is optional too.
func Analyze(ctx context.Context, repoPath string, opts schema.AnalysisOptions, client contract.GitClient, mgr contract.CacheManager, progress schema.ProgressFunc) (*schema.AnalysisResult, error) {
	return analyzeWithMetrics(ctx, repoPath, opts, agg.DefaultTopContributors, client, mgr, progress)
}

// GetBranchAnalysisResults runs the pipeline with the options of a validated config.
func GetBranchAnalysisResults(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager, progress schema.ProgressFunc) (*schema.AnalysisResult, error) {
	return analyzeWithMetrics(ctx, cfg.RepoPath, cfg.Options(), cfg.TopContributors, client, mgr, progress)
}

func analyzeWithMetrics(ctx context.Context, repoPath string, opts schema.AnalysisOptions, top int, client contract.GitClient, mgr contract.CacheManager, progress schema.ProgressFunc) (*schema.AnalysisResult, error) {
	result, err := runBranchAnalysisCore(ctx, repoPath, opts, top, client, mgr, progress)
	observability.FromContext(ctx).RecordRun(ctx, err)
	return result, err
}

// ExecuteBranches runs the analysis and writes one record per branch.
// It serves as the main entry point for the 'branches' command.
func ExecuteBranches(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager) error {
	return execute(ctx, cfg, client, mgr, outwriter.WriteBranchResults)
}

// ExecuteSummary runs the analysis and writes the repository summary and statistics.
func ExecuteSummary(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager) error {
	return execute(ctx, cfg, client, mgr, outwriter.WriteSummaryResults)
}

// ExecuteActivity runs the analysis and writes the activity overview.
func ExecuteActivity(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager) error {
	return execute(ctx, cfg, client, mgr, outwriter.WriteActivityResults)
}

type resultWriter func(result *schema.AnalysisResult, cfg *contract.Config, duration time.Duration) error

func execute(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager, write resultWriter) error {
	start := time.Now()
	if !shouldSuppressHeader(ctx) {
		outwriter.LogAnalysisHeader(cfg)
	}
	result, err := GetBranchAnalysisResults(ctx, cfg, client, mgr, progressFromContext(ctx))
	if err != nil {
		return err
	}
	return write(result, cfg, time.Since(start))
}
