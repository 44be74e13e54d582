package core

import (
	"context"
	"time"

	"github.com/huangsam/branchspot/internal/contract"
	"github.com/huangsam/branchspot/schema"
	"github.com/sirupsen/logrus"
)

// analyzeBranch runs every step of the requested tier for one branch.
func analyzeBranch(ctx context.Context, client contract.GitClient, repoPath string, target branchTarget, fact schema.BranchFact, depth schema.AnalysisDepth, now time.Time) (schema.BranchAnalysis, error) {
	return NewBranchAnalysisBuilder(ctx, client, repoPath, target, fact, depth, now).
		FetchDivergence().   // ahead/behind, skipped for the default branch
		FetchContributors(). // normal and deep
		FetchSize().         // normal and deep
		FetchFrequency().    // normal and deep
		FetchMergeability(). // deep only
		Build()
}

// degradedBranchAnalysis is the basic form of a branch whose analysis failed.
func degradedBranchAnalysis(fact schema.BranchFact, defaultBranch string, depth schema.AnalysisDepth, now time.Time) schema.BranchAnalysis {
	result := schema.NewBasicBranchAnalysis(fact, defaultBranch, now)
	result.Depth = depth
	result.Degraded = true
	return result
}

// analyzeOrDegrade folds an analysis error into the degraded basic form.
func analyzeOrDegrade(ctx context.Context, client contract.GitClient, repoPath string, target branchTarget, fact schema.BranchFact, depth schema.AnalysisDepth, now time.Time) schema.BranchAnalysis {
	result, err := analyzeBranch(ctx, client, repoPath, target, fact, depth, now)
	if err != nil {
		contract.Logger.WithFields(logrus.Fields{
			"branch": fact.Name,
			"depth":  depth,
		}).WithError(err).Warn("branch analysis degraded")
		return degradedBranchAnalysis(fact, target.Name, depth, now)
	}
	return result
}
