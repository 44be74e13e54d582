// Package agg has bulk collection and aggregation logic for branch data.
package agg

import (
	"context"
	"fmt"

	"github.com/huangsam/branchspot/internal/contract"
	"github.com/huangsam/branchspot/schema"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// CommitCountBatchSize bounds how many commit-count queries run together.
// Batches run one after another; queries within a batch run concurrently.
const CommitCountBatchSize = 50

// CollectBranchFacts builds the branch fact table with a fixed number of wide queries:
// (a) one branch enumeration, (b) one ref metadata query, (c) batched commit counts
// and (d) one merged-set query against the resolved default branch.
// Failures in (a) or (b) abort the run. Failures in (c) or (d) degrade to zero counts
// and not-merged flags for the affected branches.
func CollectBranchFacts(ctx context.Context, client contract.GitClient, repoPath, defaultBranch string) ([]schema.BranchFact, error) {
	// --- (a) Enumerate branch names ---
	branches, err := client.ListBranches(ctx, repoPath)
	if err != nil {
		return nil, contract.NewAnalysisError(contract.PhaseCollect, fmt.Errorf("listing branches: %w", err))
	}

	// --- (b) Ref metadata in one pass ---
	raw, err := client.GetBranchRefs(ctx, repoPath)
	if err != nil {
		return nil, contract.NewAnalysisError(contract.PhaseCollect, fmt.Errorf("reading branch refs: %w", err))
	}
	refs := parseBranchRefs(raw)

	current, err := client.GetCurrentBranch(ctx, repoPath)
	if err != nil {
		contract.Logger.WithError(err).Debug("current branch unavailable")
		current = ""
	}

	facts := make([]schema.BranchFact, 0, len(branches))
	seen := make(map[string]struct{}, len(branches))
	for _, b := range branches {
		if _, dup := seen[b.Name]; dup {
			continue
		}
		seen[b.Name] = struct{}{}

		fact := schema.BranchFact{
			Name:      b.Name,
			Kind:      b.Kind,
			IsCurrent: b.Kind == schema.LocalBranch && b.Name == current,
		}
		// Missing ref data keeps the branch with partial facts
		if r, ok := refs[b.Name]; ok {
			fact.Tip = r.Tip
			fact.LastCommit = r.LastCommit
			fact.Author = r.Author
		} else {
			contract.Logger.WithField("branch", b.Name).Debug("no ref metadata for branch")
		}
		facts = append(facts, fact)
	}

	// --- (c) Commit counts in batches ---
	countCommits(ctx, client, repoPath, facts)

	// --- (d) Merged set ---
	markMerged(ctx, client, repoPath, defaultBranch, facts)

	return facts, nil
}

// countCommits fills CommitCount for every fact, one batch at a time.
func countCommits(ctx context.Context, client contract.GitClient, repoPath string, facts []schema.BranchFact) {
	for start := 0; start < len(facts); start += CommitCountBatchSize {
		end := min(start+CommitCountBatchSize, len(facts))
		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				rev := facts[i].Tip
				if rev == "" {
					rev = facts[i].Name
				}
				n, err := client.CountCommits(ctx, repoPath, rev)
				if err != nil {
					contract.Logger.WithFields(logrus.Fields{"branch": facts[i].Name}).WithError(err).Warn("commit count unavailable")
					return nil
				}
				facts[i].CommitCount = n
				return nil
			})
		}
		_ = g.Wait()
	}
}

// markMerged flags the facts already merged into the default branch.
func markMerged(ctx context.Context, client contract.GitClient, repoPath, defaultBranch string, facts []schema.BranchFact) {
	merged, err := client.ListMergedBranches(ctx, repoPath, defaultBranch)
	if err != nil {
		contract.Logger.WithField("default", defaultBranch).WithError(err).Warn("merged branch set unavailable")
		return
	}
	set := make(map[string]struct{}, len(merged))
	for _, name := range merged {
		set[name] = struct{}{}
	}
	for i := range facts {
		_, facts[i].Merged = set[facts[i].Name]
	}
}
