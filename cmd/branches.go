package cmd

import (
	"github.com/huangsam/branchspot/core"
	"github.com/spf13/cobra"
)

// branchesCmd performs branch-level analysis.
var branchesCmd = &cobra.Command{
	Use:   "branches [repo-path]",
	Short: "Show every branch ranked by recent activity.",
	Long: `Analyze every local and remote branch against the default branch.

For each branch, reports:
- Commits ahead of and behind the default branch
- Last activity and whether the branch is stale
- Whether it is already merged into the default branch
- Contributors and size of the changes (normal and deep)
- Whether it merges cleanly into the default branch (deep)

Branches are ranked from most to least recently active. The default branch
is resolved from the remote HEAD first, then from --default-candidates.

Examples:
  # Analyze the branches of the current repository
  branchspot branches

  # Quick scan of the 20 most active branches
  branchspot branches --depth fast --max-branches 20

  # Full analysis including mergeability, with detail columns
  branchspot branches --depth deep --detail

  # Ignore branches idle for more than 90 days
  branchspot branches --stale-days 90

  # Export to CSV or Parquet
  branchspot branches --output csv --output-file branches.csv
  branchspot branches --output parquet --output-file branches.parquet`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run:     runAnalysis("branches", core.ExecuteBranches),
}
