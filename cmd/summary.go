package cmd

import (
	"github.com/huangsam/branchspot/core"
	"github.com/spf13/cobra"
)

// summaryCmd prints repository-level counts and statistics.
var summaryCmd = &cobra.Command{
	Use:   "summary [repo-path]",
	Short: "Summarize branch counts and statistics for a repository.",
	Long: `Analyze every branch and report repository-level aggregates.

Shows:
- Branch counts by kind (local, remote)
- Stale, mergeable and conflicted branch counts
- Total and average commits, average and maximum divergence
- Distinct contributors and lines touched
- Oldest and newest activity, median branch age

Parquet output is not available for this view.

Examples:
  # Summarize the current repository
  branchspot summary

  # Summary as JSON for dashboards
  branchspot summary --output json --output-file summary.json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run:     runAnalysis("summary", core.ExecuteSummary),
}
