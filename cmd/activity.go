package cmd

import (
	"github.com/huangsam/branchspot/core"
	"github.com/spf13/cobra"
)

// activityCmd prints the activity overview of a repository.
var activityCmd = &cobra.Command{
	Use:   "activity [repo-path]",
	Short: "Show recent commit activity across all branches.",
	Long: `Analyze every branch and report how work is spread over time and people.

Shows:
- Commits per day over the last 30 days, merged across branches
- Top contributors, credited per branch they worked on
- Branch categories (active, stale, mergeable, conflicted)

Daily commits and contributors need --depth normal or deep.

Examples:
  # Activity overview of the current repository
  branchspot activity

  # Top 5 contributors only
  branchspot activity --top-contributors 5

  # Export as CSV
  branchspot activity --output csv --output-file activity.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run:     runAnalysis("activity", core.ExecuteActivity),
}
