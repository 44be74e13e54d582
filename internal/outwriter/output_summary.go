package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/huangsam/branchspot/internal/contract"
	"github.com/huangsam/branchspot/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// summaryReport is the JSON shape of the summary view.
type summaryReport struct {
	Summary     schema.RepositorySummary `json:"summary"`
	Statistics  schema.BranchStatistics  `json:"statistics"`
	Depth       schema.AnalysisDepth     `json:"depth"`
	GeneratedAt time.Time                `json:"generated_at"`
}

// summaryField is one labelled line of the summary view.
type summaryField struct {
	Key   string
	Label string
	Value string
}

// WriteSummaryResults outputs the repository summary and statistics block.
func WriteSummaryResults(result *schema.AnalysisResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		report := summaryReport{
			Summary:     result.Summary,
			Statistics:  result.Statistics,
			Depth:       result.Depth,
			GeneratedAt: result.GeneratedAt,
		}
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON summary"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"metric", "value"}, func(cw *csv.Writer) error {
				for _, f := range summaryFields(result) {
					if err := cw.Write([]string{f.Key, f.Value}); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV summary"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return errParquetUnsupported
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSummaryTable(w, result, cfg, duration)
		}, "Wrote summary")
	}
	return nil
}

// summaryFields flattens the summary and statistics blocks in display order.
func summaryFields(result *schema.AnalysisResult) []summaryField {
	s, st := result.Summary, result.Statistics
	activity := func(t *time.Time) string {
		if t == nil {
			return "n/a"
		}
		return formatLastActivity(t, result.GeneratedAt)
	}
	return []summaryField{
		{"default_branch", "Default branch", s.DefaultBranch},
		{"total_branches", "Branches", itoa(s.TotalBranches)},
		{"local_branches", "Local", itoa(s.LocalBranches)},
		{"remote_branches", "Remote", itoa(s.RemoteBranches)},
		{"stale_branches", "Stale", itoa(s.StaleBranches)},
		{"mergeable_branches", "Mergeable", itoa(s.MergeableCount)},
		{"conflicted_branches", "Conflicted", itoa(s.ConflictedCount)},
		{"degraded_branches", "Degraded", itoa(st.DegradedBranches)},
		{"total_commits", "Total commits", itoa(st.TotalCommits)},
		{"average_commits", "Avg commits", fmt.Sprintf("%.2f", st.AverageCommits)},
		{"average_ahead", "Avg ahead", fmt.Sprintf("%.2f", st.AverageAhead)},
		{"average_behind", "Avg behind", fmt.Sprintf("%.2f", st.AverageBehind)},
		{"max_ahead", "Max ahead", itoa(st.MaxAhead)},
		{"max_behind", "Max behind", itoa(st.MaxBehind)},
		{"total_contributors", "Contributors", itoa(st.TotalContributors)},
		{"total_lines_touched", "Lines touched", itoa(st.TotalLinesTouched)},
		{"oldest_activity", "Oldest activity", activity(st.OldestActivity)},
		{"newest_activity", "Newest activity", activity(st.NewestActivity)},
		{"median_age_days", "Median age (days)", fmt.Sprintf("%.1f", st.MedianAgeDays)},
		{"branches_without_age", "Without age", itoa(st.BranchesWithoutAge)},
	}
}

// writeSummaryTable prints the summary as a two-column table.
func writeSummaryTable(w io.Writer, result *schema.AnalysisResult, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Metric", "Value"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.PerColumn = []tw.Align{tw.AlignLeft, tw.AlignRight}
	})

	var data [][]string
	for _, f := range summaryFields(result) {
		data = append(data, []string{f.Label, f.Value})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "Summary of %s completed in %v (depth: %s)\n", result.Summary.Path, duration, result.Depth)
	return err
}
