package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/huangsam/branchspot/internal/contract"
	"github.com/huangsam/branchspot/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// maxBarWidth bounds the inline bar drawn next to daily commit counts.
const maxBarWidth = 30

// WriteActivityResults outputs the activity overview.
func WriteActivityResults(result *schema.AnalysisResult, cfg *contract.Config, duration time.Duration) error {
	activity := result.Activity

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, activity)
		}, "Wrote JSON activity"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeActivityCSV(w, activity)
		}, "Wrote CSV activity"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return errParquetUnsupported
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeActivityTables(w, activity, cfg, duration)
		}, "Wrote activity")
	}
	return nil
}

// writeActivityCSV writes every section as (section, key, value) rows.
func writeActivityCSV(w io.Writer, activity schema.ActivityOverview) error {
	return writeCSVWithHeader(w, []string{"section", "key", "value"}, func(cw *csv.Writer) error {
		for _, d := range activity.DailyCommits {
			if err := cw.Write([]string{"daily", d.Date, itoa(d.Count)}); err != nil {
				return err
			}
		}
		for _, c := range activity.TopContributors {
			if err := cw.Write([]string{"contributor", c.Name, itoa(c.Commits)}); err != nil {
				return err
			}
		}
		for _, cat := range schema.AllBranchCategories {
			if err := cw.Write([]string{"category", string(cat), itoa(activity.Categories[cat])}); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeActivityTables prints the daily series, the leaderboard and the category counts.
func writeActivityTables(w io.Writer, activity schema.ActivityOverview, cfg *contract.Config, duration time.Duration) error {
	peak := 0
	for _, d := range activity.DailyCommits {
		peak = max(peak, d.Count)
	}

	daily := make([][]string, 0, len(activity.DailyCommits))
	for _, d := range activity.DailyCommits {
		daily = append(daily, []string{d.Date, itoa(d.Count), activityBar(d.Count, peak)})
	}
	if err := renderTable(w, []string{"Date", "Commits", "Trend"}, daily); err != nil {
		return err
	}

	board := make([][]string, 0, len(activity.TopContributors))
	for i, c := range activity.TopContributors {
		board = append(board, []string{itoa(i + 1), c.Name, itoa(c.Commits)})
	}
	if err := renderTable(w, []string{"Rank", "Contributor", "Commits"}, board); err != nil {
		return err
	}

	categories := make([][]string, 0, len(schema.AllBranchCategories))
	for _, cat := range schema.AllBranchCategories {
		categories = append(categories, []string{string(cat), itoa(activity.Categories[cat])})
	}
	if err := renderTable(w, []string{"Category", "Branches"}, categories); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "Activity over %d days from %d contributors completed in %v with %d workers\n",
		len(activity.DailyCommits), len(activity.TopContributors), duration, cfg.Workers)
	return err
}

func renderTable(w io.Writer, headers []string, data [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// activityBar scales count against peak into a bar of at most maxBarWidth cells.
func activityBar(count, peak int) string {
	if count <= 0 || peak <= 0 {
		return ""
	}
	width := max(1, count*maxBarWidth/peak)
	return strings.Repeat("#", width)
}
