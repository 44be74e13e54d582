package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/huangsam/branchspot/internal/contract"
	"github.com/huangsam/branchspot/internal/parquet"
	"github.com/huangsam/branchspot/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// contributorColumnLimit is how many names the contributors column shows.
const contributorColumnLimit = 3

// WriteBranchResults outputs the ranked branches, dispatching based on the output format configured.
func WriteBranchResults(result *schema.AnalysisResult, cfg *contract.Config, duration time.Duration) error {
	branches := schema.EnrichBranches(result.Branches)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, branches)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBranchCSV(w, branches)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return errors.New("parquet output requires --output-file")
		}
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteBranches(w, parquet.ConvertBranches(branches))
		}, "Wrote Parquet"); err != nil {
			return fmt.Errorf("error writing parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBranchTable(w, result, branches, cfg, duration)
		}, "Wrote table")
	}
	return nil
}

// branchLabel picks the table label, marking partial results.
func branchLabel(b schema.BranchAnalysis, useColors bool) string {
	if b.Degraded {
		if useColors {
			return contract.DegradedColor.Sprint("Partial")
		}
		return "Partial"
	}
	if useColors {
		return contract.GetColorLabel(b)
	}
	return schema.GetPlainLabel(b)
}

// writeBranchTable generates and writes the human-readable table.
func writeBranchTable(w io.Writer, result *schema.AnalysisResult, branches []schema.EnrichedBranchAnalysis, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(w)

	headers := []string{"Rank", "Branch", "Label", "Ahead", "Behind", "Last Activity"}
	if cfg.Detail {
		headers = append(headers, "Commits", "Contributors", "Size", "Author")
	}
	table.Header(headers)

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := getMaxTableNameWidth(cfg)
	var data [][]string
	for _, b := range branches {
		name := contract.TruncateName(b.Name, nameWidth)
		if b.IsCurrent {
			name = "* " + name
		}
		row := []string{
			itoa(b.Rank),
			name,
			branchLabel(b.BranchAnalysis, cfg.UseColors),
			itoa(b.Divergence.Ahead),
			itoa(b.Divergence.Behind),
			formatLastActivity(b.LastActivity, result.GeneratedAt),
		}
		if cfg.Detail {
			row = append(row, detailCells(b.BranchAnalysis)...)
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	s := result.Summary
	if _, err := fmt.Fprintf(w, "Showing %d branches (default: %s, stale: %d, mergeable: %d, degraded: %d)\n",
		len(branches), s.DefaultBranch, s.StaleBranches, s.MergeableCount, result.Statistics.DegradedBranches); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Analysis completed in %v with %d workers. Cache backend: %s\n", duration, cfg.Workers, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// detailCells renders the --detail columns of one branch.
func detailCells(b schema.BranchAnalysis) []string {
	return []string{
		itoa(b.CommitCount),
		schema.FormatContributors(b.Contributors, contributorColumnLimit),
		itoa(b.Size),
		b.Author,
	}
}

// writeBranchCSV writes one CSV row per ranked branch.
func writeBranchCSV(w io.Writer, branches []schema.EnrichedBranchAnalysis) error {
	header := []string{
		"rank",
		"branch",
		"label",
		"kind",
		"tip",
		"current",
		"default",
		"last_activity",
		"author",
		"commits",
		"merged",
		"stale",
		"ahead",
		"behind",
		"mergeable",
		"conflict_files",
		"size",
		"contributors",
		"depth",
		"degraded",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, b := range branches {
			rec := []string{
				itoa(b.Rank),
				b.Name,
				b.Label,
				string(b.Kind),
				b.Tip,
				btoa(b.IsCurrent),
				btoa(b.IsDefault),
				formatTimestamp(b.LastActivity),
				b.Author,
				itoa(b.CommitCount),
				btoa(b.Merged),
				btoa(b.Stale),
				itoa(b.Divergence.Ahead),
				itoa(b.Divergence.Behind),
				btoa(b.Mergeable),
				itoa(b.ConflictFileCount),
				itoa(b.Size),
				strings.Join(b.Contributors, "|"),
				string(b.Depth),
				btoa(b.Degraded),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
