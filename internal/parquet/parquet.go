// Package parquet provides data structures and functions for exporting branchspot
// data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/branchspot/schema"
	"github.com/parquet-go/parquet-go"
)

// AnalysisRun represents a single branchspot analysis run with metadata.
// This struct maps to the branchspot_analysis_runs database table.
type AnalysisRun struct {
	AnalysisID            int64      `parquet:"analysis_id,snappy"`
	RepoPath              string     `parquet:"repo_path,snappy"`
	DefaultBranch         *string    `parquet:"default_branch,optional,snappy"`
	StartTime             time.Time  `parquet:"start_time,snappy"`
	EndTime               *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs         *int32     `parquet:"run_duration_ms,optional,snappy"`
	TotalBranchesAnalyzed int32      `parquet:"total_branches_analyzed,snappy"`

	// ConfigParams contains the JSON-encoded run options (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// BranchMetrics represents the stored metrics of one branch in one run.
// This struct maps to the branchspot_branch_metrics database table.
type BranchMetrics struct {
	AnalysisID        int64      `parquet:"analysis_id,snappy"`
	BranchName        string     `parquet:"branch_name,snappy"`
	AnalysisTime      time.Time  `parquet:"analysis_time,snappy"`
	Kind              string     `parquet:"kind,dict"`
	Depth             string     `parquet:"depth,dict"`
	CommitCount       int32      `parquet:"commit_count,snappy"`
	Ahead             int32      `parquet:"ahead,snappy"`
	Behind            int32      `parquet:"behind,snappy"`
	ContributorCount  int32      `parquet:"contributor_count,snappy"`
	ConflictFileCount int32      `parquet:"conflict_file_count,snappy"`
	Size              int32      `parquet:"size,snappy"`
	Stale             bool       `parquet:"stale"`
	Mergeable         bool       `parquet:"mergeable"`
	Degraded          bool       `parquet:"degraded"`
	LastActivity      *time.Time `parquet:"last_activity,optional,snappy"`
}

// DailyCount is one entry of a branch commit-frequency series.
type DailyCount struct {
	Date  string `parquet:"date"`
	Count int32  `parquet:"count"`
}

// Branch is the full per-branch record written by `branches --output parquet`.
type Branch struct {
	Rank              int32        `parquet:"rank"`
	Name              string       `parquet:"name,snappy"`
	Label             string       `parquet:"label,dict"`
	Kind              string       `parquet:"kind,dict"`
	Tip               string       `parquet:"tip,snappy"`
	IsCurrent         bool         `parquet:"is_current"`
	IsDefault         bool         `parquet:"is_default"`
	LastActivity      *time.Time   `parquet:"last_activity,optional"`
	Author            string       `parquet:"author,snappy"`
	CommitCount       int32        `parquet:"commit_count"`
	Merged            bool         `parquet:"merged"`
	Stale             bool         `parquet:"stale"`
	Ahead             int32        `parquet:"ahead"`
	Behind            int32        `parquet:"behind"`
	Contributors      []string     `parquet:"contributors"`
	Mergeable         bool         `parquet:"mergeable"`
	ConflictFileCount int32        `parquet:"conflict_file_count"`
	CommitFrequency   []DailyCount `parquet:"commit_frequency"`
	Size              int32        `parquet:"size"`
	Depth             string       `parquet:"depth,dict"`
	Degraded          bool         `parquet:"degraded"`
}

// WriteAnalysisRunsParquet writes a slice of AnalysisRun structs to a Parquet file.
func WriteAnalysisRunsParquet(data []AnalysisRun, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteBranchMetricsParquet writes a slice of BranchMetrics structs to a Parquet file.
func WriteBranchMetricsParquet(data []BranchMetrics, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteBranches writes ranked branch records to w.
func WriteBranches(w io.Writer, data []Branch) error {
	return write(w, data)
}

// writeFile creates outputPath and writes every row into it.
func writeFile[T any](data []T, outputPath string) (err error) {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { err = errors.Join(err, file.Close()) }()
	return write(file, data)
}

// write encodes rows with a schema inferred from the struct tags of T.
func write[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertAnalysisRunRecords converts schema.AnalysisRunRecord to AnalysisRun for Parquet export.
func ConvertAnalysisRunRecords(records []schema.AnalysisRunRecord) []AnalysisRun {
	result := make([]AnalysisRun, len(records))
	for i, record := range records {
		var defaultBranch *string
		if record.DefaultBranch != "" {
			name := record.DefaultBranch
			defaultBranch = &name
		}
		result[i] = AnalysisRun{
			AnalysisID:            record.AnalysisID,
			RepoPath:              record.RepoPath,
			DefaultBranch:         defaultBranch,
			StartTime:             record.StartTime,
			EndTime:               record.EndTime,
			RunDurationMs:         record.RunDurationMs,
			TotalBranchesAnalyzed: record.TotalBranchesAnalyzed,
			ConfigParams:          record.ConfigParams,
		}
	}
	return result
}

// ConvertBranchMetricsRecords converts schema.BranchMetricsRecord to BranchMetrics for Parquet export.
func ConvertBranchMetricsRecords(records []schema.BranchMetricsRecord) []BranchMetrics {
	result := make([]BranchMetrics, len(records))
	for i, r := range records {
		result[i] = BranchMetrics{
			AnalysisID:        r.AnalysisID,
			BranchName:        r.BranchName,
			AnalysisTime:      r.AnalysisTime,
			Kind:              r.Kind,
			Depth:             r.Depth,
			CommitCount:       r.CommitCount,
			Ahead:             r.Ahead,
			Behind:            r.Behind,
			ContributorCount:  r.ContributorCount,
			ConflictFileCount: r.ConflictFileCount,
			Size:              r.Size,
			Stale:             r.Stale,
			Mergeable:         r.Mergeable,
			Degraded:          r.Degraded,
			LastActivity:      r.LastActivity,
		}
	}
	return result
}

// ConvertBranches converts ranked branch analyses to Parquet records.
// Frequency entries are ordered by date.
func ConvertBranches(branches []schema.EnrichedBranchAnalysis) []Branch {
	result := make([]Branch, len(branches))
	for i, b := range branches {
		result[i] = Branch{
			Rank:              int32(b.Rank),
			Name:              b.Name,
			Label:             b.Label,
			Kind:              string(b.Kind),
			Tip:               b.Tip,
			IsCurrent:         b.IsCurrent,
			IsDefault:         b.IsDefault,
			LastActivity:      b.LastActivity,
			Author:            b.Author,
			CommitCount:       int32(b.CommitCount),
			Merged:            b.Merged,
			Stale:             b.Stale,
			Ahead:             int32(b.Divergence.Ahead),
			Behind:            int32(b.Divergence.Behind),
			Contributors:      b.Contributors,
			Mergeable:         b.Mergeable,
			ConflictFileCount: int32(b.ConflictFileCount),
			CommitFrequency:   frequencyRows(b.CommitFrequency),
			Size:              int32(b.Size),
			Depth:             string(b.Depth),
			Degraded:          b.Degraded,
		}
	}
	return result
}

func frequencyRows(freq map[string]int) []DailyCount {
	rows := make([]DailyCount, 0, len(freq))
	for date, count := range freq {
		rows = append(rows, DailyCount{Date: date, Count: int32(count)})
	}
	slices.SortFunc(rows, func(a, b DailyCount) int {
		return strings.Compare(a.Date, b.Date)
	})
	return rows
}
