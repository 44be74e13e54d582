package parquet

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/branchspot/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRuns() []AnalysisRun {
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(1500 * time.Millisecond)
	duration := int32(1500)
	config := `{"depth":"normal","max_concurrency":4}`
	def := "main"
	return []AnalysisRun{
		{
			AnalysisID:            1,
			RepoPath:              "/repo",
			DefaultBranch:         &def,
			StartTime:             start,
			EndTime:               &end,
			RunDurationMs:         &duration,
			TotalBranchesAnalyzed: 12,
			ConfigParams:          &config,
		},
		{
			AnalysisID: 2,
			RepoPath:   "/repo",
			StartTime:  start.Add(time.Hour),
		},
	}
}

func sampleBranch(now time.Time) schema.EnrichedBranchAnalysis {
	last := now.Add(-72 * time.Hour)
	return schema.EnrichedBranchAnalysis{
		Rank:  1,
		Label: "Active",
		BranchAnalysis: schema.BranchAnalysis{
			Name:              "feature/x",
			Tip:               "c0ffee02",
			Kind:              schema.LocalBranch,
			LastActivity:      &last,
			Author:            "bob",
			CommitCount:       53,
			Divergence:        schema.Divergence{Ahead: 3, Behind: 1},
			Contributors:      []string{"alice", "bob"},
			Mergeable:         true,
			ConflictFileCount: 3,
			CommitFrequency:   map[string]int{"2024-05-30": 2, "2024-05-29": 1},
			Size:              25,
			Depth:             schema.DeepDepth,
		},
	}
}

func readAll[T any](t *testing.T, r io.ReaderAt) []T {
	t.Helper()
	reader := parquet.NewGenericReader[T](r)
	defer reader.Close()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func TestStructTags(t *testing.T) {
	tests := []struct {
		name    string
		model   any
		columns []string
	}{
		{
			name:  "analysis runs",
			model: new(AnalysisRun),
			columns: []string{
				"analysis_id", "repo_path", "default_branch", "start_time", "end_time",
				"run_duration_ms", "total_branches_analyzed", "config_params",
			},
		},
		{
			name:  "branch metrics",
			model: new(BranchMetrics),
			columns: []string{
				"analysis_id", "branch_name", "analysis_time", "kind", "depth",
				"commit_count", "ahead", "behind", "contributor_count",
				"conflict_file_count", "size", "stale", "mergeable", "degraded", "last_activity",
			},
		},
		{
			name:  "branches",
			model: new(Branch),
			columns: []string{
				"rank", "name", "label", "kind", "tip", "is_current", "is_default",
				"last_activity", "author", "commit_count", "merged", "stale", "ahead",
				"behind", "contributors", "mergeable", "conflict_file_count",
				"commit_frequency", "size", "depth", "degraded",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := parquet.SchemaOf(tt.model)
			require.NotNil(t, s)
			for _, col := range tt.columns {
				_, ok := s.Lookup(col)
				assert.True(t, ok, "Column %s should exist in schema", col)
			}
		})
	}
}

func TestWriteAnalysisRunsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "analysis_runs.parquet")
	data := sampleRuns()

	require.NoError(t, WriteAnalysisRunsParquet(data, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer file.Close()

	readData := readAll[AnalysisRun](t, file)
	require.Len(t, readData, len(data))

	first := readData[0]
	assert.Equal(t, int64(1), first.AnalysisID)
	assert.Equal(t, "/repo", first.RepoPath)
	require.NotNil(t, first.DefaultBranch)
	assert.Equal(t, "main", *first.DefaultBranch)
	require.NotNil(t, first.EndTime)
	assert.WithinDuration(t, *data[0].EndTime, *first.EndTime, time.Nanosecond)
	require.NotNil(t, first.RunDurationMs)
	assert.Equal(t, int32(1500), *first.RunDurationMs)
	assert.Equal(t, int32(12), first.TotalBranchesAnalyzed)
	require.NotNil(t, first.ConfigParams)
	assert.Equal(t, *data[0].ConfigParams, *first.ConfigParams)

	second := readData[1]
	assert.Nil(t, second.DefaultBranch)
	assert.Nil(t, second.EndTime)
	assert.Nil(t, second.RunDurationMs)
	assert.Nil(t, second.ConfigParams)
	assert.WithinDuration(t, data[1].StartTime, second.StartTime, time.Nanosecond)
}

func TestWriteBranchMetricsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "branch_metrics.parquet")
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	data := []BranchMetrics{
		{AnalysisID: 1, BranchName: "main", AnalysisTime: at, Kind: "local", Depth: "normal", CommitCount: 50, Mergeable: true, LastActivity: &at},
		{AnalysisID: 1, BranchName: "origin/old", AnalysisTime: at, Kind: "remote", Depth: "normal", Behind: 40, Stale: true, Degraded: true},
	}

	require.NoError(t, WriteBranchMetricsParquet(data, outputPath))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer file.Close()

	readData := readAll[BranchMetrics](t, file)
	require.Len(t, readData, 2)
	assert.Equal(t, "main", readData[0].BranchName)
	assert.Equal(t, int32(50), readData[0].CommitCount)
	require.NotNil(t, readData[0].LastActivity)
	assert.WithinDuration(t, at, *readData[0].LastActivity, time.Nanosecond)
	assert.Equal(t, "remote", readData[1].Kind)
	assert.Equal(t, int32(40), readData[1].Behind)
	assert.True(t, readData[1].Stale)
	assert.True(t, readData[1].Degraded)
	assert.Nil(t, readData[1].LastActivity)
}

func TestWriteParquet_EmptyData(t *testing.T) {
	dir := t.TempDir()
	runsPath := filepath.Join(dir, "empty_runs.parquet")
	metricsPath := filepath.Join(dir, "empty_metrics.parquet")

	require.NoError(t, WriteAnalysisRunsParquet([]AnalysisRun{}, runsPath))
	require.NoError(t, WriteBranchMetricsParquet(nil, metricsPath))

	for _, p := range []string{runsPath, metricsPath} {
		_, err := os.Stat(p)
		assert.NoError(t, err, "file should exist even with empty data")
	}
}

func TestWriteParquet_InvalidPath(t *testing.T) {
	invalid := "/nonexistent/directory/output.parquet"
	assert.Error(t, WriteAnalysisRunsParquet(sampleRuns(), invalid))
	assert.Error(t, WriteBranchMetricsParquet([]BranchMetrics{{AnalysisID: 1}}, invalid))
}

func TestWriteBranches(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := ConvertBranches([]schema.EnrichedBranchAnalysis{sampleBranch(now)})

	var buf bytes.Buffer
	require.NoError(t, WriteBranches(&buf, rows))

	readData := readAll[Branch](t, bytes.NewReader(buf.Bytes()))
	require.Len(t, readData, 1)
	got := readData[0]
	assert.Equal(t, int32(1), got.Rank)
	assert.Equal(t, "feature/x", got.Name)
	assert.Equal(t, "Active", got.Label)
	assert.Equal(t, "local", got.Kind)
	assert.Equal(t, int32(3), got.Ahead)
	assert.Equal(t, int32(1), got.Behind)
	assert.Equal(t, []string{"alice", "bob"}, got.Contributors)
	assert.Equal(t, []DailyCount{{Date: "2024-05-29", Count: 1}, {Date: "2024-05-30", Count: 2}}, got.CommitFrequency)
	assert.Equal(t, "deep", got.Depth)
	require.NotNil(t, got.LastActivity)
	assert.WithinDuration(t, now.Add(-72*time.Hour), *got.LastActivity, time.Nanosecond)
}

func TestConvertBranches(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	b := sampleBranch(now)
	b.CommitFrequency = nil
	rows := ConvertBranches([]schema.EnrichedBranchAnalysis{b})

	require.Len(t, rows, 1)
	assert.Equal(t, int32(53), rows[0].CommitCount)
	assert.Equal(t, int32(25), rows[0].Size)
	assert.Equal(t, int32(3), rows[0].ConflictFileCount)
	assert.True(t, rows[0].Mergeable)
	assert.Empty(t, rows[0].CommitFrequency)
	assert.Empty(t, ConvertBranches(nil))
}

func TestConvertAnalysisRunRecords(t *testing.T) {
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	duration := int32(42)
	records := []schema.AnalysisRunRecord{
		{AnalysisID: 7, RepoPath: "/repo", DefaultBranch: "main", StartTime: start, RunDurationMs: &duration, TotalBranchesAnalyzed: 3},
		{AnalysisID: 8, RepoPath: "/repo", StartTime: start},
	}

	runs := ConvertAnalysisRunRecords(records)
	require.Len(t, runs, 2)
	assert.Equal(t, int64(7), runs[0].AnalysisID)
	require.NotNil(t, runs[0].DefaultBranch)
	assert.Equal(t, "main", *runs[0].DefaultBranch)
	assert.Equal(t, &duration, runs[0].RunDurationMs)
	assert.Equal(t, int32(3), runs[0].TotalBranchesAnalyzed)
	assert.Nil(t, runs[1].DefaultBranch, "empty default branch is stored as null")
}

func TestConvertBranchMetricsRecords(t *testing.T) {
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	records := []schema.BranchMetricsRecord{
		{AnalysisID: 7, BranchName: "dev", AnalysisTime: at, Kind: "local", Depth: "fast", Ahead: 2, ContributorCount: 4, Mergeable: true},
	}

	rows := ConvertBranchMetricsRecords(records)
	require.Len(t, rows, 1)
	assert.Equal(t, BranchMetrics{
		AnalysisID: 7, BranchName: "dev", AnalysisTime: at, Kind: "local", Depth: "fast",
		Ahead: 2, ContributorCount: 4, Mergeable: true,
	}, rows[0])
}
