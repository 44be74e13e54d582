package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/branchspot/internal/contract"
	"github.com/huangsam/branchspot/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var generatedAt = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func daysBefore(n int) *time.Time {
	t := generatedAt.Add(-time.Duration(n) * 24 * time.Hour)
	return &t
}

func sampleResult() *schema.AnalysisResult {
	branches := []schema.BranchAnalysis{
		{
			Name: "main", Kind: schema.LocalBranch, IsCurrent: true, IsDefault: true, Tip: "c0ffee01",
			LastActivity: daysBefore(0), Author: "alice", CommitCount: 50, Mergeable: true,
			Contributors: []string{"alice", "bob"}, Depth: schema.NormalDepth,
		},
		{
			Name: "feature/x", Kind: schema.LocalBranch, Tip: "c0ffee02",
			LastActivity: daysBefore(3), Author: "bob", CommitCount: 53,
			Divergence: schema.Divergence{Ahead: 3, Behind: 1}, Contributors: []string{"alice", "bob"},
			Mergeable: true, Size: 12, Depth: schema.NormalDepth,
		},
		{
			Name: "origin/broken", Kind: schema.RemoteBranch, Contributors: []string{},
			Depth: schema.NormalDepth, Degraded: true,
		},
	}
	return &schema.AnalysisResult{
		Summary: schema.RepositorySummary{
			Path: "/repo", DefaultBranch: "main", TotalBranches: 3, LocalBranches: 2,
			RemoteBranches: 1, MergeableCount: 2,
		},
		Branches: branches,
		Statistics: schema.BranchStatistics{
			TotalCommits: 103, AverageCommits: 34.33, TotalContributors: 2, DegradedBranches: 1,
			OldestActivity: daysBefore(3), NewestActivity: daysBefore(0), MedianAgeDays: 1.5,
			BranchesWithoutAge: 1,
		},
		Activity: schema.ActivityOverview{
			DailyCommits: []schema.DailyCount{{Date: "2024-05-29", Count: 4}, {Date: "2024-05-30", Count: 2}},
			TopContributors: []schema.ContributorCredit{
				{Name: "alice", Commits: 52}, {Name: "bob", Commits: 52},
			},
			Categories: map[schema.BranchCategory]int{
				schema.ActiveCategory: 3, schema.MergeableCategory: 2,
			},
		},
		Depth:       schema.NormalDepth,
		GeneratedAt: generatedAt,
	}
}

func testConfig() *contract.Config {
	return &contract.Config{
		RepoPath:     "/work/repo",
		Workers:      4,
		Depth:        schema.NormalDepth,
		Output:       schema.TextOut,
		Width:        200,
		CacheBackend: schema.SQLiteBackend,
	}
}

func TestWriteAnalysisHeader(t *testing.T) {
	cfg := testConfig()
	cfg.MaxBranches = 20
	cfg.StaleDays = 90

	var buf bytes.Buffer
	writeAnalysisHeader(&buf, cfg)
	assert.Equal(t, "Repo: repo (Depth: normal)\nBranches: up to 20, active within 90 days, 4 workers\n", buf.String())

	cfg.UseEmojis = true
	cfg.MaxBranches, cfg.StaleDays = 0, 0
	cfg.RepoPath = "."
	buf.Reset()
	writeAnalysisHeader(&buf, cfg)
	assert.Equal(t, "🔎 Repo: current (Depth: normal)\n🌿 Branches: all, 4 workers\n", buf.String())
}

func TestGetMaxTableNameWidth(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		detail bool
		want   int
	}{
		{"narrow terminal", 40, false, minNameWidth},
		{"medium terminal", 90, false, 35},
		{"detail columns", 130, true, 30},
		{"wide terminal", 400, true, maxNameWidth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Width = tt.width
			cfg.Detail = tt.detail
			assert.Equal(t, tt.want, getMaxTableNameWidth(cfg))
		})
	}
}

func TestFormatLastActivity(t *testing.T) {
	assert.Equal(t, "unknown", formatLastActivity(nil, generatedAt))
	assert.Equal(t, "3 days ago", formatLastActivity(daysBefore(3), generatedAt))
	assert.Equal(t, "", formatTimestamp(nil))
	assert.Equal(t, "2024-05-29T12:00:00Z", formatTimestamp(daysBefore(3)))
}

func TestBranchLabel(t *testing.T) {
	result := sampleResult()
	assert.Equal(t, "Default", branchLabel(result.Branches[0], false))
	assert.Equal(t, "Active", branchLabel(result.Branches[1], false))
	assert.Equal(t, "Partial", branchLabel(result.Branches[2], false))
	assert.Contains(t, branchLabel(result.Branches[2], true), "Partial")
}

func TestWriteBranchTable(t *testing.T) {
	result := sampleResult()
	cfg := testConfig()
	cfg.Detail = true

	var buf bytes.Buffer
	err := writeBranchTable(&buf, result, schema.EnrichBranches(result.Branches), cfg, 100*time.Millisecond)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "* main")
	assert.Contains(t, output, "feature/x")
	assert.Contains(t, output, "origin/broken")
	assert.Contains(t, output, "3 days ago")
	assert.Contains(t, output, "unknown")
	assert.Contains(t, output, "Partial")
	assert.Contains(t, output, "Showing 3 branches (default: main, stale: 0, mergeable: 2, degraded: 1)")
	assert.Contains(t, output, "Analysis completed in 100ms with 4 workers. Cache backend: sqlite")
	assert.Contains(t, output, "alice, bob")
}

func TestDetailCells(t *testing.T) {
	b := schema.BranchAnalysis{
		CommitCount:  8,
		Contributors: []string{"Ava Cathy", "Bob Dylan", "Carol King", "Dan Brown"},
		Size:         240,
		Author:       "Ava Cathy",
	}
	assert.Equal(t, []string{"8", "Ava C, Bob D, Carol K +1", "240", "Ava Cathy"}, detailCells(b))

	b.Contributors = []string{}
	assert.Equal(t, "-", detailCells(b)[1])
}

func TestWriteBranchCSV(t *testing.T) {
	result := sampleResult()
	var buf bytes.Buffer
	require.NoError(t, writeBranchCSV(&buf, schema.EnrichBranches(result.Branches)))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "rank", records[0][0])
	assert.Equal(t, "branch", records[0][1])
	assert.Len(t, records[0], 20)

	feature := records[2]
	assert.Equal(t, "2", feature[0])
	assert.Equal(t, "feature/x", feature[1])
	assert.Equal(t, "Active", feature[2])
	assert.Equal(t, "3", feature[12])
	assert.Equal(t, "1", feature[13])
	assert.Equal(t, "alice|bob", feature[17])

	broken := records[3]
	assert.Equal(t, "", broken[7], "unknown activity is empty")
	assert.Equal(t, "true", broken[19])
}

func TestWriteBranchResults_JSONFile(t *testing.T) {
	cfg := testConfig()
	cfg.Output = schema.JSONOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "branches.json")

	require.NoError(t, WriteBranchResults(sampleResult(), cfg, time.Second))

	raw, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	var decoded []schema.EnrichedBranchAnalysis
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 3)
	assert.Equal(t, 1, decoded[0].Rank)
	assert.Equal(t, "Default", decoded[0].Label)
	assert.Equal(t, "feature/x", decoded[1].Name)
	assert.Equal(t, 3, decoded[1].Divergence.Ahead)
}

func TestWriteBranchResults_Parquet(t *testing.T) {
	cfg := testConfig()
	cfg.Output = schema.ParquetOut

	err := WriteBranchResults(sampleResult(), cfg, time.Second)
	require.Error(t, err, "parquet needs an output file")

	cfg.OutputFile = filepath.Join(t.TempDir(), "branches.parquet")
	require.NoError(t, WriteBranchResults(sampleResult(), cfg, time.Second))
	info, err := os.Stat(cfg.OutputFile)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestWriteSummaryResults(t *testing.T) {
	result := sampleResult()

	var buf bytes.Buffer
	require.NoError(t, writeSummaryTable(&buf, result, testConfig(), 50*time.Millisecond))
	output := buf.String()
	assert.Contains(t, output, "Default branch")
	assert.Contains(t, output, "103")
	assert.Contains(t, output, "34.33")
	assert.Contains(t, output, "3 days ago")
	assert.Contains(t, output, "Summary of /repo completed in 50ms (depth: normal)")

	cfg := testConfig()
	cfg.Output = schema.ParquetOut
	assert.ErrorIs(t, WriteSummaryResults(result, cfg, 0), errParquetUnsupported)
}

func TestWriteSummaryResults_Files(t *testing.T) {
	dir := t.TempDir()
	result := sampleResult()

	cfg := testConfig()
	cfg.Output = schema.CSVOut
	cfg.OutputFile = filepath.Join(dir, "summary.csv")
	require.NoError(t, WriteSummaryResults(result, cfg, 0))

	f, err := os.Open(cfg.OutputFile)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"metric", "value"}, records[0])
	assert.Contains(t, records, []string{"default_branch", "main"})
	assert.Contains(t, records, []string{"degraded_branches", "1"})
	assert.Contains(t, records, []string{"oldest_activity", "3 days ago"})

	cfg.Output = schema.JSONOut
	cfg.OutputFile = filepath.Join(dir, "summary.json")
	require.NoError(t, WriteSummaryResults(result, cfg, 0))
	raw, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	var report summaryReport
	require.NoError(t, json.Unmarshal(raw, &report))
	assert.Equal(t, result.Summary, report.Summary)
	assert.Equal(t, 103, report.Statistics.TotalCommits)
	assert.Equal(t, schema.NormalDepth, report.Depth)
}

func TestWriteActivityTables(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeActivityTables(&buf, sampleResult().Activity, testConfig(), time.Second))

	output := buf.String()
	assert.Contains(t, output, "2024-05-29")
	assert.Contains(t, output, strings.Repeat("#", maxBarWidth))
	assert.Contains(t, output, "alice")
	assert.Contains(t, output, "conflicted")
	assert.Contains(t, output, "Activity over 2 days from 2 contributors completed in 1s with 4 workers")
}

func TestWriteActivityCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeActivityCSV(&buf, sampleResult().Activity))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"section", "key", "value"},
		{"daily", "2024-05-29", "4"},
		{"daily", "2024-05-30", "2"},
		{"contributor", "alice", "52"},
		{"contributor", "bob", "52"},
		{"category", "active", "3"},
		{"category", "stale", "0"},
		{"category", "mergeable", "2"},
		{"category", "conflicted", "0"},
	}, records)

	cfg := testConfig()
	cfg.Output = schema.ParquetOut
	assert.ErrorIs(t, WriteActivityResults(sampleResult(), cfg, 0), errParquetUnsupported)
}

func TestActivityBar(t *testing.T) {
	assert.Equal(t, "", activityBar(0, 10))
	assert.Equal(t, "", activityBar(3, 0))
	assert.Equal(t, "#", activityBar(1, 1000))
	assert.Equal(t, strings.Repeat("#", 15), activityBar(5, 10))
}
