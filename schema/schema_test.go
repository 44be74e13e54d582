package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsStale(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-24 * time.Hour)
	old := now.Add(-31 * 24 * time.Hour)

	assert.False(t, IsStale(nil, now), "unknown timestamps are never stale")
	assert.False(t, IsStale(&recent, now))
	assert.True(t, IsStale(&old, now))
}

func TestNewBasicBranchAnalysis(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	last := now.Add(-40 * 24 * time.Hour)
	fact := BranchFact{
		Name:        "feature/x",
		Tip:         "abc123",
		Kind:        LocalBranch,
		LastCommit:  &last,
		Author:      "Alice",
		CommitCount: 12,
		Merged:      true,
	}

	got := NewBasicBranchAnalysis(fact, "main", now)
	assert.Equal(t, "feature/x", got.Name)
	assert.Equal(t, "abc123", got.Tip)
	assert.Equal(t, 12, got.CommitCount)
	assert.True(t, got.Merged)
	assert.True(t, got.Stale)
	assert.False(t, got.IsDefault)
	assert.False(t, got.Degraded)
	assert.Equal(t, Divergence{}, got.Divergence)
	assert.NotNil(t, got.Contributors)
	assert.Empty(t, got.Contributors)
	assert.Nil(t, got.CommitFrequency)
	assert.Equal(t, 40, got.AgeDays(now))

	def := NewBasicBranchAnalysis(BranchFact{Name: "main"}, "main", now)
	assert.True(t, def.IsDefault)
	assert.False(t, def.Stale)
	assert.Equal(t, -1, def.AgeDays(now))
}

func TestAnalysisDepthRank(t *testing.T) {
	assert.Equal(t, 0, FastDepth.Rank())
	assert.Equal(t, 1, NormalDepth.Rank())
	assert.Equal(t, 2, DeepDepth.Rank())
	assert.Equal(t, -1, AnalysisDepth("turbo").Rank())

	assert.True(t, DeepDepth.AtLeast(NormalDepth))
	assert.True(t, NormalDepth.AtLeast(NormalDepth))
	assert.False(t, FastDepth.AtLeast(NormalDepth))
}

func TestAnalysisOptionsValidate(t *testing.T) {
	require.NoError(t, DefaultAnalysisOptions().Validate())

	opts := DefaultAnalysisOptions()
	assert.GreaterOrEqual(t, opts.MaxConcurrency, 1)
	assert.LessOrEqual(t, opts.MaxConcurrency, MaxDefaultConcurrency)
	assert.Equal(t, NormalDepth, opts.Depth)
	assert.Equal(t, []string{"main", "master"}, opts.DefaultCandidates)

	tests := []struct {
		name   string
		mutate func(*AnalysisOptions)
	}{
		{"zero concurrency", func(o *AnalysisOptions) { o.MaxConcurrency = 0 }},
		{"unknown depth", func(o *AnalysisOptions) { o.Depth = "turbo" }},
		{"negative cap", func(o *AnalysisOptions) { o.MaxBranches = -1 }},
		{"negative threshold", func(o *AnalysisOptions) { o.StaleDaysThreshold = -5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultAnalysisOptions()
			tt.mutate(&o)
			assert.ErrorIs(t, o.Validate(), ErrInvalidOptions)
		})
	}
}

func TestAnalysisOptionsWithDefaults(t *testing.T) {
	o := AnalysisOptions{MaxBranches: 3}.WithDefaults()
	assert.Equal(t, 3, o.MaxBranches)
	assert.Equal(t, NormalDepth, o.Depth)
	assert.Equal(t, DefaultConcurrency(), o.MaxConcurrency)
	assert.Equal(t, DefaultCandidates, o.DefaultCandidates)
}

func TestEnrichBranches(t *testing.T) {
	branches := []BranchAnalysis{
		{Name: "main", IsDefault: true},
		{Name: "feature/conflict", ConflictFileCount: 2, Stale: true},
		{Name: "feature/done", Merged: true},
		{Name: "feature/old", Stale: true},
		{Name: "feature/new"},
	}

	got := EnrichBranches(branches)
	require.Len(t, got, 5)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, "Default", got[0].Label)
	assert.Equal(t, "Conflicted", got[1].Label)
	assert.Equal(t, "Merged", got[2].Label)
	assert.Equal(t, "Stale", got[3].Label)
	assert.Equal(t, "Active", got[4].Label)
	assert.Equal(t, "feature/new", got[4].Name)
}

func TestAnalysisResultFindBranch(t *testing.T) {
	r := &AnalysisResult{Branches: []BranchAnalysis{{Name: "main"}, {Name: "dev"}}}
	b, ok := r.FindBranch("dev")
	assert.True(t, ok)
	assert.Equal(t, "dev", b.Name)
	_, ok = r.FindBranch("missing")
	assert.False(t, ok)
}
