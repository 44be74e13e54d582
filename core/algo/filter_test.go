package algo

import (
	"testing"
	"time"

	"github.com/huangsam/branchspot/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) *time.Time {
	t := now.Add(-time.Duration(n) * 24 * time.Hour)
	return &t
}

func names(facts []schema.BranchFact) []string {
	out := make([]string, len(facts))
	for i, f := range facts {
		out[i] = f.Name
	}
	return out
}

func fixtureFacts() []schema.BranchFact {
	return []schema.BranchFact{
		{Name: "old", LastCommit: daysAgo(120), CommitCount: 2},
		{Name: "feature/x", LastCommit: daysAgo(3), CommitCount: 5},
		{Name: "main", LastCommit: daysAgo(0), CommitCount: 50, IsCurrent: true},
	}
}

func TestFilterStale(t *testing.T) {
	kept := FilterStale(fixtureFacts(), "main", 30, now)
	assert.ElementsMatch(t, []string{"main", "feature/x"}, names(kept))

	all := FilterStale(fixtureFacts(), "main", 0, now)
	assert.Len(t, all, 3, "a zero threshold disables the cut")
}

func TestFilterStale_NeverDropsDefaultOrCurrent(t *testing.T) {
	facts := []schema.BranchFact{
		{Name: "main", LastCommit: daysAgo(400)},
		{Name: "wip", LastCommit: daysAgo(400), IsCurrent: true},
		{Name: "ancient", LastCommit: daysAgo(400)},
		{Name: "unknown"},
	}
	kept := FilterStale(facts, "main", 7, now)
	assert.Equal(t, []string{"main", "wip", "unknown"}, names(kept))
}

func TestPrioritizeBranches(t *testing.T) {
	facts := []schema.BranchFact{
		{Name: "zeta", LastCommit: daysAgo(1)},
		{Name: "alpha", LastCommit: daysAgo(1)},
		{Name: "no-date"},
		{Name: "wip", LastCommit: daysAgo(50), IsCurrent: true},
		{Name: "recent", LastCommit: daysAgo(0)},
		{Name: "main", LastCommit: daysAgo(90)},
	}
	got := PrioritizeBranches(facts, "main", 0)
	assert.Equal(t, []string{"main", "wip", "recent", "alpha", "zeta", "no-date"}, names(got))
	assert.Equal(t, "zeta", facts[0].Name, "input is not reordered")
}

func TestPrioritizeBranches_Cap(t *testing.T) {
	facts := []schema.BranchFact{
		{Name: "a", LastCommit: daysAgo(1)},
		{Name: "wip", IsCurrent: true},
		{Name: "main"},
	}
	assert.Equal(t, []string{"main"}, names(PrioritizeBranches(facts, "main", 1)), "default wins a cap of one")
	assert.Equal(t, []string{"main", "wip"}, names(PrioritizeBranches(facts, "main", 2)))
	assert.Len(t, PrioritizeBranches(facts, "main", 10), 3)
}

func TestSelectBranches(t *testing.T) {
	opts := schema.AnalysisOptions{StaleDaysThreshold: 30}
	got := SelectBranches(fixtureFacts(), "main", opts, now)
	assert.Equal(t, []string{"main", "feature/x"}, names(got))

	opts.MaxBranches = 1
	got = SelectBranches(fixtureFacts(), "main", opts, now)
	assert.Equal(t, []string{"main"}, names(got))
}

func TestSelectBranches_CapIncludesDefault(t *testing.T) {
	var facts []schema.BranchFact
	for i := range 20 {
		facts = append(facts, schema.BranchFact{Name: string(rune('a' + i)), LastCommit: daysAgo(i)})
	}
	facts = append(facts, schema.BranchFact{Name: "main", LastCommit: daysAgo(365)})

	got := SelectBranches(facts, "main", schema.AnalysisOptions{MaxBranches: 5}, now)
	require.Len(t, got, 5)
	assert.Equal(t, "main", got[0].Name)
	assert.Equal(t, []string{"main", "a", "b", "c", "d"}, names(got))
}
