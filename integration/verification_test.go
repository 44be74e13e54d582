//go:build basic

// Package integration contains integration tests for branchspot.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
// Or with databases: go test -tags database ./integration
package integration

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/huangsam/branchspot/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolatedEnv keeps cache and history files inside the test's temp dir.
func isolatedEnv(t *testing.T) []string {
	t.Helper()
	return []string{"HOME=" + t.TempDir()}
}

// TestBranchesVerification runs branchspot branches and checks divergence against git rev-list.
func TestBranchesVerification(t *testing.T) {
	repo := newFixtureRepo(t)

	out, err := runBranchspot(t, repo, isolatedEnv(t), "branches", "--output", "json")
	require.NoError(t, err)

	var branches []schema.EnrichedBranchAnalysis
	require.NoError(t, json.Unmarshal([]byte(out), &branches))
	require.Len(t, branches, 3)

	byName := make(map[string]schema.EnrichedBranchAnalysis, len(branches))
	for _, b := range branches {
		byName[b.Name] = b
	}
	assert.True(t, byName["main"].IsDefault)
	assert.True(t, byName["main"].IsCurrent)
	assert.True(t, byName["done"].Merged)
	assert.False(t, byName["feature/x"].Merged)

	for name, b := range byName {
		if b.IsDefault {
			continue
		}
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, revListCount(t, repo, "main.."+name), b.Divergence.Ahead, "ahead mismatch for %s", name)
			assert.Equal(t, revListCount(t, repo, name+"..main"), b.Divergence.Behind, "behind mismatch for %s", name)
		})
	}
}

// TestSummaryAndActivity checks the aggregate views of the fixture.
func TestSummaryAndActivity(t *testing.T) {
	repo := newFixtureRepo(t)
	env := isolatedEnv(t)

	out, err := runBranchspot(t, repo, env, "summary", "--output", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "metric,value")

	out, err = runBranchspot(t, repo, env, "activity", "--output", "json")
	require.NoError(t, err)
	var activity schema.ActivityOverview
	require.NoError(t, json.Unmarshal([]byte(out), &activity))
	require.NotEmpty(t, activity.TopContributors)
	assert.Equal(t, "Alice Example", activity.TopContributors[0].Name)
}

// TestHistoryExport records a run in SQLite and exports it to Parquet.
func TestHistoryExport(t *testing.T) {
	repo := newFixtureRepo(t)
	home := t.TempDir()
	env := []string{"HOME=" + home, "BRANCHSPOT_ANALYSIS_BACKEND=sqlite"}

	_, err := runBranchspot(t, repo, env, "branches", "--output", "csv")
	require.NoError(t, err)

	out, err := runBranchspot(t, repo, env, "history", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Runs: 1")

	prefix := filepath.Join(t.TempDir(), "history")
	_, err = runBranchspot(t, repo, env, "history", "export", "--output-file", prefix)
	require.NoError(t, err)
	for _, suffix := range []string{".analysis_runs.parquet", ".branch_metrics.parquet"} {
		_, statErr := os.Stat(prefix + suffix)
		assert.NoError(t, statErr)
	}
}

func revListCount(t *testing.T, repo, revRange string) int {
	t.Helper()
	out, err := exec.Command("git", "-C", repo, "rev-list", "--count", revRange).Output()
	require.NoError(t, err)
	n, err := strconv.Atoi(strings.TrimSpace(string(out)))
	require.NoError(t, err)
	return n
}
