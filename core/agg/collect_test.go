package agg

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/huangsam/branchspot/internal/contract"
	"github.com/huangsam/branchspot/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const repo = "/repo"

func TestCollectBranchFacts(t *testing.T) {
	m := new(contract.MockGitClient)
	m.On("ListBranches", mock.Anything, repo).Return([]contract.BranchRef{
		{Name: "main", Kind: schema.LocalBranch},
		{Name: "feature/x", Kind: schema.LocalBranch},
		{Name: "no-refs", Kind: schema.LocalBranch},
		{Name: "origin/main", Kind: schema.RemoteBranch},
	}, nil)
	m.On("GetBranchRefs", mock.Anything, repo).Return([]byte(
		"refs/heads/main|t-main|2024-05-01T10:00:00Z|Alice\n"+
			"refs/heads/feature/x|t-x|2024-04-01T10:00:00Z|Bob\n"+
			"refs/remotes/origin/main|t-main|2024-05-01T10:00:00Z|Alice\n"), nil)
	m.On("GetCurrentBranch", mock.Anything, repo).Return("no-refs", nil)
	m.On("CountCommits", mock.Anything, repo, "t-main").Return(50, nil)
	m.On("CountCommits", mock.Anything, repo, "t-x").Return(5, nil)
	m.On("CountCommits", mock.Anything, repo, "no-refs").Return(0, errors.New("boom"))
	m.On("ListMergedBranches", mock.Anything, repo, "main").Return([]string{"main", "origin/main"}, nil)

	facts, err := CollectBranchFacts(context.Background(), m, repo, "main")
	require.NoError(t, err)
	require.Len(t, facts, 4)

	names := make([]string, len(facts))
	for i, f := range facts {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"main", "feature/x", "no-refs", "origin/main"}, names, "enumeration order is kept")

	assert.Equal(t, "t-main", facts[0].Tip)
	assert.Equal(t, 50, facts[0].CommitCount)
	assert.True(t, facts[0].Merged)
	assert.False(t, facts[0].IsCurrent)

	assert.Equal(t, 5, facts[1].CommitCount)
	assert.False(t, facts[1].Merged)
	assert.Equal(t, "Bob", facts[1].Author)

	partial := facts[2]
	assert.True(t, partial.IsCurrent)
	assert.Empty(t, partial.Tip)
	assert.Nil(t, partial.LastCommit)
	assert.Equal(t, 0, partial.CommitCount, "failed counts degrade to zero")

	assert.Equal(t, schema.RemoteBranch, facts[3].Kind)
	assert.True(t, facts[3].Merged)
	m.AssertExpectations(t)
}

func TestCollectBranchFacts_FatalEnumeration(t *testing.T) {
	m := new(contract.MockGitClient)
	m.On("ListBranches", mock.Anything, repo).Return(nil, &contract.CommandError{Args: []string{"for-each-ref"}, Err: errors.New("exit 128")})

	_, err := CollectBranchFacts(context.Background(), m, repo, "main")
	require.Error(t, err)
	assert.ErrorIs(t, err, contract.ErrAnalysisFailed)
	assert.ErrorIs(t, err, contract.ErrCommandFailed)
	var aerr *contract.AnalysisError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, contract.PhaseCollect, aerr.Phase)
}

func TestCollectBranchFacts_FatalRefs(t *testing.T) {
	m := new(contract.MockGitClient)
	m.On("ListBranches", mock.Anything, repo).Return([]contract.BranchRef{{Name: "main", Kind: schema.LocalBranch}}, nil)
	m.On("GetBranchRefs", mock.Anything, repo).Return(nil, errors.New("boom"))

	_, err := CollectBranchFacts(context.Background(), m, repo, "main")
	assert.ErrorIs(t, err, contract.ErrAnalysisFailed)
}

func TestCollectBranchFacts_DegradedMergedSet(t *testing.T) {
	m := new(contract.MockGitClient)
	m.On("ListBranches", mock.Anything, repo).Return([]contract.BranchRef{{Name: "main", Kind: schema.LocalBranch}}, nil)
	m.On("GetBranchRefs", mock.Anything, repo).Return([]byte("refs/heads/main|t1|2024-05-01T10:00:00Z|Alice\n"), nil)
	m.On("GetCurrentBranch", mock.Anything, repo).Return("", errors.New("detached"))
	m.On("CountCommits", mock.Anything, repo, "t1").Return(3, nil)
	m.On("ListMergedBranches", mock.Anything, repo, "main").Return(nil, errors.New("boom"))

	facts, err := CollectBranchFacts(context.Background(), m, repo, "main")
	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.False(t, facts[0].Merged)
	assert.False(t, facts[0].IsCurrent)
	assert.Equal(t, 3, facts[0].CommitCount)
}

func TestCollectBranchFacts_Batches(t *testing.T) {
	total := CommitCountBatchSize*2 + 7
	refs := make([]contract.BranchRef, total)
	raw := ""
	m := new(contract.MockGitClient)
	for i := range total {
		name := fmt.Sprintf("b%03d", i)
		refs[i] = contract.BranchRef{Name: name, Kind: schema.LocalBranch}
		raw += fmt.Sprintf("refs/heads/%s|tip-%s|2024-05-01T10:00:00Z|Alice\n", name, name)
		m.On("CountCommits", mock.Anything, repo, "tip-"+name).Return(i, nil).Once()
	}
	m.On("ListBranches", mock.Anything, repo).Return(refs, nil)
	m.On("GetBranchRefs", mock.Anything, repo).Return([]byte(raw), nil)
	m.On("GetCurrentBranch", mock.Anything, repo).Return("b000", nil)
	m.On("ListMergedBranches", mock.Anything, repo, "b000").Return([]string{"b000"}, nil)

	facts, err := CollectBranchFacts(context.Background(), m, repo, "b000")
	require.NoError(t, err)
	require.Len(t, facts, total)
	for i, f := range facts {
		assert.Equal(t, i, f.CommitCount)
	}
	m.AssertNumberOfCalls(t, "CountCommits", total)
}
