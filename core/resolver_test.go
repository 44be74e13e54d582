package core

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/huangsam/branchspot/internal/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var errNoRemote = errors.New("no origin")

func TestDefaultBranchResolver_Chain(t *testing.T) {
	tests := []struct {
		name       string
		remoteHead string
		remoteErr  error
		locals     []string
		current    string
		candidates []string
		expected   string
	}{
		{"remote HEAD wins", "develop", nil, []string{"main"}, "main", []string{"main"}, "develop"},
		{"first candidate present", "", errNoRemote, []string{"feature", "master", "main"}, "feature", []string{"main", "master"}, "main"},
		{"second candidate present", "", errNoRemote, []string{"feature", "master"}, "feature", []string{"main", "master"}, "master"},
		{"current branch", "", errNoRemote, []string{"feature", "topic"}, "topic", []string{"main"}, "topic"},
		{"first local branch", "", errNoRemote, []string{"feature", "topic"}, "", []string{"main"}, "feature"},
		{"first candidate fallback", "", errNoRemote, nil, "", []string{"trunk", "main"}, "trunk"},
		{"static fallback", "", errNoRemote, nil, "", nil, "main"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &contract.MockGitClient{}
			client.On("GetRemoteHead", mock.Anything, testRepo).Return(tt.remoteHead, tt.remoteErr)
			client.On("ListLocalBranches", mock.Anything, testRepo).Return(tt.locals, nil)
			client.On("GetCurrentBranch", mock.Anything, testRepo).Return(tt.current, nil)

			r := NewDefaultBranchResolver(client, testRepo, tt.candidates)
			assert.Equal(t, tt.expected, r.Resolve(context.Background()))
		})
	}
}

func TestDefaultBranchResolver_FailuresAdvance(t *testing.T) {
	client := &contract.MockGitClient{}
	client.On("GetRemoteHead", mock.Anything, testRepo).Return("", errNoRemote)
	client.On("ListLocalBranches", mock.Anything, testRepo).Return(nil, errors.New("boom"))
	client.On("GetCurrentBranch", mock.Anything, testRepo).Return("", errors.New("detached"))

	r := NewDefaultBranchResolver(client, testRepo, []string{"master"})
	assert.Equal(t, "master", r.Resolve(context.Background()))
}

func TestDefaultBranchResolver_ResolvesOnce(t *testing.T) {
	client := &contract.MockGitClient{}
	client.On("GetRemoteHead", mock.Anything, testRepo).Return("main", nil).Once()

	r := NewDefaultBranchResolver(client, testRepo, []string{"main"})
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 16 {
		wg.Go(func() {
			assert.Equal(t, "main", r.Resolve(ctx))
		})
	}
	wg.Wait()
	assert.Equal(t, "main", r.Resolve(ctx))
	client.AssertNumberOfCalls(t, "GetRemoteHead", 1)
}
