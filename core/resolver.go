package core

import (
	"context"
	"slices"
	"sync"

	"github.com/huangsam/branchspot/internal/contract"
	"golang.org/x/sync/singleflight"
)

// fallbackDefaultBranch is used when no candidates are configured at all.
const fallbackDefaultBranch = "main"

// DefaultBranchResolver finds the primary branch of a repository through an
// ordered fallback chain. The first resolution is kept for the lifetime of
// the resolver, so one resolver should back exactly one run.
type DefaultBranchResolver struct {
	client     contract.GitClient
	repoPath   string
	candidates []string

	group    singleflight.Group
	mu       sync.RWMutex
	resolved string
}

// NewDefaultBranchResolver creates a resolver trying candidates in order.
func NewDefaultBranchResolver(client contract.GitClient, repoPath string, candidates []string) *DefaultBranchResolver {
	return &DefaultBranchResolver{
		client:     client,
		repoPath:   repoPath,
		candidates: slices.Clone(candidates),
	}
}

// Resolve returns the default branch name. It never fails; when every attempt
// comes up empty the first candidate is returned.
func (r *DefaultBranchResolver) Resolve(ctx context.Context) string {
	r.mu.RLock()
	name := r.resolved
	r.mu.RUnlock()
	if name != "" {
		return name
	}

	v, _, _ := r.group.Do("default", func() (any, error) {
		r.mu.RLock()
		cached := r.resolved
		r.mu.RUnlock()
		if cached != "" {
			return cached, nil
		}

		resolved := r.resolve(ctx)
		r.mu.Lock()
		r.resolved = resolved
		r.mu.Unlock()
		return resolved, nil
	})
	return v.(string)
}

// resolve walks the fallback chain once.
func (r *DefaultBranchResolver) resolve(ctx context.Context) string {
	log := contract.Logger.WithField("repo", r.repoPath)

	// 1. Remote HEAD
	if head, err := r.client.GetRemoteHead(ctx, r.repoPath); err != nil {
		log.WithError(err).Debug("remote HEAD unavailable")
	} else if head != "" {
		return head
	}

	// 2. Configured candidates present locally
	locals, err := r.client.ListLocalBranches(ctx, r.repoPath)
	if err != nil {
		log.WithError(err).Debug("local branches unavailable")
	}
	for _, candidate := range r.candidates {
		if slices.Contains(locals, candidate) {
			return candidate
		}
	}

	// 3. Checked out branch
	if current, err := r.client.GetCurrentBranch(ctx, r.repoPath); err != nil {
		log.WithError(err).Debug("current branch unavailable")
	} else if current != "" {
		return current
	}

	// 4. First local branch
	if len(locals) > 0 {
		return locals[0]
	}

	log.Debug("no branches found, using fallback default")
	if len(r.candidates) == 0 {
		return fallbackDefaultBranch
	}
	return r.candidates[0]
}
