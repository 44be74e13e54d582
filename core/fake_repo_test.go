package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/huangsam/branchspot/internal/contract"
	"github.com/huangsam/branchspot/schema"
)

var errFakeQuery = errors.New("fake query failed")

// fakeBranch is one branch of the in-memory repository.
type fakeBranch struct {
	name    string
	kind    schema.BranchKind
	tip     string
	last    *time.Time
	author  string
	commits int             // commits reachable from the tip
	ahead   int             // commits not on the default branch
	behind  int             // default branch commits missing here
	authors []string        // one entry per commit, newest first
	dates   []time.Time     // commit dates, newest first
	stat    schema.DiffStat // tip commit
	diff    schema.DiffStat // against the default branch
}

// fakeRepo is an in-memory GitClient. Branches listed in failing make every
// per-branch analysis query fail.
type fakeRepo struct {
	defaultName string
	remoteHead  string
	current     string
	branches    []fakeBranch
	failing     map[string]bool
	listErr     error
	delay       time.Duration
	delays      map[string]time.Duration // per-branch override of delay

	mu      sync.Mutex
	ranges  []string
	active  map[string]int
	maxBusy int
}

var _ contract.GitClient = (*fakeRepo)(nil)

func (r *fakeRepo) find(ref string) (fakeBranch, bool) {
	for _, b := range r.branches {
		if b.name == ref || (b.tip != "" && b.tip == ref) {
			return b, true
		}
	}
	return fakeBranch{}, false
}

// enter tracks how many distinct branches have queries in flight.
func (r *fakeRepo) enter(name string) func() {
	r.mu.Lock()
	if r.active == nil {
		r.active = make(map[string]int)
	}
	r.active[name]++
	r.maxBusy = max(r.maxBusy, len(r.active))
	r.mu.Unlock()
	delay := r.delay
	if d, ok := r.delays[name]; ok {
		delay = d
	}
	if delay > 0 {
		time.Sleep(delay)
	}
	return func() {
		r.mu.Lock()
		r.active[name]--
		if r.active[name] == 0 {
			delete(r.active, name)
		}
		r.mu.Unlock()
	}
}

// branchQuery resolves ref for a per-branch analysis query.
func (r *fakeRepo) branchQuery(ref string) (fakeBranch, func(), error) {
	b, ok := r.find(ref)
	if !ok {
		return fakeBranch{}, func() {}, fmt.Errorf("unknown ref %s: %w", ref, errFakeQuery)
	}
	leave := r.enter(b.name)
	if r.failing[b.name] {
		return fakeBranch{}, leave, fmt.Errorf("%s: %w", b.name, errFakeQuery)
	}
	return b, leave, nil
}

func (r *fakeRepo) Run(_ context.Context, _ string, args ...string) ([]byte, error) {
	return nil, fmt.Errorf("run %v: %w", args, errFakeQuery)
}

func (r *fakeRepo) GetRepoRoot(_ context.Context, contextPath string) (string, error) {
	return contextPath, nil
}

func (r *fakeRepo) GetRepoHash(_ context.Context, _ string) (string, error) {
	b, ok := r.find(r.current)
	if !ok {
		return "", errFakeQuery
	}
	return b.tip, nil
}

func (r *fakeRepo) GetRemoteHead(_ context.Context, _ string) (string, error) {
	if r.remoteHead == "" {
		return "", errFakeQuery
	}
	return r.remoteHead, nil
}

func (r *fakeRepo) GetCurrentBranch(_ context.Context, _ string) (string, error) {
	return r.current, nil
}

func (r *fakeRepo) ResolveRef(_ context.Context, _ string, ref string) (string, error) {
	b, ok := r.find(ref)
	if !ok || b.tip == "" {
		return "", errFakeQuery
	}
	return b.tip, nil
}

func (r *fakeRepo) GetMergeBase(_ context.Context, _ string, a, _ string) (string, error) {
	b, leave, err := r.branchQuery(a)
	defer leave()
	if err != nil {
		return "", err
	}
	def, _ := r.find(r.defaultName)
	switch {
	case b.ahead == 0:
		return b.tip, nil
	case b.behind == 0:
		return def.tip, nil
	default:
		return "base-" + b.name, nil
	}
}

func (r *fakeRepo) ListLocalBranches(_ context.Context, _ string) ([]string, error) {
	var names []string
	for _, b := range r.branches {
		if b.kind == schema.LocalBranch {
			names = append(names, b.name)
		}
	}
	return names, nil
}

func (r *fakeRepo) ListBranches(_ context.Context, _ string) ([]contract.BranchRef, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	refs := make([]contract.BranchRef, 0, len(r.branches))
	for _, b := range r.branches {
		refs = append(refs, contract.BranchRef{Name: b.name, Kind: b.kind})
	}
	return refs, nil
}

func (r *fakeRepo) GetBranchRefs(_ context.Context, _ string) ([]byte, error) {
	var sb strings.Builder
	for _, b := range r.branches {
		prefix := contract.LocalRefPrefix
		if b.kind == schema.RemoteBranch {
			prefix = contract.RemoteRefPrefix
		}
		date := ""
		if b.last != nil {
			date = b.last.Format(time.RFC3339)
		}
		fmt.Fprintf(&sb, "%s%s|%s|%s|%s\n", prefix, b.name, b.tip, date, b.author)
	}
	return []byte(sb.String()), nil
}

func (r *fakeRepo) ListMergedBranches(_ context.Context, _ string, _ string) ([]string, error) {
	var merged []string
	for _, b := range r.branches {
		if b.ahead == 0 {
			merged = append(merged, b.name)
		}
	}
	return merged, nil
}

// rangeCount answers "base..head" ranges relative to the default branch.
func (r *fakeRepo) rangeCount(revRange string) (int, error) {
	r.mu.Lock()
	r.ranges = append(r.ranges, revRange)
	r.mu.Unlock()

	from, to, ok := strings.Cut(revRange, "..")
	if !ok {
		b, found := r.find(revRange)
		if !found {
			return 0, errFakeQuery
		}
		return b.commits, nil
	}
	if from == r.defaultName {
		b, leave, err := r.branchQuery(to)
		defer leave()
		return b.ahead, err
	}
	b, leave, err := r.branchQuery(from)
	defer leave()
	return b.behind, err
}

func (r *fakeRepo) CountCommits(_ context.Context, _ string, revRange string) (int, error) {
	return r.rangeCount(revRange)
}

func (r *fakeRepo) ListCommits(_ context.Context, _ string, revRange string) ([]string, error) {
	n, err := r.rangeCount(revRange)
	if err != nil {
		return nil, err
	}
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("c%d", i)
	}
	return ids, nil
}

func (r *fakeRepo) GetAuthors(_ context.Context, _ string, ref string, _ bool, limit int) ([]string, error) {
	b, leave, err := r.branchQuery(ref)
	defer leave()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(b.authors) > limit {
		return b.authors[:limit], nil
	}
	return b.authors, nil
}

func (r *fakeRepo) GetCommitDates(_ context.Context, _ string, ref string, since time.Time, limit int) ([]time.Time, error) {
	b, leave, err := r.branchQuery(ref)
	defer leave()
	if err != nil {
		return nil, err
	}
	var dates []time.Time
	for _, d := range b.dates {
		if d.Before(since) {
			continue
		}
		if limit > 0 && len(dates) == limit {
			break
		}
		dates = append(dates, d)
	}
	return dates, nil
}

func (r *fakeRepo) GetCommitStat(_ context.Context, _ string, rev string) (schema.DiffStat, error) {
	b, leave, err := r.branchQuery(rev)
	defer leave()
	if err != nil {
		return schema.DiffStat{}, err
	}
	return b.stat, nil
}

func (r *fakeRepo) GetDiffStat(_ context.Context, _ string, _, head string) (schema.DiffStat, error) {
	b, leave, err := r.branchQuery(head)
	defer leave()
	if err != nil {
		return schema.DiffStat{}, err
	}
	return b.diff, nil
}

// recordedRanges returns every revision range queried so far.
func (r *fakeRepo) recordedRanges() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ranges...)
}

// fixtureNow anchors fixture timestamps to whole seconds in UTC.
func fixtureNow() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

func ago(now time.Time, days int) *time.Time {
	t := now.Add(-time.Duration(days) * 24 * time.Hour)
	return &t
}

// exampleRepo has main (current, today), feature/x (3 days old) and old (120 days old).
func exampleRepo(now time.Time) *fakeRepo {
	return &fakeRepo{
		defaultName: "main",
		remoteHead:  "main",
		current:     "main",
		branches: []fakeBranch{
			{
				name: "old", kind: schema.LocalBranch, tip: "c0ffee03", last: ago(now, 120), author: "carol",
				commits: 2, ahead: 1, behind: 48,
				authors: []string{"carol", "carol"},
				dates:   []time.Time{*ago(now, 120)},
				stat:    schema.DiffStat{FilesChanged: 1, Additions: 4},
				diff:    schema.DiffStat{FilesChanged: 1, Additions: 4},
			},
			{
				name: "feature/x", kind: schema.LocalBranch, tip: "c0ffee02", last: ago(now, 3), author: "bob",
				commits: 5, ahead: 3, behind: 1,
				authors: []string{"bob", "alice", "bob", "alice", "alice"},
				dates:   []time.Time{*ago(now, 3), *ago(now, 4), *ago(now, 4), *ago(now, 40), *ago(now, 41)},
				stat:    schema.DiffStat{FilesChanged: 2, Additions: 10, Deletions: 2},
				diff:    schema.DiffStat{FilesChanged: 3, Additions: 20, Deletions: 5},
			},
			{
				name: "main", kind: schema.LocalBranch, tip: "c0ffee01", last: &now, author: "alice",
				commits: 50,
				authors: []string{"alice", "bob", "alice"},
				dates:   []time.Time{now, *ago(now, 1)},
				stat:    schema.DiffStat{FilesChanged: 1, Additions: 1, Deletions: 1},
			},
		},
	}
}
