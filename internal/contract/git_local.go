package contract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/branchspot/schema"
)

// Reference namespaces enumerated by the branch pipeline.
const (
	LocalRefPrefix  = "refs/heads/"
	RemoteRefPrefix = "refs/remotes/"
)

// BranchRefFormat is the for-each-ref format behind GetBranchRefs.
const BranchRefFormat = "%(refname)|%(objectname)|%(committerdate:iso-strict)|%(authorname)"

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct{}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

// Run executes a git command and returns its standard output.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	out, err := cmd.Output()
	if err == nil {
		return out, nil
	}
	cmdErr := &CommandError{Args: args, Err: err}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		cmdErr.Stderr = strings.TrimSpace(string(exitErr.Stderr))
	}
	return nil, cmdErr
}

// runTrimmed runs a command and returns its trimmed output.
func (c *LocalGitClient) runTrimmed(ctx context.Context, repoPath string, args ...string) (string, error) {
	out, err := c.Run(ctx, repoPath, args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// GetRepoRoot implements the GitClient interface.
func (c *LocalGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	return c.runTrimmed(ctx, contextPath, "rev-parse", "--show-toplevel")
}

// GetRepoHash implements the GitClient interface.
func (c *LocalGitClient) GetRepoHash(ctx context.Context, repoPath string) (string, error) {
	return c.runTrimmed(ctx, repoPath, "rev-parse", "HEAD")
}

// GetRemoteHead implements the GitClient interface.
func (c *LocalGitClient) GetRemoteHead(ctx context.Context, repoPath string) (string, error) {
	out, err := c.runTrimmed(ctx, repoPath, "symbolic-ref", "--short", "refs/remotes/origin/HEAD")
	if err != nil {
		return "", err
	}
	_, name, found := strings.Cut(out, "/")
	if !found || name == "" {
		return "", fmt.Errorf("unexpected remote HEAD target %q", out)
	}
	return name, nil
}

// GetCurrentBranch implements the GitClient interface.
func (c *LocalGitClient) GetCurrentBranch(ctx context.Context, repoPath string) (string, error) {
	return c.runTrimmed(ctx, repoPath, "branch", "--show-current")
}

// ResolveRef implements the GitClient interface.
func (c *LocalGitClient) ResolveRef(ctx context.Context, repoPath string, ref string) (string, error) {
	return c.runTrimmed(ctx, repoPath, "rev-parse", "--verify", "--quiet", ref+"^{commit}")
}

// GetMergeBase implements the GitClient interface.
func (c *LocalGitClient) GetMergeBase(ctx context.Context, repoPath string, a, b string) (string, error) {
	return c.runTrimmed(ctx, repoPath, "merge-base", a, b)
}

// ListLocalBranches implements the GitClient interface.
func (c *LocalGitClient) ListLocalBranches(ctx context.Context, repoPath string) ([]string, error) {
	out, err := c.Run(ctx, repoPath, "for-each-ref", "--format=%(refname:short)", "refs/heads")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// ListBranches implements the GitClient interface.
func (c *LocalGitClient) ListBranches(ctx context.Context, repoPath string) ([]BranchRef, error) {
	out, err := c.Run(ctx, repoPath, "for-each-ref", "--format=%(refname)|%(symref)", "refs/heads", "refs/remotes")
	if err != nil {
		return nil, err
	}
	return parseBranchList(out), nil
}

// GetBranchRefs implements the GitClient interface.
func (c *LocalGitClient) GetBranchRefs(ctx context.Context, repoPath string) ([]byte, error) {
	return c.Run(ctx, repoPath, "for-each-ref", "--format="+BranchRefFormat, "refs/heads", "refs/remotes")
}

// ListMergedBranches implements the GitClient interface.
func (c *LocalGitClient) ListMergedBranches(ctx context.Context, repoPath string, target string) ([]string, error) {
	out, err := c.Run(ctx, repoPath, "branch", "-a", "--merged", target, "--format=%(refname)")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, line := range splitLines(out) {
		if name, _, ok := ShortRefName(line); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// CountCommits implements the GitClient interface.
func (c *LocalGitClient) CountCommits(ctx context.Context, repoPath string, revRange string) (int, error) {
	out, err := c.runTrimmed(ctx, repoPath, "rev-list", "--count", revRange, "--")
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(out)
	if err != nil {
		return 0, fmt.Errorf("parsing commit count %q: %w", out, err)
	}
	return n, nil
}

// ListCommits implements the GitClient interface.
func (c *LocalGitClient) ListCommits(ctx context.Context, repoPath string, revRange string) ([]string, error) {
	out, err := c.Run(ctx, repoPath, "rev-list", revRange, "--")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// GetAuthors implements the GitClient interface.
func (c *LocalGitClient) GetAuthors(ctx context.Context, repoPath string, ref string, noMerges bool, limit int) ([]string, error) {
	args := []string{"log", "--format=%an"}
	if noMerges {
		args = append(args, "--no-merges")
	}
	if limit > 0 {
		args = append(args, fmt.Sprintf("-n%d", limit))
	}
	args = append(args, ref, "--")
	out, err := c.Run(ctx, repoPath, args...)
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// GetCommitDates implements the GitClient interface.
func (c *LocalGitClient) GetCommitDates(ctx context.Context, repoPath string, ref string, since time.Time, limit int) ([]time.Time, error) {
	args := []string{"log", "--format=%cI"}
	if !since.IsZero() {
		args = append(args, "--since="+since.Format(DateTimeFormat))
	}
	if limit > 0 {
		args = append(args, fmt.Sprintf("-n%d", limit))
	}
	args = append(args, ref, "--")
	out, err := c.Run(ctx, repoPath, args...)
	if err != nil {
		return nil, err
	}
	lines := splitLines(out)
	dates := make([]time.Time, 0, len(lines))
	for _, line := range lines {
		t, err := time.Parse(time.RFC3339, line)
		if err != nil {
			return nil, fmt.Errorf("parsing commit date %q: %w", line, err)
		}
		dates = append(dates, t)
	}
	return dates, nil
}

// GetCommitStat implements the GitClient interface.
func (c *LocalGitClient) GetCommitStat(ctx context.Context, repoPath string, rev string) (schema.DiffStat, error) {
	out, err := c.Run(ctx, repoPath, "show", "--numstat", "--format=", rev, "--")
	if err != nil {
		return schema.DiffStat{}, err
	}
	return parseNumstat(out), nil
}

// GetDiffStat implements the GitClient interface.
// Uses Git's "..." (three-dot) range syntax, which diffs head against its
// merge base with base. Files changed on both sides are the conflict candidates.
func (c *LocalGitClient) GetDiffStat(ctx context.Context, repoPath string, base, head string) (schema.DiffStat, error) {
	out, err := c.Run(ctx, repoPath, "diff", "--numstat", base+"..."+head, "--")
	if err != nil {
		return schema.DiffStat{}, err
	}
	return parseNumstat(out), nil
}

// ShortRefName maps a full branch ref onto its short name and kind.
// Symbolic remote HEAD refs and refs outside the branch namespaces are rejected.
func ShortRefName(ref string) (string, schema.BranchKind, bool) {
	ref = strings.TrimSpace(ref)
	switch {
	case strings.HasPrefix(ref, LocalRefPrefix):
		name := strings.TrimPrefix(ref, LocalRefPrefix)
		return name, schema.LocalBranch, name != ""
	case strings.HasPrefix(ref, RemoteRefPrefix):
		name := strings.TrimPrefix(ref, RemoteRefPrefix)
		if name == "" || name == "HEAD" || strings.HasSuffix(name, "/HEAD") {
			return "", "", false
		}
		return name, schema.RemoteBranch, true
	default:
		return "", "", false
	}
}

// parseBranchList parses "refname|symref" lines, dropping symbolic refs.
func parseBranchList(out []byte) []BranchRef {
	var refs []BranchRef
	for _, line := range splitLines(out) {
		refname, symref, _ := strings.Cut(line, "|")
		if symref != "" {
			continue
		}
		if name, kind, ok := ShortRefName(refname); ok {
			refs = append(refs, BranchRef{Name: name, Kind: kind})
		}
	}
	return refs
}

// parseNumstat sums "added<TAB>deleted<TAB>path" lines.
// Binary files report "-" for both counts and add a file with zero lines.
func parseNumstat(out []byte) schema.DiffStat {
	var stat schema.DiffStat
	for _, line := range splitLines(out) {
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) < 3 {
			continue
		}
		stat.FilesChanged++
		if added, err := strconv.Atoi(parts[0]); err == nil {
			stat.Additions += added
		}
		if deleted, err := strconv.Atoi(parts[1]); err == nil {
			stat.Deletions += deleted
		}
	}
	return stat
}

// splitLines returns the non-empty trimmed lines of a command output.
func splitLines(out []byte) []string {
	var lines []string
	for line := range bytes.Lines(out) {
		if s := strings.TrimSpace(string(line)); s != "" {
			lines = append(lines, s)
		}
	}
	return lines
}
