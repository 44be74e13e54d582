package agg

import (
	"strings"
	"time"

	"github.com/huangsam/branchspot/internal/contract"
	"github.com/huangsam/branchspot/schema"
)

// refFields is the per-branch metadata carried by one GetBranchRefs line.
type refFields struct {
	Kind       schema.BranchKind
	Tip        string
	LastCommit *time.Time
	Author     string
}

// parseBranchRefs parses "refname|objectname|committerdate|authorname" lines
// keyed by short branch name. Malformed lines and symbolic refs are skipped.
// Fields that fail to parse stay empty rather than dropping the branch.
func parseBranchRefs(out []byte) map[string]refFields {
	refs := make(map[string]refFields)
	for line := range strings.Lines(string(out)) {
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 4)
		name, kind, ok := contract.ShortRefName(parts[0])
		if !ok {
			continue
		}
		fields := refFields{Kind: kind}
		if len(parts) > 1 {
			fields.Tip = strings.TrimSpace(parts[1])
		}
		if len(parts) > 2 {
			fields.LastCommit = parseCommitDate(parts[2])
		}
		if len(parts) > 3 {
			fields.Author = strings.TrimSpace(parts[3])
		}
		refs[name] = fields
	}
	return refs
}

// parseCommitDate parses an iso-strict commit date, returning nil when absent or malformed.
func parseCommitDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}
