package schema

// EnrichedBranchAnalysis adds presentation data to a BranchAnalysis.
type EnrichedBranchAnalysis struct {
	Rank  int    `json:"rank"`
	Label string `json:"label"`
	BranchAnalysis
}

// GetPlainLabel returns a plain text label summarizing the state of a branch.
// The first matching state wins: default, conflicted, merged, stale, active.
func GetPlainLabel(b BranchAnalysis) string {
	switch {
	case b.IsDefault:
		return "Default"
	case b.Conflicted():
		return "Conflicted"
	case b.Merged:
		return "Merged"
	case b.Stale:
		return "Stale"
	default:
		return "Active"
	}
}

// EnrichBranches adds rank and label to a list of branch analyses.
func EnrichBranches(branches []BranchAnalysis) []EnrichedBranchAnalysis {
	output := make([]EnrichedBranchAnalysis, len(branches))
	for i, b := range branches {
		output[i] = EnrichedBranchAnalysis{
			Rank:           i + 1,
			Label:          GetPlainLabel(b),
			BranchAnalysis: b,
		}
	}
	return output
}
