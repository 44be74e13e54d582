package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and history.
	DatabaseBackend string

	// BranchKind tells local branches apart from remote-tracking ones.
	BranchKind string

	// AnalysisDepth selects how much work the analyzer does per branch.
	AnalysisDepth string

	// BranchCategory is a coarse bucket used in the activity overview.
	BranchCategory string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All branch kinds supported.
const (
	LocalBranch  BranchKind = "local"
	RemoteBranch BranchKind = "remote"
)

// All analysis depths, cheapest first.
const (
	FastDepth   AnalysisDepth = "fast"
	NormalDepth AnalysisDepth = "normal" // default
	DeepDepth   AnalysisDepth = "deep"
)

// All branch categories reported by the activity overview.
const (
	ActiveCategory     BranchCategory = "active"
	StaleCategory      BranchCategory = "stale"
	MergeableCategory  BranchCategory = "mergeable"
	ConflictedCategory BranchCategory = "conflicted"
)

// AllAnalysisDepths returns the depths ordered by cost.
var AllAnalysisDepths = []AnalysisDepth{FastDepth, NormalDepth, DeepDepth}

// AllBranchCategories returns the categories in display order.
var AllBranchCategories = []BranchCategory{ActiveCategory, StaleCategory, MergeableCategory, ConflictedCategory}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidBranchKinds lists all valid branch kinds.
var ValidBranchKinds = map[BranchKind]struct{}{
	LocalBranch:  {},
	RemoteBranch: {},
}

// ValidAnalysisDepths lists all valid analysis depths.
var ValidAnalysisDepths = map[AnalysisDepth]struct{}{
	FastDepth:   {},
	NormalDepth: {},
	DeepDepth:   {},
}

// Rank orders depths by cost: fast=0, normal=1, deep=2. Unknown depths rank -1.
func (d AnalysisDepth) Rank() int {
	for i, depth := range AllAnalysisDepths {
		if depth == d {
			return i
		}
	}
	return -1
}

// AtLeast reports whether d covers everything computed by other.
func (d AnalysisDepth) AtLeast(other AnalysisDepth) bool {
	return d.Rank() >= other.Rank()
}
