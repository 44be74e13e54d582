package schema

import (
	"errors"
	"fmt"
	"runtime"
)

// MaxDefaultConcurrency caps the default number of in-flight branch analyses.
const MaxDefaultConcurrency = 8

// ErrInvalidOptions is returned when AnalysisOptions fail validation.
var ErrInvalidOptions = errors.New("invalid analysis options")

// DefaultCandidates is the ordered list of names tried when resolving the default branch.
var DefaultCandidates = []string{"main", "master"}

// AnalysisOptions controls a single analysis run.
type AnalysisOptions struct {
	MaxConcurrency     int           // In-flight branch analyses, at least 1
	Depth              AnalysisDepth // Tier of per-branch analysis
	MaxBranches        int           // Branch cap, 0 means unlimited
	StaleDaysThreshold int           // Skip branches older than this many days, 0 means unlimited
	CacheEnabled       bool          // Reuse cached per-branch results when a store is configured
	DefaultCandidates  []string      // Ordered default-branch candidates
}

// DefaultConcurrency returns min(available cores, MaxDefaultConcurrency).
func DefaultConcurrency() int {
	return min(runtime.NumCPU(), MaxDefaultConcurrency)
}

// DefaultAnalysisOptions returns options with every default applied.
func DefaultAnalysisOptions() AnalysisOptions {
	candidates := make([]string, len(DefaultCandidates))
	copy(candidates, DefaultCandidates)
	return AnalysisOptions{
		MaxConcurrency:    DefaultConcurrency(),
		Depth:             NormalDepth,
		DefaultCandidates: candidates,
	}
}

// WithDefaults fills zero-valued fields with their defaults.
func (o AnalysisOptions) WithDefaults() AnalysisOptions {
	if o.MaxConcurrency == 0 {
		o.MaxConcurrency = DefaultConcurrency()
	}
	if o.Depth == "" {
		o.Depth = NormalDepth
	}
	if len(o.DefaultCandidates) == 0 {
		o.DefaultCandidates = DefaultAnalysisOptions().DefaultCandidates
	}
	return o
}

// Validate checks the options once, before a run starts.
func (o AnalysisOptions) Validate() error {
	if o.MaxConcurrency < 1 {
		return fmt.Errorf("%w: max concurrency must be at least 1 (received %d)", ErrInvalidOptions, o.MaxConcurrency)
	}
	if _, ok := ValidAnalysisDepths[o.Depth]; !ok {
		return fmt.Errorf("%w: depth %q must be fast, normal or deep", ErrInvalidOptions, o.Depth)
	}
	if o.MaxBranches < 0 {
		return fmt.Errorf("%w: max branches cannot be negative (received %d)", ErrInvalidOptions, o.MaxBranches)
	}
	if o.StaleDaysThreshold < 0 {
		return fmt.Errorf("%w: stale days threshold cannot be negative (received %d)", ErrInvalidOptions, o.StaleDaysThreshold)
	}
	return nil
}
