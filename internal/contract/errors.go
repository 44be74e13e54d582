package contract

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCommandFailed matches every error returned by a failed git invocation.
var ErrCommandFailed = errors.New("git command failed")

// ErrAnalysisFailed matches every fatal pipeline error.
var ErrAnalysisFailed = errors.New("analysis failed")

// Pipeline phases that can fail fatally.
const (
	PhaseCollect = "collect"
	PhaseFilter  = "filter"
)

// CommandError describes a failed git invocation.
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	cmd := "git " + strings.Join(e.Args, " ")
	if e.Stderr != "" {
		return fmt.Sprintf("%s: %s", cmd, e.Stderr)
	}
	return fmt.Sprintf("%s: %v", cmd, e.Err)
}

// Unwrap returns the underlying process error.
func (e *CommandError) Unwrap() error { return e.Err }

// Is reports ErrCommandFailed as a match.
func (e *CommandError) Is(target error) bool { return target == ErrCommandFailed }

// AnalysisError is a fatal pipeline error tagged with the phase that failed.
type AnalysisError struct {
	Phase string
	Err   error
}

// NewAnalysisError wraps err as a failure of the given phase.
func NewAnalysisError(phase string, err error) *AnalysisError {
	return &AnalysisError{Phase: phase, Err: err}
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis failed during %s: %v", e.Phase, e.Err)
}

// Unwrap returns the cause.
func (e *AnalysisError) Unwrap() error { return e.Err }

// Is reports ErrAnalysisFailed as a match.
func (e *AnalysisError) Is(target error) bool { return target == ErrAnalysisFailed }
