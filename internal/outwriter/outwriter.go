// Package outwriter has output and writer logic.
package outwriter

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/branchspot/internal/contract"
)

// errParquetUnsupported is returned for views that have no tabular row form.
var errParquetUnsupported = errors.New("parquet output is only supported for branch results")

// LogAnalysisHeader prints a concise, 2-line header for each analysis run.
// It goes to stderr so that piped JSON or CSV stays clean.
func LogAnalysisHeader(cfg *contract.Config) {
	writeAnalysisHeader(os.Stderr, cfg)
}

func writeAnalysisHeader(w io.Writer, cfg *contract.Config) {
	repoName := filepath.Base(cfg.RepoPath)
	if repoName == "" || repoName == "." {
		repoName = "current"
	}

	if cfg.UseEmojis {
		_, _ = fmt.Fprintf(w, "🔎 Repo: %s (Depth: %s)\n", repoName, cfg.Depth)
		_, _ = fmt.Fprintf(w, "🌿 Branches: %s\n", describeSelection(cfg))
		return
	}
	_, _ = fmt.Fprintf(w, "Repo: %s (Depth: %s)\n", repoName, cfg.Depth)
	_, _ = fmt.Fprintf(w, "Branches: %s\n", describeSelection(cfg))
}

// describeSelection renders the selection limits of a run.
func describeSelection(cfg *contract.Config) string {
	var parts []string
	if cfg.MaxBranches > 0 {
		parts = append(parts, fmt.Sprintf("up to %d", cfg.MaxBranches))
	} else {
		parts = append(parts, "all")
	}
	if cfg.StaleDays > 0 {
		parts = append(parts, fmt.Sprintf("active within %d days", cfg.StaleDays))
	}
	parts = append(parts, fmt.Sprintf("%d workers", cfg.Workers))
	return strings.Join(parts, ", ")
}
