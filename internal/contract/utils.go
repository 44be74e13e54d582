package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/branchspot/schema"
)

// Branch label constants.
const (
	DefaultValue    = "Default"    // Default value
	ConflictedValue = "Conflicted" // Conflicted value
	MergedValue     = "Merged"     // Merged value
	StaleValue      = "Stale"      // Stale value
	ActiveValue     = "Active"     // Active value
)

// Color variables for console output.
var (
	DefaultColor    = color.New(color.FgCyan, color.Bold)    // DefaultColor marks the resolved default branch.
	ConflictedColor = color.New(color.FgRed, color.Bold)     // ConflictedColor represents standard danger.
	MergedColor     = color.New(color.FgMagenta)             // MergedColor marks cleanup candidates.
	StaleColor      = color.New(color.FgYellow)              // StaleColor represents standard caution.
	ActiveColor     = color.New(color.FgGreen)               // ActiveColor represents healthy work in progress.
	DegradedColor   = color.New(color.FgHiBlack, color.Bold) // DegradedColor marks partial results.
)

// GetColorLabel returns a colored text label for console output (table).
// It uses schema.GetPlainLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(b schema.BranchAnalysis) string {
	text := schema.GetPlainLabel(b)

	switch text {
	case DefaultValue:
		return DefaultColor.Sprint(text)
	case ConflictedValue:
		return ConflictedColor.Sprint(text)
	case MergedValue:
		return MergedColor.Sprint(text)
	case StaleValue:
		return StaleColor.Sprint(text)
	default: // "Active"
		return ActiveColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the branch result cache.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".branchspot_cache.db"
	}
	return filepath.Join(homeDir, ".branchspot_cache.db")
}

// GetAnalysisDBFilePath returns the path to the SQLite DB file for analysis history.
func GetAnalysisDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".branchspot_analysis.db"
	}
	return filepath.Join(homeDir, ".branchspot_analysis.db")
}

// TruncateName truncates a branch name to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the ellipsis and at least one character.
func TruncateName(name string, maxWidth int) string {
	runes := []rune(name)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return name
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// ParseList splits a comma separated list, dropping blanks.
func ParseList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
