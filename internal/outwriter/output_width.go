package outwriter

import (
	"os"

	"github.com/huangsam/branchspot/internal/contract"
	"golang.org/x/term"
)

const (
	fallbackTermWidth = 80 // Conservative default for narrow terminals and CI
	minNameWidth      = 15
	maxNameWidth      = 60
)

// getMaxTableNameWidth calculates the maximum width for branch names in table output
// based on terminal width and table configuration.
func getMaxTableNameWidth(cfg *contract.Config) int {
	termWidth := cfg.Width
	if termWidth <= 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = fallbackTermWidth
		} else {
			termWidth = detectedWidth
		}
	}

	// Rank + Label + Ahead + Behind + Last Activity with borders/padding
	baseWidth := 55
	if cfg.Detail {
		baseWidth += 45 // Commits + Contributors + Size + Author
	}

	available := termWidth - baseWidth
	return max(minNameWidth, min(available, maxNameWidth))
}
