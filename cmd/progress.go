package cmd

import (
	"io"
	"os"

	"github.com/huangsam/branchspot/core"
	"github.com/huangsam/branchspot/internal/contract"
	"github.com/huangsam/branchspot/schema"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	progress "gopkg.in/cheggaaa/pb.v1"
)

// clearLine erases the current terminal line and returns the cursor.
const clearLine = "\033[2K\r"

// newProgressObserver renders scheduler progress as a bar on w.
// The bar is created on the first report, once the total is known.
func newProgressObserver(w io.Writer) schema.ProgressFunc {
	var bar *progress.ProgressBar
	return func(completed, total int, message string) {
		if bar == nil {
			bar = progress.New(total)
			bar.Callback = func(msg string) {
				_, _ = io.WriteString(w, clearLine+msg)
			}
			bar.NotPrint = true
			bar.ShowPercent = false
			bar.ShowSpeed = false
			bar.SetMaxWidth(80).Start()
		}
		bar.Set(completed).Postfix(" [" + contract.TruncateName(message, 30) + "] ")
		if completed >= total {
			bar.Finish()
			_, _ = io.WriteString(w, clearLine)
		}
	}
}

// progressEnabled shows the bar only for text output on an interactive stderr.
func progressEnabled(cfg *contract.Config) bool {
	return cfg.Output == schema.TextOut && term.IsTerminal(int(os.Stderr.Fd()))
}

// runAnalysis adapts an executor to a cobra Run function.
func runAnalysis(name string, execute core.ExecutorFunc) func(*cobra.Command, []string) {
	return func(_ *cobra.Command, _ []string) {
		ctx := rootCtx
		if progressEnabled(cfg) {
			ctx = core.WithProgress(ctx, newProgressObserver(os.Stderr))
		}
		if err := execute(ctx, cfg, gitClient, cacheManager); err != nil {
			contract.LogFatal("Cannot run "+name+" analysis", err)
		}
	}
}
