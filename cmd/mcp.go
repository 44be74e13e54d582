package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/huangsam/branchspot/internal/contract"
	"github.com/huangsam/branchspot/internal/mcp"
	"github.com/huangsam/branchspot/internal/observability"
	"github.com/spf13/cobra"
)

// metricsShutdownTimeout bounds how long the metrics server gets to drain.
const metricsShutdownTimeout = 5 * time.Second

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [repo-path]",
	Short: "Start the branchspot MCP server",
	Long: `Launch an MCP server on stdio that allows AI agents to analyze branches via standard tools.

Tools:
  analyze_branches - full analysis result as JSON
  get_branch       - analysis of a single branch
  get_activity     - daily commits, top contributors and branch categories

Use --metrics-addr to expose Prometheus metrics while the server runs.

Examples:
  # Serve the current repository
  branchspot mcp

  # Serve with metrics on port 9090
  branchspot mcp --metrics-addr :9090`,
	Args: cobra.MaximumNArgs(1),
	// Headers are never printed in MCP mode, so stdio stays clean for the protocol.
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		var opts []mcp.Option
		if cfg.MetricsAddr != "" {
			exp, err := observability.NewPrometheusExporter()
			if err != nil {
				return err
			}
			srv, err := observability.StartMetricsServer(ctx, cfg.MetricsAddr, exp)
			if err != nil {
				return fmt.Errorf("failed to start metrics server: %w", err)
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
				defer cancel()
				if err := srv.Close(shutdownCtx); err != nil {
					contract.LogWarn("Failed to stop metrics server", err)
				}
			}()
			contract.Logger.WithField("addr", srv.Addr()).Info("serving metrics")
			opts = append(opts, mcp.WithPipelineMetrics(exp.Metrics))
		}

		return mcp.StartMCPServer(ctx, cfg, gitClient, cacheManager, opts...)
	},
}
