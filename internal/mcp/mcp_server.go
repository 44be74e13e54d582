// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"
	"os"

	"github.com/huangsam/branchspot/internal/contract"
	"github.com/huangsam/branchspot/internal/observability"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// depthValues are the accepted values of the depth argument.
var depthValues = []string{"fast", "normal", "deep"}

// Option customizes the MCP server.
type Option func(*toolHandler)

// WithPipelineMetrics records every tool-triggered analysis on pm.
func WithPipelineMetrics(pm *observability.PipelineMetrics) Option {
	return func(h *toolHandler) {
		h.metrics = pm
	}
}

// NewMCPServer initializes and configures the branchspot MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, client contract.GitClient, mgr contract.CacheManager, opts ...Option) *server.MCPServer {
	s := server.NewMCPServer(
		"Branchspot Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		client:  client,
		mgr:     mgr,
	}
	for _, opt := range opts {
		opt(h)
	}

	// --- 1. Tool: analyze_branches ---
	s.AddTool(mcp.NewTool("analyze_branches",
		mcp.WithDescription("Analyze every branch of a Git repository: divergence, staleness, contributors, mergeability and activity."),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository (defaults to current directory if not specified).")),
		mcp.WithString("depth", mcp.Description("Analysis depth (fast, normal, deep). Defaults to 'normal'."), mcp.Enum(depthValues...)),
		mcp.WithNumber("max_branches", mcp.Description("Analyze at most this many branches, most recently active first (0 = all).")),
		mcp.WithNumber("stale_days", mcp.Description("Days of inactivity after which a branch is stale.")),
	), h.handleAnalyzeBranches)

	// --- 2. Tool: get_branch ---
	s.AddTool(mcp.NewTool("get_branch",
		mcp.WithDescription("Analyze a single branch by name (e.g., 'feature/x' or 'origin/main')."),
		mcp.WithString("branch", mcp.Description("The branch name as listed by analyze_branches."), mcp.Required()),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository.")),
		mcp.WithString("depth", mcp.Description("Analysis depth (fast, normal, deep)."), mcp.Enum(depthValues...)),
	), h.handleGetBranch)

	// --- 3. Tool: get_activity ---
	s.AddTool(mcp.NewTool("get_activity",
		mcp.WithDescription("Summarize recent commit activity: daily commit series, top contributors and branch categories."),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository.")),
		mcp.WithNumber("top", mcp.Description("Number of contributors to return.")),
	), h.handleGetActivity)

	return s
}

// StartMCPServer serves the branchspot MCP server on stdio until ctx is done or stdin closes.
func StartMCPServer(ctx context.Context, baseCfg *contract.Config, client contract.GitClient, mgr contract.CacheManager, opts ...Option) error {
	s := NewMCPServer(baseCfg, client, mgr, opts...)
	return server.NewStdioServer(s).Listen(ctx, os.Stdin, os.Stdout)
}
