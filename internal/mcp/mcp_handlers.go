package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/huangsam/branchspot/core"
	"github.com/huangsam/branchspot/internal/contract"
	"github.com/huangsam/branchspot/internal/observability"
	"github.com/huangsam/branchspot/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	client  contract.GitClient
	mgr     contract.CacheManager
	metrics *observability.PipelineMetrics
}

// configFor clones the base config and applies the shared repo_path and depth arguments.
func (h *toolHandler) configFor(ctx context.Context, request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if d := request.GetString("depth", ""); d != "" {
		depth := schema.AnalysisDepth(strings.ToLower(d))
		if _, ok := schema.ValidAnalysisDepths[depth]; !ok {
			return nil, fmt.Errorf("invalid depth '%s'. must be fast, normal, deep", d)
		}
		cfg.Depth = depth
	}
	if p := request.GetString("repo_path", ""); p != "" {
		root, err := h.client.GetRepoRoot(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("%q is not inside a git repository: %w", p, err)
		}
		cfg.RepoPath = root
	}
	return cfg, nil
}

func (h *toolHandler) analyze(ctx context.Context, cfg *contract.Config) (*schema.AnalysisResult, error) {
	if h.metrics != nil {
		ctx = observability.WithMetrics(ctx, h.metrics)
	}
	return core.GetBranchAnalysisResults(core.WithSuppressHeader(ctx), cfg, h.client, h.mgr, nil)
}

func (h *toolHandler) handleAnalyzeBranches(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if n := request.GetInt("max_branches", -1); n >= 0 {
		cfg.MaxBranches = n
	}
	if n := request.GetInt("stale_days", 0); n > 0 {
		cfg.StaleDays = n
	}

	result, err := h.analyze(ctx, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetBranch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.GetString("branch", "")
	if name == "" {
		return mcp.NewToolResultError("invalid parameters: branch is required"), nil
	}
	cfg, err := h.configFor(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	// The branch may sit outside the most active subset
	cfg.MaxBranches = 0

	result, err := h.analyze(ctx, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	for _, b := range schema.EnrichBranches(result.Branches) {
		if b.Name == name {
			jsonData, _ := json.MarshalIndent(b, "", "  ")
			return mcp.NewToolResultText(string(jsonData)), nil
		}
	}
	return mcp.NewToolResultError(fmt.Sprintf("branch %q not found", name)), nil
}

func (h *toolHandler) handleGetActivity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if top := request.GetInt("top", 0); top > 0 {
		if top > contract.MaxTopContributors {
			return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: top cannot exceed %d", contract.MaxTopContributors)), nil
		}
		cfg.TopContributors = top
	}

	result, err := h.analyze(ctx, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("activity analysis failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result.Activity, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
