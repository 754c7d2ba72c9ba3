package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/witdiff/core"
	"github.com/huangsam/witdiff/internal/contract"
	"github.com/huangsam/witdiff/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

func (h *toolHandler) handleCompareConfigurations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.SourcePaths = schema.SplitList(request.GetString("source_paths", ""))
	cfg.TargetPaths = schema.SplitList(request.GetString("target_paths", ""))
	cfg.SourceName = request.GetString("source_name", "")
	cfg.TargetName = request.GetString("target_name", "")

	if err := contract.RevalidateCompare(cfg); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid comparison parameters: %v", err)), nil
	}
	if err := contract.RevalidateTfsVersion(cfg, request.GetString("tfs_version", "")); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid comparison parameters: %v", err)), nil
	}

	result, _, err := core.GetCompareResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("comparison failed: %v", err)), nil
	}
	if !request.GetBool("detail", false) {
		result = result.WithoutXML()
	}

	return jsonResult(result)
}

func (h *toolHandler) handleCompareTeamProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := contract.RevalidateInputPath(cfg, request.GetString("manifest", "")); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid manifest: %v", err)), nil
	}
	if err := contract.RevalidateTfsVersion(cfg, request.GetString("tfs_version", "")); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid manifest: %v", err)), nil
	}

	results, _, err := core.GetProjectResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("batch comparison failed: %v", err)), nil
	}
	if !request.GetBool("detail", false) {
		return jsonResult(schema.FlattenProjects(results))
	}

	// BestMatch points into Results, so stripping in place covers it too
	for i := range results {
		for j := range results[i].Results {
			results[i].Results[j] = results[i].Results[j].WithoutXML()
		}
	}
	return jsonResult(results)
}

func (h *toolHandler) handleNormalizeItem(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.ShowParts = request.GetBool("parts", false)
	if err := contract.RevalidateInputPath(cfg, request.GetString("path", "")); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid path: %v", err)), nil
	}
	if err := contract.RevalidateTfsVersion(cfg, request.GetString("tfs_version", "")); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid path: %v", err)), nil
	}

	item, err := core.GetNormalizedItem(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("normalization failed: %v", err)), nil
	}
	if !cfg.ShowParts {
		return mcp.NewToolResultText(item.XML), nil
	}
	return jsonResult(item)
}

// jsonResult renders v as indented JSON text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
