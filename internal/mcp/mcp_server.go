// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/witdiff/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the witdiff MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"witdiff Configuration Comparison Server",
		version,
		server.WithToolCapabilities(false),
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: compare_configurations ---
	s.AddTool(mcp.NewTool("compare_configurations",
		mcp.WithDescription("Compare a source work item configuration (process template) against a target (team project export) and report per-item match percentages."),
		mcp.WithString("source_paths", mcp.Description("Comma-separated XML files or directories of the source configuration."), mcp.Required()),
		mcp.WithString("target_paths", mcp.Description("Comma-separated XML files or directories of the target configuration."), mcp.Required()),
		mcp.WithString("source_name", mcp.Description("Display name of the source configuration.")),
		mcp.WithString("target_name", mcp.Description("Display name of the target configuration.")),
		mcp.WithString("tfs_version", mcp.Description("TFS release of the exports (e.g. '2013'). Defaults to the newest known release.")),
		mcp.WithBoolean("detail", mcp.Description("Include the normalized XML of every item.")),
	), h.handleCompareConfigurations)

	// --- 2. Tool: compare_team_projects ---
	s.AddTool(mcp.NewTool("compare_team_projects",
		mcp.WithDescription("Compare every team project of a YAML manifest against every source and report the best matching source per project."),
		mcp.WithString("manifest", mcp.Description("Path to the YAML manifest listing sources and team projects."), mcp.Required()),
		mcp.WithString("tfs_version", mcp.Description("TFS release of the exports. Overrides the manifest's tfs_version.")),
		mcp.WithBoolean("detail", mcp.Description("Return every source comparison instead of one row per project.")),
	), h.handleCompareTeamProjects)

	// --- 3. Tool: normalize_item ---
	s.AddTool(mcp.NewTool("normalize_item",
		mcp.WithDescription("Normalize a single work item type, categories or process configuration XML file into its canonical form."),
		mcp.WithString("path", mcp.Description("Path to the XML file."), mcp.Required()),
		mcp.WithString("tfs_version", mcp.Description("TFS release the file was exported from.")),
		mcp.WithBoolean("parts", mcp.Description("Return JSON with the decomposed parts instead of plain XML.")),
	), h.handleNormalizeItem)

	return s
}

// StartMCPServer starts the witdiff MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager, version string) error {
	s := NewMCPServer(baseCfg, mgr, version)
	return server.ServeStdio(s)
}
