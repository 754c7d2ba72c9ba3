package cmd

import (
	"github.com/huangsam/witdiff/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:     "mcp",
	Short:   "Start the witdiff MCP server",
	Long:    `Launch an MCP server over stdio that exposes configuration comparison and normalization as tools.`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager, version)
	},
}
