package commands

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"minecraft-codegen/internal/logger"
	"minecraft-codegen/internal/mcptools"
)

func newMCPCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the generator as an MCP server on stdin/stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.app.Config
			tools := mcptools.NewTools(opts.app.Generator, cfg.HistoryDisplayLimit, cfg.CredentialVar())
			server := mcptools.NewServer(tools)

			logger.WithComponent("mcp").Info("🔗 Starting MCP server on stdin/stdout...")
			return server.Run(cmd.Context(), mcp.NewStdioTransport())
		},
	}
}
