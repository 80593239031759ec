// Package main provides the entry point for the ctxsync CLI.
package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/BrianInAz/context-standards/internal/config"
	ctxmcp "github.com/BrianInAz/context-standards/internal/mcp"
	"github.com/BrianInAz/context-standards/internal/syncer"
)

// newServeCmd creates the serve command for running as an MCP server.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run as MCP server (stdio transport)",
		Long: `Run ctxsync as a Model Context Protocol (MCP) server over stdio.

This exposes context-document operations as MCP tools, so an MCP-capable
agent can inspect and repair its own instruction files.

Configure in your agent's MCP settings:
  {
    "mcpServers": {
      "ctxsync": {
        "command": "ctxsync",
        "args": ["serve"]
      }
    }
  }

Available tools: context_status, context_sync`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadDefault()
			if err != nil {
				return err
			}
			source := syncer.NewHTTPSource(cfg.Remote.Project, cfg.Remote.Global)
			server := ctxmcp.NewServer(buildVersion(), cfg, source)
			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
