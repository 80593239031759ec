// Package mcp provides a Model Context Protocol server for ctxsync.
// It exposes context-document operations as MCP tools so an MCP-capable
// agent can inspect and repair its own instruction files.
package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/BrianInAz/context-standards/internal/config"
	"github.com/BrianInAz/context-standards/internal/syncer"
)

// NewServer creates an MCP server with all ctxsync tools registered.
func NewServer(version string, cfg config.Config, source syncer.TemplateSource) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "ctxsync",
		Version: version,
	}, nil)
	registerTools(server, cfg, source)
	return server
}

// boolPtr returns a pointer to a bool value.
func boolPtr(b bool) *bool {
	return &b
}

// readOnlyAnnotations returns annotations for read-only tools.
func readOnlyAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		ReadOnlyHint:   true,
		IdempotentHint: true,
		OpenWorldHint:  boolPtr(false),
	}
}

// syncAnnotations returns annotations for the sync tool. It rewrites files
// but converges to the same state on repeat runs.
func syncAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		DestructiveHint: boolPtr(false),
		IdempotentHint:  true,
		OpenWorldHint:   boolPtr(true), // fetches the remote template
	}
}

// registerTools adds all ctxsync tools to the server.
func registerTools(server *mcp.Server, cfg config.Config, source syncer.TemplateSource) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "context_status",
		Description: "Inspect the context-document installation under a root: canonical document presence and hash, backup, and per-alias validity. Read-only.",
		Annotations: readOnlyAnnotations(),
	}, handleStatus(cfg))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "context_sync",
		Description: "Synchronize the context document under a root against the remote template and recreate assistant aliases. Diverged local documents are backed up before replacement.",
		Annotations: syncAnnotations(),
	}, handleSync(cfg, source))
}
