package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ladlekit/ladle/internal/history"
	"github.com/ladlekit/ladle/internal/pipeline"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"recipe_ingest": {
		def:     ingestToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleIngest },
	},
	"recipe_history": {
		def:     historyToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleHistory },
	},
}

// NewServer creates a new MCP server with ladle tools registered.
func NewServer(p *pipeline.Pipeline, store *history.Store, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"ladle",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(p, store)

	for _, entry := range toolRegistry {
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(p *pipeline.Pipeline, store *history.Store, version string) error {
	s := NewServer(p, store, version)
	return server.ServeStdio(s)
}
