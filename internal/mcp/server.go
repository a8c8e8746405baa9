// Package mcp exposes stored sessions and aggregates to LLM clients over the
// Model Context Protocol.
package mcp

import (
	"log/slog"

	"github.com/claude/rangelog/internal/storage"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(store storage.Store, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("rangelog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("rangelog golf launch monitor data server. Query practice sessions, per-shot metrics, per-club progression over time, and global stat bounds."),
	)

	h := &handlers{store: store, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolListSessions, Handler: h.listSessions},
		server.ServerTool{Tool: toolGetSessionShots, Handler: h.getSessionShots},
		server.ServerTool{Tool: toolGetProgression, Handler: h.getProgression},
		server.ServerTool{Tool: toolGetGlobalStats, Handler: h.getGlobalStats},
		server.ServerTool{Tool: toolListMetrics, Handler: h.listMetrics},
	)

	s.AddResources(
		server.ServerResource{Resource: resSessionCatalog, Handler: h.sessionCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	store storage.Store
	log   *slog.Logger
}

var resSessionCatalog = mcp.NewResource(
	"rangelog://session_catalog",
	"Session Catalog",
	mcp.WithResourceDescription("All stored practice sessions with dates, shot counts, club lists and per-session metric bounds"),
	mcp.WithMIMEType("application/json"),
)
