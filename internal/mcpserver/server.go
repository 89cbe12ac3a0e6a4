// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes gameplan's tracked items and agenda to LLM tooling over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gameplanhq/gameplan/internal/agenda"
	"github.com/gameplanhq/gameplan/internal/history"
	"github.com/gameplanhq/gameplan/internal/storage"
)

// Server wraps the MCP server with gameplan tools.
type Server struct {
	mcp   *server.MCPServer
	store storage.Provider
	db    *history.DB
}

// New creates an MCP server with all gameplan tools registered.
func New(store storage.Provider, db *history.DB) *Server {
	s := &Server{store: store, db: db}

	s.mcp = server.NewMCPServer(
		"Gameplan",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_items",
		mcp.WithDescription("List all tracked work items with their adapter, status, and document path."),
	), s.listItems)

	s.mcp.AddTool(mcp.NewTool("read_item",
		mcp.WithDescription("Read the full README document for a tracked item. "+
			"Manual sections (Overview, Notes) belong to the user; see the "+
			"gameplan://readme-format resource before editing."),
		mcp.WithString("adapter", mcp.Required(), mcp.Description("Adapter name (e.g. jira, misc)")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Item id (e.g. PROJ-123)")),
	), s.readItem)

	s.mcp.AddTool(mcp.NewTool("view_agenda",
		mcp.WithDescription("Read the current AGENDA.md document."),
	), s.viewAgenda)

	s.mcp.AddResource(
		mcp.NewResource("gameplan://readme-format", "Tracked Item Document Format",
			mcp.WithResourceDescription("Structure of the per-item README documents gameplan maintains."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) listItems(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.db.ListItems()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	adapterName, err := req.RequireString("adapter")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	row, err := s.db.GetItem(adapterName, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if row == nil || row.Path == "" {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s/%s", adapterName, id)), nil
	}
	data, err := s.store.Read(row.Path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", row.Path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) viewAgenda(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := s.store.Read(agenda.FileName)
	if err != nil {
		return mcp.NewToolResultError("agenda not initialized"), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) readFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "gameplan://readme-format",
			MIMEType: "text/markdown",
			Text:     ReadmeFormatContract,
		},
	}, nil
}
