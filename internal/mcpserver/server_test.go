package mcpserver

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gameplanhq/gameplan/internal/history"
	"github.com/gameplanhq/gameplan/internal/storage"
)

func testServer(t *testing.T) (*Server, storage.Provider, *history.DB) {
	t.Helper()

	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}

	dbFile, err := os.CreateTemp("", "gameplan-mcp-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := history.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	srv := New(store, db)
	return srv, store, db
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error
	switch name {
	case "list_items":
		result, err = srv.listItems(ctx, req)
	case "read_item":
		result, err = srv.readItem(ctx, req)
	case "view_agenda":
		result, err = srv.viewAgenda(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestListItems(t *testing.T) {
	srv, _, db := testServer(t)

	err := db.RecordSync(history.ItemRow{
		Adapter: "jira", ID: "PROJ-1", Title: "Fix login", Status: "Open",
		Path: "tracking/areas/jira/PROJ-1/README.md", SyncedAt: time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "list_items", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "PROJ-1") || !strings.Contains(text, "Fix login") {
		t.Errorf("list result = %q", text)
	}
}

func TestReadItem(t *testing.T) {
	srv, store, db := testServer(t)

	readme := "# PROJ-1: Fix login\n\n**Status**: Open\n"
	path := "tracking/areas/jira/PROJ-1/README.md"
	if err := store.Write(path, []byte(readme)); err != nil {
		t.Fatal(err)
	}
	err := db.RecordSync(history.ItemRow{
		Adapter: "jira", ID: "PROJ-1", Title: "Fix login", Status: "Open",
		Path: path, SyncedAt: time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "read_item", map[string]interface{}{
		"adapter": "jira",
		"id":      "PROJ-1",
	})
	if resultText(r) != readme {
		t.Errorf("read result = %q", resultText(r))
	}
}

func TestReadItemMissing(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "read_item", map[string]interface{}{
		"adapter": "jira",
		"id":      "NOPE-1",
	})
	if !r.IsError {
		t.Error("expected error for missing item")
	}
}

func TestViewAgenda(t *testing.T) {
	srv, store, _ := testServer(t)

	r := callTool(t, srv, "view_agenda", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error before agenda init")
	}

	content := "# Agenda - Monday, January 05, 2026\n"
	if err := store.Write("AGENDA.md", []byte(content)); err != nil {
		t.Fatal(err)
	}
	r = callTool(t, srv, "view_agenda", map[string]interface{}{})
	if resultText(r) != content {
		t.Errorf("agenda result = %q", resultText(r))
	}
}
