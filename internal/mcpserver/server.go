// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes TurboNote operations for LLM integration via stdio
// transport. It is bound to a single owner: local single-user mode.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/eralp/turbonote/internal/flashcard"
	"github.com/eralp/turbonote/internal/noterepo"
	"github.com/eralp/turbonote/internal/query"
)

// Server wraps the MCP server with TurboNote tools.
type Server struct {
	mcp   *server.MCPServer
	repo  *noterepo.Repository
	gen   flashcard.Generator
	owner string
}

// New creates a new MCP server with all note tools registered. Every
// tool operates on behalf of the given owner.
func New(repo *noterepo.Repository, gen flashcard.Generator, owner string) *Server {
	s := &Server{repo: repo, gen: gen, owner: owner}

	s.mcp = server.NewMCPServer(
		"TurboNote",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes with optional search, pinned filter, and sort order."),
		mcp.WithString("search", mcp.Description("Substring to match against title or content")),
		mcp.WithString("pinned", mcp.Description("Filter by pinned state: true or false")),
		mcp.WithString("sort", mcp.Description("Sort order: updated_at_desc, updated_at_asc, or pinned_desc")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a single note by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a new note."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Note title")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Note content")),
		mcp.WithString("pinned", mcp.Description("Initial pinned state: true or false (default false)")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("update_note",
		mcp.WithDescription("Update a note. Omitted fields keep their current value."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("content", mcp.Description("New content")),
		mcp.WithString("pinned", mcp.Description("New pinned state: true or false")),
	), s.updateNote)

	s.mcp.AddTool(mcp.NewTool("set_pin",
		mcp.WithDescription("Pin or unpin a note without changing its last-modified time."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
		mcp.WithString("pinned", mcp.Required(), mcp.Description("Desired pinned state: true or false")),
	), s.setPin)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete a note permanently."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("generate_flashcards",
		mcp.WithDescription("Generate educational question/answer flashcards from note text."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Note text to generate flashcards from")),
	), s.generateFlashcards)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p := query.Params{
		Page:     query.DefaultPage,
		PageSize: query.MaxPageSize,
		Sort:     query.SortUpdatedAtDesc,
	}
	if v, err := req.RequireString("search"); err == nil {
		p.Search = v
	}
	if v, err := req.RequireString("sort"); err == nil && v != "" {
		if !query.ValidSortKey(v) {
			return mcp.NewToolResultError(fmt.Sprintf("invalid sort key: %s", v)), nil
		}
		p.Sort = v
	}
	if v, err := req.RequireString("pinned"); err == nil && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return mcp.NewToolResultError("pinned must be true or false"), nil
		}
		p.Pinned = &b
	}

	items, total, err := s.repo.ListNotes(ctx, s.owner, p)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(map[string]any{"items": items, "total": total}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.repo.GetOwned(ctx, id, s.owner)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(note, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pinned := false
	if v, err := req.RequireString("pinned"); err == nil && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return mcp.NewToolResultError("pinned must be true or false"), nil
		}
		pinned = b
	}

	note, err := s.repo.Create(ctx, s.owner, title, content, pinned)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", note.ID)), nil
}

func (s *Server) updateNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var params noterepo.UpdateParams
	if v, err := req.RequireString("title"); err == nil && v != "" {
		params.Title = &v
	}
	if v, err := req.RequireString("content"); err == nil && v != "" {
		params.Content = &v
	}
	if v, err := req.RequireString("pinned"); err == nil && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return mcp.NewToolResultError("pinned must be true or false"), nil
		}
		params.Pinned = &b
	}

	// Ownership check precedes every mutation.
	if _, err := s.repo.GetOwned(ctx, id, s.owner); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	note, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(note, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) setPin(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := req.RequireString("pinned")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pinned, err := strconv.ParseBool(raw)
	if err != nil {
		return mcp.NewToolResultError("pinned must be true or false"), nil
	}

	if _, err := s.repo.GetOwned(ctx, id, s.owner); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	note, err := s.repo.SetPin(ctx, id, pinned)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(note, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.repo.GetOwned(ctx, id, s.owner); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", id)), nil
}

func (s *Server) generateFlashcards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cards, err := s.gen.Generate(ctx, content)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(cards, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
