package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/eralp/turbonote/internal/models"
	"github.com/eralp/turbonote/internal/testutil"
)

type stubGenerator struct {
	cards []models.Flashcard
	err   error
}

func (s *stubGenerator) Generate(_ context.Context, _ string) ([]models.Flashcard, error) {
	return s.cards, s.err
}

func testServer(t *testing.T) *Server {
	t.Helper()
	gen := &stubGenerator{cards: []models.Flashcard{{Question: "Q", Answer: "A"}}}
	return New(testutil.TestRepo(t), gen, "local-user")
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so we invoke the
	// handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_notes":
		result, err = srv.listNotes(ctx, req)
	case "read_note":
		result, err = srv.readNote(ctx, req)
	case "create_note":
		result, err = srv.createNote(ctx, req)
	case "update_note":
		result, err = srv.updateNote(ctx, req)
	case "set_pin":
		result, err = srv.setPin(ctx, req)
	case "delete_note":
		result, err = srv.deleteNote(ctx, req)
	case "generate_flashcards":
		result, err = srv.generateFlashcards(ctx, req)
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

func createTestNote(t *testing.T, srv *Server, title, content string) string {
	t.Helper()
	res := callTool(t, srv, "create_note", map[string]interface{}{
		"title":   title,
		"content": content,
	})
	if res.IsError {
		t.Fatalf("create_note failed: %s", resultText(res))
	}
	text := resultText(res)
	id := strings.TrimPrefix(text, "created: ")
	if id == text {
		t.Fatalf("unexpected create result: %q", text)
	}
	return id
}

func TestCreateAndReadNote(t *testing.T) {
	srv := testServer(t)
	id := createTestNote(t, srv, "Shopping", "milk and eggs")

	res := callTool(t, srv, "read_note", map[string]interface{}{"id": id})
	if res.IsError {
		t.Fatalf("read_note failed: %s", resultText(res))
	}
	var note models.Note
	if err := json.Unmarshal([]byte(resultText(res)), &note); err != nil {
		t.Fatalf("read_note result not JSON: %v", err)
	}
	if note.Title != "Shopping" || note.Content != "milk and eggs" {
		t.Errorf("note = %+v", note)
	}
}

func TestReadNoteMissing(t *testing.T) {
	srv := testServer(t)
	res := callTool(t, srv, "read_note", map[string]interface{}{"id": "nope"})
	if !res.IsError {
		t.Error("expected error result for missing note")
	}
}

func TestListNotesFilters(t *testing.T) {
	srv := testServer(t)
	createTestNote(t, srv, "Shopping", "milk")
	createTestNote(t, srv, "Workout", "leg day")

	res := callTool(t, srv, "list_notes", map[string]interface{}{"search": "milk"})
	if res.IsError {
		t.Fatalf("list_notes failed: %s", resultText(res))
	}
	var listing struct {
		Items []models.Note `json:"items"`
		Total int           `json:"total"`
	}
	if err := json.Unmarshal([]byte(resultText(res)), &listing); err != nil {
		t.Fatal(err)
	}
	if listing.Total != 1 || listing.Items[0].Title != "Shopping" {
		t.Errorf("listing = %+v", listing)
	}

	// Invalid sort key is reported, not silently ignored.
	res = callTool(t, srv, "list_notes", map[string]interface{}{"sort": "title_asc"})
	if !res.IsError {
		t.Error("invalid sort key accepted")
	}
}

func TestUpdateNotePartial(t *testing.T) {
	srv := testServer(t)
	id := createTestNote(t, srv, "Title", "old")

	res := callTool(t, srv, "update_note", map[string]interface{}{
		"id":      id,
		"content": "new",
	})
	if res.IsError {
		t.Fatalf("update_note failed: %s", resultText(res))
	}
	var note models.Note
	if err := json.Unmarshal([]byte(resultText(res)), &note); err != nil {
		t.Fatal(err)
	}
	if note.Title != "Title" || note.Content != "new" {
		t.Errorf("note = %+v", note)
	}
}

func TestSetPin(t *testing.T) {
	srv := testServer(t)
	id := createTestNote(t, srv, "Title", "content")

	res := callTool(t, srv, "set_pin", map[string]interface{}{
		"id":     id,
		"pinned": "true",
	})
	if res.IsError {
		t.Fatalf("set_pin failed: %s", resultText(res))
	}
	var note models.Note
	if err := json.Unmarshal([]byte(resultText(res)), &note); err != nil {
		t.Fatal(err)
	}
	if !note.Pinned {
		t.Error("note not pinned")
	}

	res = callTool(t, srv, "set_pin", map[string]interface{}{
		"id":     id,
		"pinned": "banana",
	})
	if !res.IsError {
		t.Error("non-boolean pinned accepted")
	}
}

func TestDeleteNote(t *testing.T) {
	srv := testServer(t)
	id := createTestNote(t, srv, "Title", "content")

	res := callTool(t, srv, "delete_note", map[string]interface{}{"id": id})
	if res.IsError {
		t.Fatalf("delete_note failed: %s", resultText(res))
	}
	res = callTool(t, srv, "read_note", map[string]interface{}{"id": id})
	if !res.IsError {
		t.Error("note readable after delete")
	}
}

func TestGenerateFlashcards(t *testing.T) {
	srv := testServer(t)
	res := callTool(t, srv, "generate_flashcards", map[string]interface{}{
		"content": "Photosynthesis converts light into chemical energy.",
	})
	if res.IsError {
		t.Fatalf("generate_flashcards failed: %s", resultText(res))
	}
	var cards []models.Flashcard
	if err := json.Unmarshal([]byte(resultText(res)), &cards); err != nil {
		t.Fatal(err)
	}
	if len(cards) != 1 || cards[0].Question != "Q" {
		t.Errorf("cards = %+v", cards)
	}
}
