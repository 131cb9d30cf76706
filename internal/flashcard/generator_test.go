package flashcard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/eralp/turbonote/internal/apperr"
)

const sampleContent = "Photosynthesis is the process by which plants use sunlight to produce energy."

// fakeGemini returns a test server that responds with the given status
// and candidate text.
func fakeGemini(t *testing.T, status int, candidateText string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") == "" {
			t.Error("missing api key query parameter")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status == http.StatusOK {
			resp := map[string]any{
				"candidates": []map[string]any{
					{"content": map[string]any{"parts": []map[string]string{{"text": candidateText}}}},
				},
			}
			_ = json.NewEncoder(w).Encode(resp)
		} else {
			_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"message": "upstream says no"}})
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testClient(srv *httptest.Server) *Client {
	return NewClient(srv.URL, "gemini-test", "test-key", 5*time.Second)
}

func TestGenerateParsesCards(t *testing.T) {
	srv := fakeGemini(t, http.StatusOK,
		`[{"question": "What is photosynthesis?", "answer": "Light to glucose."}, {"question": "Q2", "answer": "A2"}]`)
	cards, err := testClient(srv).Generate(context.Background(), sampleContent)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("len(cards) = %d, want 2", len(cards))
	}
	if cards[0].Question != "What is photosynthesis?" {
		t.Errorf("question = %q", cards[0].Question)
	}
}

func TestGenerateStripsCodeFences(t *testing.T) {
	srv := fakeGemini(t, http.StatusOK,
		"```json\n[{\"question\": \"Q\", \"answer\": \"A\"}]\n```")
	cards, err := testClient(srv).Generate(context.Background(), sampleContent)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(cards) != 1 || cards[0].Question != "Q" {
		t.Errorf("cards = %+v", cards)
	}
}

func TestGenerateExtractsArrayFromProse(t *testing.T) {
	srv := fakeGemini(t, http.StatusOK,
		`Here are your flashcards: [{"question": "Q", "answer": "A"}] hope that helps!`)
	cards, err := testClient(srv).Generate(context.Background(), sampleContent)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(cards) != 1 {
		t.Errorf("len(cards) = %d, want 1", len(cards))
	}
}

func TestGenerateCapsAtMaxFlashcards(t *testing.T) {
	var items []string
	for i := 0; i < 8; i++ {
		items = append(items, `{"question": "Q", "answer": "A"}`)
	}
	srv := fakeGemini(t, http.StatusOK, "["+strings.Join(items, ",")+"]")
	cards, err := testClient(srv).Generate(context.Background(), sampleContent)
	if err != nil {
		t.Fatal(err)
	}
	if len(cards) != MaxFlashcards {
		t.Errorf("len(cards) = %d, want %d", len(cards), MaxFlashcards)
	}
}

func TestGenerateContentTooShort(t *testing.T) {
	srv := fakeGemini(t, http.StatusOK, "[]")
	_, err := testClient(srv).Generate(context.Background(), "short")
	if apperr.CodeOf(err) != apperr.CodeValidation {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestGenerateMissingAPIKey(t *testing.T) {
	c := NewClient("http://unused", "m", "", time.Second)
	_, err := c.Generate(context.Background(), sampleContent)
	if apperr.CodeOf(err) != apperr.CodeExternal {
		t.Errorf("err = %v, want external error", err)
	}
}

func TestGenerateUpstreamErrors(t *testing.T) {
	tests := []struct {
		name       string
		upstream   int
		wantStatus int
	}{
		{"unauthorized", http.StatusUnauthorized, http.StatusUnauthorized},
		{"rate limited", http.StatusTooManyRequests, http.StatusTooManyRequests},
		{"bad request", http.StatusBadRequest, http.StatusBadRequest},
		{"server error", http.StatusInternalServerError, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := fakeGemini(t, tt.upstream, "")
			_, err := testClient(srv).Generate(context.Background(), sampleContent)
			if err == nil {
				t.Fatal("expected error")
			}
			var coded *apperr.Error
			if !errors.As(err, &coded) {
				t.Fatalf("err = %v, want coded", err)
			}
			if coded.Code != apperr.CodeExternal {
				t.Errorf("code = %s, want external", coded.Code)
			}
			if apperr.HTTPStatus(err) != tt.wantStatus {
				t.Errorf("status = %d, want %d", apperr.HTTPStatus(err), tt.wantStatus)
			}
		})
	}
}

func TestGenerateGarbageResponse(t *testing.T) {
	srv := fakeGemini(t, http.StatusOK, "I cannot help with that.")
	_, err := testClient(srv).Generate(context.Background(), sampleContent)
	if apperr.CodeOf(err) != apperr.CodeExternal {
		t.Errorf("err = %v, want external error", err)
	}
}

func TestGenerateTruncatesLongContent(t *testing.T) {
	var gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotPrompt = req.Contents[0].Parts[0].Text
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": `[{"question":"Q","answer":"A"}]`}}}},
			},
		})
	}))
	t.Cleanup(srv.Close)

	long := strings.Repeat("x", MaxContentLength+500)
	if _, err := testClient(srv).Generate(context.Background(), long); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(gotPrompt, strings.Repeat("x", MaxContentLength+1)) {
		t.Error("content was not truncated")
	}
	if !strings.Contains(gotPrompt, "...") {
		t.Error("truncated content missing ellipsis")
	}
}

func TestPreview(t *testing.T) {
	if got := Preview("short"); got != "short" {
		t.Errorf("Preview = %q", got)
	}
	long := strings.Repeat("a", MaxPreviewLength+10)
	got := Preview(long)
	if len(got) != MaxPreviewLength+3 || !strings.HasSuffix(got, "...") {
		t.Errorf("Preview(long) = %q", got)
	}
}
