// Package flashcard turns free note text into question/answer pairs by
// calling the Gemini generative-language REST API.
package flashcard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/eralp/turbonote/internal/apperr"
	"github.com/eralp/turbonote/internal/models"
)

// Content and output bounds.
const (
	MinContentLength = 10
	MaxContentLength = 5000
	MaxFlashcards    = 5
	MaxPreviewLength = 100

	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1"
	DefaultModel   = "gemini-1.5-flash"
	DefaultTimeout = 30 * time.Second
)

// Generator produces flashcards from note content. The HTTP layer
// depends on this interface so tests can inject a fake.
type Generator interface {
	Generate(ctx context.Context, noteContent string) ([]models.Flashcard, error)
}

// Client is a Generator backed by the Gemini REST API.
type Client struct {
	baseURL string
	model   string
	apiKey  string
	http    *http.Client
}

// Verify *Client satisfies Generator at compile time.
var _ Generator = (*Client)(nil)

// NewClient creates a Gemini REST client. Empty baseURL, model, or
// timeout fall back to the package defaults.
func NewClient(baseURL, model, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

const promptTemplate = `Based on the following text, generate 3-5 educational flashcard questions and answers.

IMPORTANT: You must respond ONLY with a valid JSON array. Do not include any markdown formatting, code blocks, or explanations.

Format your response as a JSON array like this example:
[{"question": "What is photosynthesis?", "answer": "The process by which plants use sunlight to produce glucose"}, {"question": "...", "answer": "..."}]

Rules:
1. Create 3-5 flashcards
2. Questions should be clear, specific, and test understanding
3. Answers should be concise but complete (1-2 sentences)
4. Focus on key concepts, definitions, processes, or important facts
5. Make questions diverse (what, how, why, when, where)
6. Response must be ONLY valid JSON - no extra text or markdown

Text to analyze:
%s

Generate flashcards now (JSON only):`

type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	Contents         []generateContent `json:"contents"`
	GenerationConfig generationConfig  `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content generateContent `json:"content"`
	} `json:"candidates"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate validates and bounds the note content, calls the model, and
// parses its output into at most MaxFlashcards cards.
func (c *Client) Generate(ctx context.Context, noteContent string) ([]models.Flashcard, error) {
	if len(strings.TrimSpace(noteContent)) < MinContentLength {
		return nil, apperr.Validation(fmt.Sprintf("note content must be at least %d characters long", MinContentLength))
	}
	if c.apiKey == "" {
		return nil, apperr.External("Gemini", "API key not configured", http.StatusInternalServerError)
	}
	// Truncate very long content to stay inside API limits.
	if len(noteContent) > MaxContentLength {
		noteContent = noteContent[:MaxContentLength] + "..."
	}

	req := generateRequest{
		Contents: []generateContent{{
			Parts: []generatePart{{Text: fmt.Sprintf(promptTemplate, noteContent)}},
		}},
		GenerationConfig: generationConfig{
			Temperature:     0.7,
			TopK:            40,
			TopP:            0.95,
			MaxOutputTokens: 1024,
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, apperr.Internal("encode request", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, apperr.Internal("build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, apperr.External("Gemini", "request timed out", http.StatusGatewayTimeout)
		}
		return nil, apperr.External("Gemini", "failed to connect: "+err.Error(), http.StatusBadGateway)
	}
	defer resp.Body.Close()

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil && resp.StatusCode == http.StatusOK {
		return nil, apperr.External("Gemini", "invalid response body", http.StatusBadGateway)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, apperr.External("Gemini", "invalid API key", http.StatusUnauthorized)
	case http.StatusTooManyRequests:
		return nil, apperr.External("Gemini", "rate limit exceeded, try again later", http.StatusTooManyRequests)
	case http.StatusBadRequest:
		return nil, apperr.External("Gemini", upstreamMessage(result), http.StatusBadRequest)
	default:
		return nil, apperr.External("Gemini", upstreamMessage(result), http.StatusBadGateway)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, apperr.External("Gemini", "no candidates in response", http.StatusBadGateway)
	}
	cards, err := parseFlashcards(result.Candidates[0].Content.Parts[0].Text)
	if err != nil {
		return nil, apperr.External("Gemini", err.Error(), http.StatusBadGateway)
	}
	return cards, nil
}

func upstreamMessage(r generateResponse) string {
	if r.Error.Message != "" {
		return r.Error.Message
	}
	return "upstream error"
}

var (
	fenceOpen  = regexp.MustCompile("^```(?:json)?\\s*")
	fenceClose = regexp.MustCompile("\\s*```$")
	jsonArray  = regexp.MustCompile(`(?s)\[.*\]`)
)

// parseFlashcards extracts a JSON array of question/answer pairs from
// raw model output, tolerating markdown code fences and surrounding
// prose, and caps the result at MaxFlashcards.
func parseFlashcards(text string) ([]models.Flashcard, error) {
	text = strings.TrimSpace(text)
	text = fenceOpen.ReplaceAllString(text, "")
	text = fenceClose.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	var raw []struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		match := jsonArray.FindString(text)
		if match == "" {
			return nil, errors.New("could not parse JSON from response")
		}
		if err := json.Unmarshal([]byte(match), &raw); err != nil {
			return nil, errors.New("could not parse JSON from response")
		}
	}

	var cards []models.Flashcard
	for _, item := range raw {
		if len(cards) == MaxFlashcards {
			break
		}
		q := strings.TrimSpace(item.Question)
		a := strings.TrimSpace(item.Answer)
		if q == "" || a == "" {
			continue
		}
		cards = append(cards, models.Flashcard{Question: q, Answer: a})
	}
	if len(cards) == 0 {
		return nil, errors.New("no valid flashcards found in response")
	}
	return cards, nil
}

// Preview returns the leading MaxPreviewLength characters of content,
// with an ellipsis when truncated.
func Preview(content string) string {
	if len(content) > MaxPreviewLength {
		return content[:MaxPreviewLength] + "..."
	}
	return content
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	if errors.As(err, &t) {
		return t.Timeout()
	}
	return os.IsTimeout(err)
}
