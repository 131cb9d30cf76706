package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/eralp/turbonote/internal/apperr"
	"github.com/eralp/turbonote/internal/flashcard"
	"github.com/eralp/turbonote/internal/noterepo"
)

const maxBodyBytes = 1 << 20

// Handler holds API route handlers.
type Handler struct {
	repo *noterepo.Repository
	gen  flashcard.Generator
}

// NewHandler creates a new Handler.
func NewHandler(repo *noterepo.Repository, gen flashcard.Generator) *Handler {
	return &Handler{repo: repo, gen: gen}
}

// ListNotes handles GET /notes with search, pinned filter, sorting, and
// pagination.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	items, total, err := h.repo.ListNotes(r.Context(), UserID(r.Context()), params.engineParams())
	if err != nil {
		writeError(w, err)
		return
	}
	resp := NoteListResponse{
		Items:    make([]NoteResponse, len(items)),
		Total:    total,
		Page:     params.Page,
		PageSize: params.PageSize,
	}
	for i := range items {
		resp.Items[i] = toNoteResponse(&items[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateNote handles POST /notes.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, apperr.Validation(err.Error()))
		return
	}
	note, err := h.repo.Create(r.Context(), UserID(r.Context()), req.Title, req.Content, req.Pinned)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toNoteResponse(note))
}

// GetNote handles GET /notes/{id}.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.repo.GetOwned(r.Context(), chi.URLParam(r, "id"), UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toNoteResponse(note))
}

// UpdateNote handles PUT /notes/{id}. Fields absent from the body keep
// their stored value; updated_at is always refreshed.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	noteID := chi.URLParam(r, "id")

	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid JSON body"))
		return
	}

	// Ownership check precedes every mutation; absence and foreign
	// ownership are reported identically.
	if _, err := h.repo.GetOwned(r.Context(), noteID, UserID(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	note, err := h.repo.Update(r.Context(), noteID, noterepo.UpdateParams{
		Title:   req.Title,
		Content: req.Content,
		Pinned:  req.Pinned,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toNoteResponse(note))
}

// PinNote handles PATCH /notes/{id}/pin. The desired state arrives as
// the required "pinned" query parameter; updated_at is not touched.
func (h *Handler) PinNote(w http.ResponseWriter, r *http.Request) {
	noteID := chi.URLParam(r, "id")

	raw := r.URL.Query().Get("pinned")
	if raw == "" {
		writeError(w, apperr.Validation("query parameter 'pinned' is required"))
		return
	}
	pinned, err := strconv.ParseBool(raw)
	if err != nil {
		writeError(w, apperr.Validation("pinned must be a boolean"))
		return
	}

	if _, err := h.repo.GetOwned(r.Context(), noteID, UserID(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	note, err := h.repo.SetPin(r.Context(), noteID, pinned)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toNoteResponse(note))
}

// DeleteNote handles DELETE /notes/{id}.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	noteID := chi.URLParam(r, "id")

	if _, err := h.repo.GetOwned(r.Context(), noteID, UserID(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	if err := h.repo.Delete(r.Context(), noteID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GenerateFlashcards handles POST /flashcards/generate.
func (h *Handler) GenerateFlashcards(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req GenerateFlashcardsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid JSON body"))
		return
	}
	cards, err := h.gen.Generate(r.Context(), req.NoteContent)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, GenerateFlashcardsResponse{
		Flashcards:         cards,
		NoteContentPreview: flashcard.Preview(req.NoteContent),
	})
}
