package api

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/eralp/turbonote/internal/models"
)

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Title   string `json:"title" example:"Shopping"`
	Content string `json:"content" example:"Milk, eggs, bread"`
	Pinned  bool   `json:"pinned" example:"false"`
}

// Validate validates the create request.
func (r CreateNoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.Content, validation.Required),
	)
}

// UpdateNoteRequest is the request body for a partial update. Absent
// fields leave the stored value unchanged.
type UpdateNoteRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Pinned  *bool   `json:"pinned"`
}

// NoteResponse is the external representation of a note. The owner id
// is never exposed.
type NoteResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Pinned    bool      `json:"pinned"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toNoteResponse(n *models.Note) NoteResponse {
	return NoteResponse{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		Pinned:    n.Pinned,
		UpdatedAt: n.UpdatedAt,
	}
}

// NoteListResponse wraps paginated note listings.
type NoteListResponse struct {
	Items    []NoteResponse `json:"items"`
	Total    int            `json:"total" example:"42"`
	Page     int            `json:"page" example:"1"`
	PageSize int            `json:"page_size" example:"20"`
}

// GenerateFlashcardsRequest is the request body for flashcard generation.
type GenerateFlashcardsRequest struct {
	NoteContent string `json:"note_content"`
}

// GenerateFlashcardsResponse wraps the generated cards and a preview of
// the input content.
type GenerateFlashcardsResponse struct {
	Flashcards         []models.Flashcard `json:"flashcards"`
	NoteContentPreview string             `json:"note_content_preview"`
}
