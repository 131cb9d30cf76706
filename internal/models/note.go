// Package models defines the domain types for TurboNote.
package models

import "time"

// Note represents a user-owned note document.
// ID is assigned by the store on insert and never changes.
// OwnerID is stamped once at creation and never changes after that.
type Note struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"-"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Pinned    bool      `json:"pinned"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Flashcard is a single question/answer pair produced by the generator.
type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
