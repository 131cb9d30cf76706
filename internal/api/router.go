package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/eralp/turbonote/internal/flashcard"
	"github.com/eralp/turbonote/internal/noterepo"
)

// NewRouter creates a chi router with all API routes mounted.
// identity resolves bearer tokens to user ids; nil disables auth and
// attributes every request to devUser.
func NewRouter(repo *noterepo.Repository, gen flashcard.Generator, identity Identity, devUser string) chi.Router {
	h := NewHandler(repo, gen)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(identity, devUser))

	// Notes CRUD.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/{id}", h.GetNote)
	r.Put("/notes/{id}", h.UpdateNote)
	r.Patch("/notes/{id}/pin", h.PinNote)
	r.Delete("/notes/{id}", h.DeleteNote)

	// Flashcard generation.
	r.Post("/flashcards/generate", h.GenerateFlashcards)

	return r
}
