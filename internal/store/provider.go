// Package store defines the note document-store abstraction.
//
// The contract is equality-filter only: a provider can scope a query by
// owner and by pinned state, but has no substring or full-text
// capability. Search happens above this layer.
package store

import (
	"context"
	"time"

	"github.com/eralp/turbonote/internal/models"
)

// InsertFields is the payload for a new document. The provider assigns
// the id.
type InsertFields struct {
	OwnerID   string
	Title     string
	Content   string
	Pinned    bool
	UpdatedAt time.Time
}

// UpdateFields is a partial document update. Nil fields are left
// untouched in the stored document.
type UpdateFields struct {
	Title     *string
	Content   *string
	Pinned    *bool
	UpdatedAt *time.Time
}

// Provider is the interface for note document operations.
type Provider interface {
	// Query returns every document owned by ownerID, optionally
	// restricted to a pinned state. Order is unspecified.
	Query(ctx context.Context, ownerID string, pinned *bool) ([]models.Note, error)
	// GetByID returns the document with the given id, or a not-found
	// error when absent. No ownership check happens here.
	GetByID(ctx context.Context, id string) (*models.Note, error)
	// Insert persists a new document and returns it with the assigned id.
	Insert(ctx context.Context, fields InsertFields) (*models.Note, error)
	// UpdateFields merges the provided fields into the stored document.
	UpdateFields(ctx context.Context, id string, fields UpdateFields) error
	// DeleteByID hard-removes the document.
	DeleteByID(ctx context.Context, id string) error
	// Close releases the underlying connection.
	Close() error
}
