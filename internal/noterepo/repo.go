// Package noterepo enforces note ownership and update semantics; it is
// the sole reader/writer boundary in front of the store provider.
package noterepo

import (
	"context"
	"errors"
	"time"

	"github.com/eralp/turbonote/internal/apperr"
	"github.com/eralp/turbonote/internal/models"
	"github.com/eralp/turbonote/internal/query"
	"github.com/eralp/turbonote/internal/store"
)

// UpdateParams carries a partial update. Nil fields keep their stored
// value; there is no way to clear a field other than an empty string.
type UpdateParams struct {
	Title   *string
	Content *string
	Pinned  *bool
}

// Repository composes the store provider with the query engine.
//
// Mutating operations (Update, SetPin, Delete) perform no ownership
// check of their own: callers must first resolve the note through
// GetOwned and treat absence as not-found. Two concurrent updates to
// the same note race at last-write-wins granularity; consistency
// beyond read-your-writes per document is delegated to the store.
type Repository struct {
	store store.Provider
	now   func() time.Time
}

// New creates a Repository over the given provider.
func New(p store.Provider) *Repository {
	return &Repository{store: p, now: time.Now}
}

// Create stamps ownership and the update timestamp, persists the note,
// and returns it as stored (including the store-assigned id).
func (r *Repository) Create(ctx context.Context, ownerID, title, content string, pinned bool) (*models.Note, error) {
	return r.store.Insert(ctx, store.InsertFields{
		OwnerID:   ownerID,
		Title:     title,
		Content:   content,
		Pinned:    pinned,
		UpdatedAt: r.now().UTC(),
	})
}

// GetOwned fetches a note by id for the given owner. A note that does
// not exist and a note owned by someone else are reported identically
// as not-found, so existence never leaks across owners.
func (r *Repository) GetOwned(ctx context.Context, noteID, ownerID string) (*models.Note, error) {
	n, err := r.store.GetByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound("note")
		}
		return nil, err
	}
	if n.OwnerID != ownerID {
		return nil, apperr.NotFound("note")
	}
	return n, nil
}

// Update merges the provided fields into the note, always refreshing
// updated_at, and returns the freshly read merged note. Callers must
// have verified ownership via GetOwned first.
func (r *Repository) Update(ctx context.Context, noteID string, p UpdateParams) (*models.Note, error) {
	now := r.now().UTC()
	err := r.store.UpdateFields(ctx, noteID, store.UpdateFields{
		Title:     p.Title,
		Content:   p.Content,
		Pinned:    p.Pinned,
		UpdatedAt: &now,
	})
	if err != nil {
		return nil, err
	}
	return r.store.GetByID(ctx, noteID)
}

// SetPin sets the pinned flag without touching updated_at: pinning is
// deliberately excluded from last-modified semantics. The desired state
// is explicit rather than derived from the current one. Callers must
// have verified ownership via GetOwned first.
func (r *Repository) SetPin(ctx context.Context, noteID string, pinned bool) (*models.Note, error) {
	err := r.store.UpdateFields(ctx, noteID, store.UpdateFields{Pinned: &pinned})
	if err != nil {
		return nil, err
	}
	return r.store.GetByID(ctx, noteID)
}

// Delete hard-removes the note. Callers must have verified ownership
// via GetOwned first.
func (r *Repository) Delete(ctx context.Context, noteID string) error {
	return r.store.DeleteByID(ctx, noteID)
}

// ListNotes issues an owner-equality (and optional pinned-equality)
// query to the store and delegates search, sort, and pagination to the
// query engine. Returns the page and the filtered total.
func (r *Repository) ListNotes(ctx context.Context, ownerID string, p query.Params) ([]models.Note, int, error) {
	docs, err := r.store.Query(ctx, ownerID, p.Pinned)
	if err != nil {
		return nil, 0, err
	}
	items, total := query.List(docs, p)
	return items, total, nil
}
