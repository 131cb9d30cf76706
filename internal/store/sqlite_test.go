package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/eralp/turbonote/internal/apperr"
)

func testStore(t *testing.T) *SQLite {
	t.Helper()
	dbFile, err := os.CreateTemp("", "turbonote-store-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	s, err := Open(dbFile.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertAndGet(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	n, err := s.Insert(ctx, InsertFields{
		OwnerID: "u1", Title: "Hello", Content: "World", Pinned: true, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if n.ID == "" {
		t.Fatal("Insert did not assign an id")
	}
	if n.OwnerID != "u1" || n.Title != "Hello" || n.Content != "World" || !n.Pinned {
		t.Errorf("inserted note = %+v", n)
	}
	if !n.UpdatedAt.Equal(now) {
		t.Errorf("updated_at = %v, want %v", n.UpdatedAt, now)
	}

	got, err := s.GetByID(ctx, n.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ID != n.ID || got.Title != "Hello" {
		t.Errorf("got = %+v", got)
	}
}

func TestGetByIDMissing(t *testing.T) {
	s := testStore(t)
	_, err := s.GetByID(context.Background(), "nope")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestQueryOwnerScoped(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, f := range []InsertFields{
		{OwnerID: "u1", Title: "a", UpdatedAt: now},
		{OwnerID: "u1", Title: "b", Pinned: true, UpdatedAt: now},
		{OwnerID: "u2", Title: "c", UpdatedAt: now},
	} {
		if _, err := s.Insert(ctx, f); err != nil {
			t.Fatal(err)
		}
	}

	docs, err := s.Query(ctx, "u1", nil)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("len(docs) = %d, want 2", len(docs))
	}
	for _, d := range docs {
		if d.OwnerID != "u1" {
			t.Errorf("foreign document leaked: %+v", d)
		}
	}

	pinned := true
	docs, err = s.Query(ctx, "u1", &pinned)
	if err != nil {
		t.Fatalf("Query pinned: %v", err)
	}
	if len(docs) != 1 || docs[0].Title != "b" {
		t.Errorf("pinned query = %+v", docs)
	}
}

func TestUpdateFieldsPartial(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	n, err := s.Insert(ctx, InsertFields{OwnerID: "u1", Title: "Shopping", Content: "milk", UpdatedAt: now})
	if err != nil {
		t.Fatal(err)
	}

	content := "new"
	if err := s.UpdateFields(ctx, n.ID, UpdateFields{Content: &content}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	got, err := s.GetByID(ctx, n.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Shopping" {
		t.Errorf("title changed: %q", got.Title)
	}
	if got.Content != "new" {
		t.Errorf("content = %q, want new", got.Content)
	}
	if !got.UpdatedAt.Equal(now) {
		t.Errorf("updated_at changed without being set: %v", got.UpdatedAt)
	}
}

func TestUpdateFieldsMissing(t *testing.T) {
	s := testStore(t)
	title := "x"
	err := s.UpdateFields(context.Background(), "nope", UpdateFields{Title: &title})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestUpdateFieldsEmptyIsNoop(t *testing.T) {
	s := testStore(t)
	if err := s.UpdateFields(context.Background(), "whatever", UpdateFields{}); err != nil {
		t.Errorf("empty update should be a no-op, got %v", err)
	}
}

func TestDeleteByID(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	n, err := s.Insert(ctx, InsertFields{OwnerID: "u1", Title: "bye", UpdatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteByID(ctx, n.ID); err != nil {
		t.Fatalf("DeleteByID: %v", err)
	}
	if _, err := s.GetByID(ctx, n.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("get after delete = %v, want not found", err)
	}
	if err := s.DeleteByID(ctx, n.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("double delete = %v, want not found", err)
	}
}
