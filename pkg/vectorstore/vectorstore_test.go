package vectorstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(context.Background(), filepath.Join(dir, "vectors.db"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreAndSearch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	recs := []Record{
		{ID: "a", Content: "the cat sat on the mat", Vector: []float32{1, 0, 0}, CreatedAt: time.Now()},
		{ID: "b", Content: "completely unrelated", Vector: []float32{0, 1, 0}, CreatedAt: time.Now()},
	}
	for _, r := range recs {
		if err := s.Store(ctx, r); err != nil {
			t.Fatalf("Store: %v", err)
		}
	}

	matches, err := s.Search(ctx, []float32{1, 0, 0}, 2, Filters{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Record.ID != "a" {
		t.Fatalf("expected closest match to be %q, got %q", "a", matches[0].Record.ID)
	}
}

func TestStoreIsIdempotentByID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rec := Record{ID: "x", Content: "first", Vector: []float32{1, 0}, CreatedAt: time.Now()}
	if err := s.Store(ctx, rec); err != nil {
		t.Fatalf("Store: %v", err)
	}
	rec.Content = "second"
	if err := s.Store(ctx, rec); err != nil {
		t.Fatalf("Store: %v", err)
	}
	got, ok, err := s.Get(ctx, "x")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got.Content != "second" {
		t.Fatalf("expected updated content, got %q", got.Content)
	}
	n, err := s.Count(ctx)
	if err != nil || n != 1 {
		t.Fatalf("expected count 1, got %d (err=%v)", n, err)
	}
}

func TestSearchFiltersByTag(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_ = s.Store(ctx, Record{ID: "a", Content: "one", Vector: []float32{1, 0}, Tags: []string{"work"}, CreatedAt: time.Now()})
	_ = s.Store(ctx, Record{ID: "b", Content: "two", Vector: []float32{1, 0}, Tags: []string{"personal"}, CreatedAt: time.Now()})

	matches, err := s.Search(ctx, []float32{1, 0}, 10, Filters{Tags: []string{"work"}})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 1 || matches[0].Record.ID != "a" {
		t.Fatalf("expected only tagged record, got %+v", matches)
	}
}

func TestDeleteRemovesRecord(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_ = s.Store(ctx, Record{ID: "a", Content: "one", Vector: []float32{1, 0}, CreatedAt: time.Now()})
	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, ok, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("expected record to be deleted")
	}
}
