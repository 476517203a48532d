package store

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"fiftytwobooks/pkg/domain"
)

// newTestGormStore connects to BOOK_TEST_DATABASE_URL or skips.
func newTestGormStore(t *testing.T) *GormStore {
	t.Helper()
	dsn := strings.TrimSpace(os.Getenv("BOOK_TEST_DATABASE_URL"))
	if dsn == "" {
		t.Skip("BOOK_TEST_DATABASE_URL not set")
	}
	s, err := NewGormStore(dsn)
	if err != nil {
		t.Fatalf("new gorm store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.db.Exec("DELETE FROM books").Error
	})
	return s
}

func TestGormStoreRoundTrip(t *testing.T) {
	s := newTestGormStore(t)
	ctx := context.Background()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 999999999, time.UTC)
	s.now = func() time.Time { return fixed }

	book, err := s.InsertBook(ctx, domain.BookDraft{Title: "Deep Work", Author: "Cal Newport", Status: domain.StatusReading})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, ok, err := s.GetBook(ctx, book.ID)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.Title != book.Title || got.Status != domain.StatusReading || got.ImageURL != nil {
		t.Fatalf("unexpected record: %+v", got)
	}
	if !got.CreatedAt.Equal(book.CreatedAt) || !got.CreatedAt.Equal(got.UpdatedAt) {
		t.Fatalf("timestamps changed on reload: %v/%v vs %v", got.CreatedAt, got.UpdatedAt, book.CreatedAt)
	}

	deleted, err := s.DeleteBook(ctx, book.ID)
	if err != nil || !deleted {
		t.Fatalf("delete: deleted=%v err=%v", deleted, err)
	}
	if _, ok, err := s.GetBook(ctx, book.ID); err != nil || ok {
		t.Fatalf("expected absent after delete: ok=%v err=%v", ok, err)
	}
}

func TestGormStoreUnknownIDs(t *testing.T) {
	s := newTestGormStore(t)
	ctx := context.Background()
	for _, id := range []string{"not-a-uuid", "6f1c2a9e-0000-4000-8000-000000000000"} {
		if _, ok, err := s.GetBook(ctx, id); err != nil || ok {
			t.Fatalf("get %q: ok=%v err=%v", id, ok, err)
		}
		if deleted, err := s.DeleteBook(ctx, id); err != nil || deleted {
			t.Fatalf("delete %q: deleted=%v err=%v", id, deleted, err)
		}
	}
}
