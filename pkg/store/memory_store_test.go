package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"fiftytwobooks/pkg/domain"
)

func TestMemoryStoreInsertStampsRecord(t *testing.T) {
	s := NewMemoryStore()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 123456789, time.FixedZone("X", 3600))
	s.now = func() time.Time { return fixed }
	url := "https://covers.s3.amazonaws.com/images/a-cover.png"

	book, err := s.InsertBook(context.Background(), domain.BookDraft{
		Title:    "Atomic Habits",
		Author:   "James Clear",
		Status:   domain.StatusToRead,
		ImageURL: &url,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if book.ID == "" {
		t.Fatalf("expected generated id")
	}
	want := fixed.UTC().Truncate(time.Microsecond)
	if !book.CreatedAt.Equal(want) || !book.UpdatedAt.Equal(want) {
		t.Fatalf("unexpected timestamps: created=%v updated=%v", book.CreatedAt, book.UpdatedAt)
	}
	if book.ImageURL == nil || *book.ImageURL != url {
		t.Fatalf("unexpected image url: %v", book.ImageURL)
	}

	url = "mutated"
	got, ok, err := s.GetBook(context.Background(), book.ID)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if *got.ImageURL == "mutated" {
		t.Fatalf("store must not alias caller memory")
	}
	if got.Title != book.Title || got.Author != book.Author || got.Status != book.Status {
		t.Fatalf("read-after-write mismatch: %+v vs %+v", got, book)
	}
	if !got.CreatedAt.Equal(got.UpdatedAt) {
		t.Fatalf("expected createdAt == updatedAt on a fresh record")
	}
}

func TestMemoryStoreRejectsMissingColumns(t *testing.T) {
	s := NewMemoryStore()
	drafts := []domain.BookDraft{
		{Author: "A", Status: domain.StatusReading},
		{Title: "T", Status: domain.StatusReading},
		{Title: "T", Author: "A"},
	}
	for i, draft := range drafts {
		if _, err := s.InsertBook(context.Background(), draft); !errors.Is(err, ErrPersistence) {
			t.Fatalf("draft %d: expected ErrPersistence, got %v", i, err)
		}
	}
	if n, _ := s.CountBooks(context.Background()); n != 0 {
		t.Fatalf("expected no records, got %d", n)
	}
}

func TestMemoryStoreListAndDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	a := mustInsert(t, s, "A")
	b := mustInsert(t, s, "B")
	c := mustInsert(t, s, "C")

	deleted, err := s.DeleteBook(ctx, a.ID)
	if err != nil || !deleted {
		t.Fatalf("delete a: deleted=%v err=%v", deleted, err)
	}
	deleted, err = s.DeleteBook(ctx, a.ID)
	if err != nil || deleted {
		t.Fatalf("second delete should be a no-op: deleted=%v err=%v", deleted, err)
	}
	if _, ok, _ := s.GetBook(ctx, a.ID); ok {
		t.Fatalf("deleted book still visible")
	}

	books, err := s.ListBooks(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(books) != 2 || books[0].ID != b.ID || books[1].ID != c.ID {
		t.Fatalf("unexpected list after delete: %+v", books)
	}
}

func TestMemoryStoreCanceledContext(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.InsertBook(ctx, domain.BookDraft{Title: "T", Author: "A", Status: domain.StatusToRead}); !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if _, err := s.ListBooks(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected wrapped context.Canceled, got %v", err)
	}
}

func TestMemoryStoreConcurrentInsertsHaveUniqueIDs(t *testing.T) {
	s := NewMemoryStore()
	const n = 64
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			book, err := s.InsertBook(context.Background(), domain.BookDraft{
				Title:  fmt.Sprintf("Book %d", i),
				Author: "Author",
				Status: domain.StatusCompleted,
			})
			if err != nil {
				t.Errorf("insert %d: %v", i, err)
				return
			}
			ids <- book.ID
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]struct{}, n)
	for id := range ids {
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
	if count, _ := s.CountBooks(context.Background()); count != n {
		t.Fatalf("expected %d books, got %d", n, count)
	}
}

func mustInsert(t *testing.T, s Store, title string) domain.Book {
	t.Helper()
	book, err := s.InsertBook(context.Background(), domain.BookDraft{
		Title:  title,
		Author: "Author " + title,
		Status: domain.StatusToRead,
	})
	if err != nil {
		t.Fatalf("insert %s: %v", title, err)
	}
	return book
}
