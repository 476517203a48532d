package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fiftytwobooks/pkg/domain"
)

// ErrPersistence wraps every storage-layer failure.
var ErrPersistence = errors.New("persistence failure")

// Store defines persistence operations for book records.
type Store interface {
	// InsertBook assigns an ID, stamps createdAt/updatedAt and persists the draft.
	InsertBook(ctx context.Context, draft domain.BookDraft) (domain.Book, error)
	GetBook(ctx context.Context, id string) (domain.Book, bool, error)
	// ListBooks returns all books in creation order.
	ListBooks(ctx context.Context) ([]domain.Book, error)
	// DeleteBook reports whether a record was removed. Unknown ids are a no-op.
	DeleteBook(ctx context.Context, id string) (bool, error)
	CountBooks(ctx context.Context) (int, error)
}

// newBook builds the record for draft with a fresh ID and timestamps.
func newBook(draft domain.BookDraft, now time.Time) (domain.Book, error) {
	if err := checkColumns(draft); err != nil {
		return domain.Book{}, err
	}
	// Postgres keeps microseconds; truncate so returned and reloaded records match.
	now = now.UTC().Truncate(time.Microsecond)
	return domain.Book{
		ID:        uuid.NewString(),
		Title:     draft.Title,
		Author:    draft.Author,
		Status:    draft.Status,
		ImageURL:  cloneString(draft.ImageURL),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// checkColumns enforces the non-null column constraints only.
func checkColumns(draft domain.BookDraft) error {
	switch {
	case strings.TrimSpace(draft.Title) == "":
		return fmt.Errorf("%w: title is required", ErrPersistence)
	case strings.TrimSpace(draft.Author) == "":
		return fmt.Errorf("%w: author is required", ErrPersistence)
	case strings.TrimSpace(string(draft.Status)) == "":
		return fmt.Errorf("%w: status is required", ErrPersistence)
	}
	return nil
}

func wrapPersistence(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

// validID reports whether id can name a stored record; the id column is a UUID.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
