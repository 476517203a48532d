package app

import (
	"context"
	"fmt"

	"fiftytwobooks/internal/util"
	"fiftytwobooks/pkg/domain"
)

const placeholderCoverBase = "https://s3.amazonaws.com/fifty-two-books-tracker-bucket/"

func defaultBooks() []domain.BookDraft {
	cover := func(name string) *string {
		url := placeholderCoverBase + name
		return &url
	}
	return []domain.BookDraft{
		{Title: "Atomic Habits", Author: "James Clear", Status: domain.StatusToRead, ImageURL: cover("placeholder1.jpg")},
		{Title: "Deep Work", Author: "Cal Newport", Status: domain.StatusReading, ImageURL: cover("placeholder2.jpg")},
		{Title: "The Power of Now", Author: "Eckhart Tolle", Status: domain.StatusCompleted, ImageURL: cover("placeholder3.jpg")},
	}
}

// SeedDefaults inserts the sample books when the store is empty and
// returns how many were inserted.
func (a *App) SeedDefaults(ctx context.Context) (int, error) {
	count, err := a.store.CountBooks(ctx)
	if err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	if count > 0 {
		return 0, nil
	}
	inserted := 0
	for _, draft := range defaultBooks() {
		if _, err := a.store.InsertBook(ctx, draft); err != nil {
			return inserted, fmt.Errorf("seed %q: %w", draft.Title, err)
		}
		inserted++
	}
	util.LoggerFromContext(ctx).Info("seeded sample books", "count", inserted)
	return inserted, nil
}
