package store

import (
	"context"
	"sync"
	"time"

	"fiftytwobooks/pkg/domain"
)

// MemoryStore keeps book records in-process. Used for tests and local runs.
type MemoryStore struct {
	mu     sync.RWMutex
	books  map[string]domain.Book
	orders []string
	now    func() time.Time
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		books: make(map[string]domain.Book),
		now:   time.Now,
	}
}

// InsertBook stores a new record and tracks insertion order.
func (m *MemoryStore) InsertBook(ctx context.Context, draft domain.BookDraft) (domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return domain.Book{}, wrapPersistence("insert book", err)
	}
	book, err := newBook(draft, m.now())
	if err != nil {
		return domain.Book{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.books[book.ID] = book
	m.orders = append(m.orders, book.ID)
	return copyBook(book), nil
}

// GetBook retrieves a book by ID.
func (m *MemoryStore) GetBook(ctx context.Context, id string) (domain.Book, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Book{}, false, wrapPersistence("get book", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.books[id]
	return copyBook(b), ok, nil
}

// ListBooks returns books in insertion order.
func (m *MemoryStore) ListBooks(ctx context.Context) ([]domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrapPersistence("list books", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Book, 0, len(m.orders))
	for _, id := range m.orders {
		if b, ok := m.books[id]; ok {
			res = append(res, copyBook(b))
		}
	}
	return res, nil
}

// DeleteBook removes a book and reports whether it existed.
func (m *MemoryStore) DeleteBook(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, wrapPersistence("delete book", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[id]; !ok {
		return false, nil
	}
	delete(m.books, id)
	filtered := m.orders[:0]
	for _, item := range m.orders {
		if item != id {
			filtered = append(filtered, item)
		}
	}
	m.orders = filtered
	return true, nil
}

// CountBooks returns the number of stored books.
func (m *MemoryStore) CountBooks(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, wrapPersistence("count books", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.books), nil
}

func copyBook(b domain.Book) domain.Book {
	b.ImageURL = cloneString(b.ImageURL)
	return b
}
