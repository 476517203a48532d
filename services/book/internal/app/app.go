package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"fiftytwobooks/internal/util"
	"fiftytwobooks/pkg/domain"
	"fiftytwobooks/pkg/storage"
	"fiftytwobooks/pkg/store"
)

// Uploader writes cover images to object storage.
type Uploader interface {
	Upload(ctx context.Context, payload io.Reader, originalName string) (storage.Object, error)
	Remove(ctx context.Context, key string) error
}

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL string
	Store       store.Store

	Minio      storage.MinioConfig
	ScratchDir string
	Uploader   Uploader

	// CompensateFailedInserts removes an uploaded cover when the record
	// insert that should reference it fails.
	CompensateFailedInserts bool
}

// App is the core application service wiring together storage and domain logic.
type App struct {
	store      store.Store
	uploader   Uploader
	compensate bool
}

// CreateBookInput is the raw create request.
type CreateBookInput struct {
	Title      string
	Author     string
	Status     string
	Attachment *domain.Attachment
}

// New constructs the application with database-backed records and MinIO-backed covers.
func New(cfg Config) (*App, error) {
	dataStore := cfg.Store
	if dataStore == nil {
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return nil, fmt.Errorf("database URL required")
		}
		gormStore, err := store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
		dataStore = gormStore
	}
	uploader := cfg.Uploader
	if uploader == nil {
		objStore, err := storage.NewMinioStore(cfg.Minio)
		if err != nil {
			return nil, fmt.Errorf("init object store: %w", err)
		}
		uploader = storage.NewImageUploader(objStore, cfg.ScratchDir)
	}
	return &App{
		store:      dataStore,
		uploader:   uploader,
		compensate: cfg.CompensateFailedInserts,
	}, nil
}

// CreateBook validates the request, uploads the optional cover and stores the record.
// The upload always completes before the insert starts.
func (a *App) CreateBook(ctx context.Context, in CreateBookInput) (domain.Book, error) {
	status, ok := domain.ParseBookStatus(in.Status)
	if !ok {
		return domain.Book{}, fmt.Errorf("%w: %q", ErrInvalidStatus, in.Status)
	}
	title := strings.TrimSpace(in.Title)
	author := strings.TrimSpace(in.Author)
	if title == "" {
		return domain.Book{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if author == "" {
		return domain.Book{}, fmt.Errorf("%w: author is required", ErrInvalidInput)
	}

	logger := util.LoggerFromContext(ctx)
	draft := domain.BookDraft{Title: title, Author: author, Status: status}
	var uploaded *storage.Object
	if !in.Attachment.Empty() {
		obj, err := a.uploader.Upload(ctx, in.Attachment.Content, in.Attachment.Filename)
		if err != nil {
			logger.Error("cover upload failed", "filename", in.Attachment.Filename, "err", err)
			return domain.Book{}, fmt.Errorf("upload cover: %w", err)
		}
		uploaded = &obj
		draft.ImageURL = &obj.URL
	}

	book, err := a.store.InsertBook(ctx, draft)
	if err != nil {
		logger.Error("insert book failed", "title", title, "err", err)
		if uploaded != nil {
			a.discardUpload(ctx, *uploaded)
		}
		return domain.Book{}, fmt.Errorf("save book: %w", err)
	}
	logger.Info("book created", "book_id", book.ID, "status", book.Status, "has_cover", uploaded != nil)
	return book, nil
}

func (a *App) discardUpload(ctx context.Context, obj storage.Object) {
	logger := util.LoggerFromContext(ctx)
	if !a.compensate {
		logger.Warn("orphaned cover left in bucket", "key", obj.Key)
		return
	}
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := a.uploader.Remove(cleanupCtx, obj.Key); err != nil {
		logger.Warn("remove orphaned cover failed", "key", obj.Key, "err", err)
		return
	}
	logger.Info("removed orphaned cover", "key", obj.Key)
}

// ListBooks returns every stored book.
func (a *App) ListBooks(ctx context.Context) ([]domain.Book, error) {
	return a.store.ListBooks(ctx)
}

// GetBook retrieves a book by ID.
func (a *App) GetBook(ctx context.Context, id string) (domain.Book, bool, error) {
	return a.store.GetBook(ctx, id)
}

// DeleteBook removes a book record and reports whether it existed.
// Callers check existence with GetBook first; the result covers a concurrent delete.
func (a *App) DeleteBook(ctx context.Context, id string) (bool, error) {
	return a.store.DeleteBook(ctx, id)
}
