package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"fiftytwobooks/pkg/domain"
)

const migrateLockID int64 = 52525252

type GormStoreOptions struct {
	Now      func() time.Time
	LogLevel gormlogger.LogLevel
}

type GormStoreOption func(*GormStoreOptions)

// WithClock overrides the time source used to stamp records.
func WithClock(now func() time.Time) GormStoreOption {
	return func(opts *GormStoreOptions) {
		opts.Now = now
	}
}

// WithLogLevel sets the GORM logger level (Warn by default).
func WithLogLevel(level gormlogger.LogLevel) GormStoreOption {
	return func(opts *GormStoreOptions) {
		opts.LogLevel = level
	}
}

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string, options ...GormStoreOption) (*GormStore, error) {
	db, opts, err := openPostgres(dsn, options...)
	if err != nil {
		return nil, err
	}
	return newGormStore(db, opts)
}

func openPostgres(dsn string, options ...GormStoreOption) (*gorm.DB, GormStoreOptions, error) {
	opts := resolveOptions(options)
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  opts.LogLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, opts, fmt.Errorf("open db: %w", err)
	}
	return db, opts, nil
}

func resolveOptions(options []GormStoreOption) GormStoreOptions {
	opts := GormStoreOptions{LogLevel: gormlogger.Warn}
	for _, option := range options {
		if option != nil {
			option(&opts)
		}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return opts
}

func newGormStore(db *gorm.DB, opts GormStoreOptions) (*GormStore, error) {
	if err := withMigrationLock(db, func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(&BookModel{}); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &GormStore{db: db, now: opts.Now}, nil
}

func withMigrationLock(db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(ctx, conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

// InsertBook stores a new book with a generated ID and fresh timestamps.
func (s *GormStore) InsertBook(ctx context.Context, draft domain.BookDraft) (domain.Book, error) {
	book, err := newBook(draft, s.now())
	if err != nil {
		return domain.Book{}, err
	}
	model := bookToModel(book)
	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		return domain.Book{}, wrapPersistence("insert book", err)
	}
	return book, nil
}

// GetBook retrieves a book.
func (s *GormStore) GetBook(ctx context.Context, id string) (domain.Book, bool, error) {
	if !validID(id) {
		return domain.Book{}, false, nil
	}
	var model BookModel
	if err := s.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Book{}, false, nil
		}
		return domain.Book{}, false, wrapPersistence("get book", err)
	}
	return bookFromModel(model), true, nil
}

// ListBooks returns all books ordered by created_at.
func (s *GormStore) ListBooks(ctx context.Context) ([]domain.Book, error) {
	var models []BookModel
	if err := s.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&models).Error; err != nil {
		return nil, wrapPersistence("list books", err)
	}
	res := make([]domain.Book, 0, len(models))
	for _, m := range models {
		res = append(res, bookFromModel(m))
	}
	return res, nil
}

// DeleteBook removes a book and reports whether a row was affected.
func (s *GormStore) DeleteBook(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	res := s.db.WithContext(ctx).Delete(&BookModel{}, "id = ?", id)
	if res.Error != nil {
		return false, wrapPersistence("delete book", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// CountBooks returns the number of stored books.
func (s *GormStore) CountBooks(ctx context.Context) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&BookModel{}).Count(&count).Error; err != nil {
		return 0, wrapPersistence("count books", err)
	}
	return int(count), nil
}

func bookToModel(b domain.Book) BookModel {
	return BookModel{
		ID:        b.ID,
		Title:     b.Title,
		Author:    b.Author,
		Status:    string(b.Status),
		ImageURL:  cloneString(b.ImageURL),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func bookFromModel(m BookModel) domain.Book {
	return domain.Book{
		ID:        m.ID,
		Title:     m.Title,
		Author:    m.Author,
		Status:    domain.BookStatus(m.Status),
		ImageURL:  cloneString(m.ImageURL),
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}
