package app

import (
	"errors"

	"fiftytwobooks/pkg/storage"
	"fiftytwobooks/pkg/store"
)

var (
	// ErrInvalidStatus indicates a status outside TO_READ, READING, COMPLETED.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrInvalidInput indicates a missing title or author.
	ErrInvalidInput = errors.New("invalid input")

	ErrUploadFailed = storage.ErrUploadFailed
	ErrPersistence  = store.ErrPersistence
)
