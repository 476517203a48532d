package domain

import (
	"io"
	"strings"
	"time"
)

// BookStatus is the reading status of a book in the challenge.
type BookStatus string

const (
	StatusToRead    BookStatus = "TO_READ"
	StatusReading   BookStatus = "READING"
	StatusCompleted BookStatus = "COMPLETED"
)

// BookStatuses lists every valid status in declaration order.
var BookStatuses = []BookStatus{StatusToRead, StatusReading, StatusCompleted}

// ParseBookStatus maps a status name to a BookStatus.
// Names are matched exactly; surrounding whitespace is ignored.
func ParseBookStatus(raw string) (BookStatus, bool) {
	name := strings.TrimSpace(raw)
	for _, status := range BookStatuses {
		if string(status) == name {
			return status, true
		}
	}
	return "", false
}

// Valid reports whether s is a member of the status enumeration.
func (s BookStatus) Valid() bool {
	for _, status := range BookStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type Book struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Author    string     `json:"author"`
	Status    BookStatus `json:"status"`
	ImageURL  *string    `json:"imageUrl"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// BookDraft carries the caller-supplied fields of a book before it is stored.
type BookDraft struct {
	Title    string
	Author   string
	Status   BookStatus
	ImageURL *string
}

// Attachment is an optional cover image submitted with a create request.
type Attachment struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// Empty reports whether the attachment carries no payload.
func (a *Attachment) Empty() bool {
	return a == nil || a.Content == nil || a.Size <= 0
}
