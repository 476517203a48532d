package util

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a random 32-char hex identifier used for request correlation.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
