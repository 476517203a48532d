package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrUploadFailed wraps every failure to stage or transmit an image.
var ErrUploadFailed = errors.New("upload failed")

const imageKeyPrefix = "images/"

// Object identifies an uploaded object.
type Object struct {
	Key string
	URL string
}

// ImageUploader stages cover images in a scratch file and writes them to an ObjectStore.
type ImageUploader struct {
	objects    ObjectStore
	scratchDir string
	newToken   func() string
}

// NewImageUploader returns an uploader staging payloads under scratchDir
// (the OS temp dir when empty).
func NewImageUploader(objects ObjectStore, scratchDir string) *ImageUploader {
	return &ImageUploader{
		objects:    objects,
		scratchDir: strings.TrimSpace(scratchDir),
		newToken:   uuid.NewString,
	}
}

// Upload stores payload under a fresh key derived from originalName and
// returns the key with its public URL. Errors wrap ErrUploadFailed and are not retried.
func (u *ImageUploader) Upload(ctx context.Context, payload io.Reader, originalName string) (Object, error) {
	key := BuildImageKey(u.newToken(), originalName)

	scratch, err := os.CreateTemp(u.scratchDir, "cover-*"+filepath.Ext(key))
	if err != nil {
		return Object{}, fmt.Errorf("%w: create scratch file: %v", ErrUploadFailed, err)
	}
	scratchPath := scratch.Name()
	defer os.Remove(scratchPath)

	if _, err := io.Copy(scratch, payload); err != nil {
		scratch.Close()
		return Object{}, fmt.Errorf("%w: stage payload: %v", ErrUploadFailed, err)
	}
	if err := scratch.Close(); err != nil {
		return Object{}, fmt.Errorf("%w: close scratch file: %v", ErrUploadFailed, err)
	}

	if err := u.objects.PutFile(ctx, key, scratchPath, contentTypeFor(key)); err != nil {
		return Object{}, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	return Object{Key: key, URL: u.objects.PublicURL(key)}, nil
}

// Remove deletes a previously uploaded object.
func (u *ImageUploader) Remove(ctx context.Context, key string) error {
	return u.objects.Delete(ctx, key)
}

// BuildImageKey returns images/<token>-<sanitized base name>.
func BuildImageKey(token, originalName string) string {
	name := sanitizeFilename(filepath.Base(strings.ReplaceAll(originalName, "\\", "/")))
	if name == "" || name == "." {
		name = "image"
	}
	return imageKeyPrefix + token + "-" + name
}

func contentTypeFor(key string) string {
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(key)))
	if contentType == "" {
		return "application/octet-stream"
	}
	return contentType
}

func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(name))
	lastUnderscore := false
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}
