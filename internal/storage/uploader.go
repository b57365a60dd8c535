// Package storage validates attachment uploads and moves them to object storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/TahjibNil75/trackIT/pkg/util/errorutil"
)

// DefaultMaxUploadBytes is the per-file size ceiling.
const DefaultMaxUploadBytes int64 = 10 * 1024 * 1024

// ObjectStore is the blob backend used by the uploader.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// allowedTypes maps accepted content types to the extension used for object keys.
var allowedTypes = map[string]string{
	"image/jpeg":         ".jpg",
	"image/png":          ".png",
	"application/pdf":    ".pdf",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	"application/vnd.ms-excel": ".xls",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": ".xlsx",
}

// File is an upload received from a client.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// StoredObject describes a file after it has been written.
type StoredObject struct {
	Key         string
	URL         string
	FileName    string
	ContentType string
	Size        int64
}

// Uploader validates files and writes them through an ObjectStore.
type Uploader struct {
	store    ObjectStore
	maxBytes int64
}

// NewUploader builds an uploader. A nil store makes every call fail with STORAGE_UNAVAILABLE.
func NewUploader(store ObjectStore, maxBytes int64) *Uploader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &Uploader{store: store, maxBytes: maxBytes}
}

// Validate checks size and content type without touching storage.
func (u *Uploader) Validate(file File) (string, error) {
	if file.Size > u.maxBytes {
		return "", apperrors.NewDomainError("FILE_TOO_LARGE",
			fmt.Sprintf("File %s exceeds the %d MB limit.", file.Name, u.maxBytes/(1024*1024)),
			http.StatusBadRequest,
			map[string]any{"file_name": file.Name, "size_bytes": file.Size})
	}
	contentType := normalizeContentType(file.ContentType)
	ext, ok := allowedTypes[contentType]
	if !ok {
		return "", apperrors.NewDomainError("UNSUPPORTED_FILE_TYPE",
			fmt.Sprintf("File type %s is not allowed.", file.ContentType),
			http.StatusBadRequest,
			map[string]any{"file_name": file.Name, "content_type": file.ContentType})
	}
	return ext, nil
}

// Upload validates file and stores it under a fresh key.
func (u *Uploader) Upload(ctx context.Context, file File) (*StoredObject, error) {
	ext, err := u.Validate(file)
	if err != nil {
		return nil, err
	}
	if u.store == nil {
		return nil, apperrors.NewUnavailable("STORAGE_UNAVAILABLE", "Attachment storage is not configured.")
	}

	key := uuid.NewString() + ext
	contentType := normalizeContentType(file.ContentType)
	body := io.LimitReader(file.Body, u.maxBytes)
	if err := u.store.Put(ctx, key, contentType, body); err != nil {
		return nil, fmt.Errorf("upload %s: %w", file.Name, err)
	}

	return &StoredObject{
		Key:         key,
		URL:         u.store.URL(key),
		FileName:    path.Base(file.Name),
		ContentType: contentType,
		Size:        file.Size,
	}, nil
}

// Remove deletes a stored object.
func (u *Uploader) Remove(ctx context.Context, key string) error {
	if u.store == nil {
		return apperrors.NewUnavailable("STORAGE_UNAVAILABLE", "Attachment storage is not configured.")
	}
	return u.store.Delete(ctx, key)
}

func normalizeContentType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}
