package storage_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TahjibNil75/trackIT/internal/storage"
	"github.com/TahjibNil75/trackIT/internal/storage/storagetest"
	apperrors "github.com/TahjibNil75/trackIT/pkg/util/errorutil"
)

func TestUploadRejectsUnsupportedType(t *testing.T) {
	store := storagetest.NewMemoryStore()
	uploader := storage.NewUploader(store, 0)

	_, err := uploader.Upload(context.Background(), storage.File{
		Name:        "notes.txt",
		ContentType: "text/plain",
		Size:        12,
		Body:        strings.NewReader("hello world!"),
	})
	assert.True(t, apperrors.HasCode(err, "UNSUPPORTED_FILE_TYPE"))
	assert.Zero(t, store.Len())
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	store := storagetest.NewMemoryStore()
	uploader := storage.NewUploader(store, 0)

	size := int64(11 * 1024 * 1024)
	_, err := uploader.Upload(context.Background(), storage.File{
		Name:        "scan.pdf",
		ContentType: "application/pdf",
		Size:        size,
		Body:        bytes.NewReader(make([]byte, size)),
	})
	assert.True(t, apperrors.HasCode(err, "FILE_TOO_LARGE"))
	assert.Zero(t, store.Len())
}

func TestUploadStoresAllowedFile(t *testing.T) {
	store := storagetest.NewMemoryStore()
	uploader := storage.NewUploader(store, 0)

	size := int64(1024 * 1024)
	obj, err := uploader.Upload(context.Background(), storage.File{
		Name:        "invoice.pdf",
		ContentType: "application/pdf",
		Size:        size,
		Body:        bytes.NewReader(make([]byte, size)),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(obj.Key, ".pdf"))
	assert.Equal(t, store.URL(obj.Key), obj.URL)
	assert.Equal(t, "invoice.pdf", obj.FileName)
	assert.True(t, store.Has(obj.Key))

	require.NoError(t, uploader.Remove(context.Background(), obj.Key))
	assert.False(t, store.Has(obj.Key))
}

func TestUploadAcceptsContentTypeParameters(t *testing.T) {
	uploader := storage.NewUploader(storagetest.NewMemoryStore(), 0)

	ext, err := uploader.Validate(storage.File{Name: "a.png", ContentType: "image/png; charset=binary", Size: 1})
	require.NoError(t, err)
	assert.Equal(t, ".png", ext)
}

func TestUploadWithoutStore(t *testing.T) {
	uploader := storage.NewUploader(nil, 0)

	_, err := uploader.Upload(context.Background(), storage.File{
		Name:        "a.jpg",
		ContentType: "image/jpeg",
		Size:        3,
		Body:        strings.NewReader("abc"),
	})
	assert.True(t, apperrors.HasCode(err, "STORAGE_UNAVAILABLE"))
}
