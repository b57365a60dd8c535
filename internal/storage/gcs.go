package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	gcs "cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/TahjibNil75/trackIT/internal/config"
)

// GCSStore keeps attachment objects in a Google Cloud Storage bucket.
type GCSStore struct {
	client  *gcs.Client
	bucket  *gcs.BucketHandle
	baseURL string
}

// NewGCSStore returns nil without error when no bucket is configured.
func NewGCSStore(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*GCSStore, error) {
	if cfg.Bucket == "" {
		logger.Warn("STORAGE_BUCKET not provided; attachment uploads disabled")
		return nil, nil
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	logger.Info("object storage configured", zap.String("bucket", cfg.Bucket))
	return &GCSStore{
		client:  client,
		bucket:  client.Bucket(cfg.Bucket),
		baseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// Put streams body into the object named key.
func (s *GCSStore) Put(ctx context.Context, key, contentType string, body io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	writer := s.bucket.Object(key).NewWriter(ctx)
	writer.ContentType = contentType
	return writeObject(writer, cancel, body)
}

// writeObject copies body into w. On a copy failure the writer's context is
// cancelled before Close so the upload is aborted instead of committed.
func writeObject(w io.WriteCloser, cancel context.CancelFunc, body io.Reader) error {
	if _, err := io.Copy(w, body); err != nil {
		cancel()
		_ = w.Close()
		return err
	}
	return w.Close()
}

// Delete removes the object. A missing object is not an error.
func (s *GCSStore) Delete(ctx context.Context, key string) error {
	err := s.bucket.Object(key).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil
	}
	return err
}

// URL returns the public address of key.
func (s *GCSStore) URL(key string) string {
	return s.baseURL + "/" + key
}

// Close releases the client.
func (s *GCSStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}
