package ports

import (
	"context"
	"io"
	"time"
)

// PutObjectInput carries an upload for the blob store.
type PutObjectInput struct {
	Key         string
	ContentType string
	Size        int64
	Body        io.Reader
}

// BlobStore stores qualification attachments.
type BlobStore interface {
	Put(ctx context.Context, in PutObjectInput) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error

	// PresignGet returns a time-limited download URL for the key.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}
