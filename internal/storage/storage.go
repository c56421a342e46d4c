package storage

import (
	"context"
	"io"
	"time"
)

// BlobStore is the binary storage collaborator for list item images.
type BlobStore interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, objectName string) error
	PresignedGetURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}
