// Package storage exposes read access to object storage for documents kept
// outside the database, such as scanned cheque images.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrMissingSigner indicates signed URL support is not configured.
	ErrMissingSigner = errors.New("storage: signed url signer not configured")
	// ErrInvalidExpiry is returned when a presign expiry is not positive.
	ErrInvalidExpiry = errors.New("storage: presign expiry must be positive")
)

// Storage defines the object storage operations used by the service.
type Storage interface {
	io.Closer

	// StatObject returns object metadata without reading its contents.
	StatObject(ctx context.Context, bucket, key string) (ObjectInfo, error)
	// PresignGet returns a signed URL for downloading.
	PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
}

// ObjectInfo describes object metadata.
type ObjectInfo struct {
	Bucket      string
	Key         string
	Size        int64
	ETag        string
	ContentType string
	UpdatedAt   time.Time
}
