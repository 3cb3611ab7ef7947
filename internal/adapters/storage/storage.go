// Package storage provides a thin S3-compatible object store used for
// generated lead exports.
package storage

import (
	"context"
	"io"
	"time"
)

// PresignedURL is a time-limited download link for a stored object.
type PresignedURL struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ObjectStore is the storage surface the exports module needs.
type ObjectStore interface {
	// UploadObject stores the reader's contents under the given key.
	UploadObject(ctx context.Context, bucket, key, contentType string, reader io.Reader, size int64) error

	// PresignDownload creates a time-limited download URL for an object.
	PresignDownload(ctx context.Context, bucket, key string) (*PresignedURL, error)

	// DeleteObject removes an object.
	DeleteObject(ctx context.Context, bucket, key string) error

	// EnsureBucket creates the bucket if it does not exist.
	EnsureBucket(ctx context.Context, bucket string) error
}

// Config is the configuration surface the MinIO client needs.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	IsStorageEnabled() bool
}
