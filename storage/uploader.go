package storage

import (
	"context"
	"io"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

// NewNoopUploader returns an uploader that silently discards everything.
// Used when object storage is not configured, so roster photos degrade to
// a no-op instead of blocking registration.
func NewNoopUploader() FileUploader {
	return noopUploader{}
}

type noopUploader struct{}

func (noopUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error) {
	return &UploadResult{Key: key}, nil
}

func (noopUploader) Delete(ctx context.Context, key string) error { return nil }

func (noopUploader) GetPublicURL(key string) string { return "" }
