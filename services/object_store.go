package services

import (
	"context"
	"io"
)

// ObjectStore is the slice of the Spaces client the services need. Declared
// here so tests can substitute a fake store.
type ObjectStore interface {
	UploadFile(ctx context.Context, key string, data io.Reader, contentType string) (string, error)
	UploadBytes(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
