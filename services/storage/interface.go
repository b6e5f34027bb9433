package storage

import (
	"context"
	"io"
)

// StorageService defines the interface for screenshot storage operations.
type StorageService interface {
	// UploadFile stores the file under the given folder and returns its
	// public URL.
	UploadFile(ctx context.Context, file io.Reader, folder string) (string, error)
	// DeleteFile removes a previously uploaded file by its public ID.
	DeleteFile(ctx context.Context, publicID string) error
}
