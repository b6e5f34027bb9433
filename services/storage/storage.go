package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStorageService implements StorageService using Cloudinary.
type CloudinaryStorageService struct {
	cld       *cloudinary.Cloudinary
	cloudName string
}

// NewCloudinaryStorageService creates a storage service from an initialized
// Cloudinary client.
func NewCloudinaryStorageService(cld *cloudinary.Cloudinary, cloudName string) *CloudinaryStorageService {
	return &CloudinaryStorageService{cld: cld, cloudName: cloudName}
}

// UploadFile uploads the file and returns its secure delivery URL.
func (s *CloudinaryStorageService) UploadFile(ctx context.Context, file io.Reader, folder string) (string, error) {
	resp, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{Folder: folder})
	if err != nil {
		return "", fmt.Errorf("storage: upload failed: %w", err)
	}
	return resp.SecureURL, nil
}

// DeleteFile removes an uploaded file by its public ID.
func (s *CloudinaryStorageService) DeleteFile(ctx context.Context, publicID string) error {
	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("storage: delete failed for %s: %w", publicID, err)
	}
	return nil
}
