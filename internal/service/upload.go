package service

import (
	"context"
	"fmt"

	"github.com/avelin/stitchmart/internal/models"
	"github.com/avelin/stitchmart/internal/repo"
)

var allowedUploadTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

const MaxUploadSize = 5 * 1024 * 1024

type UploadService struct {
	Repo    *repo.GormRepo
	BaseURL string
}

func (s *UploadService) ValidateUpload(mimeType string, size int64) error {
	if !allowedUploadTypes[mimeType] {
		return fmt.Errorf("%w: only image files are allowed", ErrValidation)
	}
	if size > MaxUploadSize {
		return fmt.Errorf("%w: file exceeds %d bytes", ErrValidation, MaxUploadSize)
	}
	return nil
}

// RecordUpload stores the metadata row after the handler has written the
// file to disk.
func (s *UploadService) RecordUpload(ctx context.Context, filename, mimeType string, size int64) (*models.UploadedFile, error) {
	file := models.UploadedFile{
		Filename: filename,
		URL:      fmt.Sprintf("%s/uploads/%s", s.BaseURL, filename),
		MimeType: mimeType,
		Size:     size,
	}
	if err := s.Repo.CreateUploadedFile(ctx, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

func (s *UploadService) ListUploads(ctx context.Context) ([]models.UploadedFile, error) {
	return s.Repo.ListUploadedFiles(ctx)
}
