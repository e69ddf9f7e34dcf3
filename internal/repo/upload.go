package repo

import (
	"context"

	"github.com/avelin/stitchmart/internal/models"
)

func (r *GormRepo) CreateUploadedFile(ctx context.Context, f *models.UploadedFile) error {
	return r.DB.WithContext(ctx).Create(f).Error
}

func (r *GormRepo) ListUploadedFiles(ctx context.Context) ([]models.UploadedFile, error) {
	var files []models.UploadedFile
	if err := r.DB.WithContext(ctx).
		Order("created_at DESC").
		Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}
