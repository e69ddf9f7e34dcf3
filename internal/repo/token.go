package repo

import (
	"context"

	"github.com/avelin/stitchmart/internal/models"
)

func (r *GormRepo) SaveUserRefresh(ctx context.Context, tokenHash, jti string, userID uint, expiresAt int64) error {
	row := models.RefreshToken{
		TokenHash: tokenHash,
		JTI:       jti,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
	return r.DB.WithContext(ctx).Create(&row).Error
}

func (r *GormRepo) FindUserRefresh(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	var row models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *GormRepo) RevokeUserRefresh(ctx context.Context, tokenHash string) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ?", tokenHash).
		Update("revoked", true).Error
}

func (r *GormRepo) SaveAdminRefresh(ctx context.Context, tokenHash, jti string, adminID uint, expiresAt int64) error {
	row := models.AdminRefreshToken{
		TokenHash: tokenHash,
		JTI:       jti,
		AdminID:   adminID,
		ExpiresAt: expiresAt,
	}
	return r.DB.WithContext(ctx).Create(&row).Error
}

func (r *GormRepo) FindAdminRefresh(ctx context.Context, tokenHash string) (*models.AdminRefreshToken, error) {
	var row models.AdminRefreshToken
	if err := r.DB.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *GormRepo) RevokeAdminRefresh(ctx context.Context, tokenHash string) error {
	return r.DB.WithContext(ctx).Model(&models.AdminRefreshToken{}).
		Where("token_hash = ?", tokenHash).
		Update("revoked", true).Error
}
