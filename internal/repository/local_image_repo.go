package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/jmylchreest/tabcanvas/internal/models"
)

// localImageRepository implements LocalImageRepository using GORM.
type localImageRepository struct {
	db *gorm.DB
}

// NewLocalImageRepository creates a new LocalImageRepository.
func NewLocalImageRepository(db *gorm.DB) LocalImageRepository {
	return &localImageRepository{db: db}
}

// Create stores a new image.
func (r *localImageRepository) Create(ctx context.Context, img *models.LocalImageRecord) error {
	if err := models.ValidateProfileName(img.Profile); err != nil {
		return fmt.Errorf("validating local image: %w", err)
	}
	return r.db.WithContext(ctx).Create(img).Error
}

// GetByID retrieves an image owned by profile.
func (r *localImageRepository) GetByID(ctx context.Context, profile string, id models.ULID) (*models.LocalImageRecord, error) {
	var img models.LocalImageRecord
	err := r.db.WithContext(ctx).
		First(&img, "id = ? AND profile = ?", id, profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &img, nil
}

// ListByProfile returns a profile's images, oldest first.
func (r *localImageRepository) ListByProfile(ctx context.Context, profile string) ([]*models.LocalImageRecord, error) {
	var images []*models.LocalImageRecord
	if err := r.db.WithContext(ctx).
		Where("profile = ?", profile).
		Order("created_at ASC, id ASC").
		Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

// Delete hard-deletes an image; image data is large and never restored.
func (r *localImageRepository) Delete(ctx context.Context, profile string, id models.ULID) (bool, error) {
	res := r.db.WithContext(ctx).Unscoped().
		Delete(&models.LocalImageRecord{}, "id = ? AND profile = ?", id, profile)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
