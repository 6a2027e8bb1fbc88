package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/jmylchreest/tabcanvas/internal/models"
)

// profileSettingsRepository implements ProfileSettingsRepository using GORM.
type profileSettingsRepository struct {
	db *gorm.DB
}

// NewProfileSettingsRepository creates a new ProfileSettingsRepository.
func NewProfileSettingsRepository(db *gorm.DB) ProfileSettingsRepository {
	return &profileSettingsRepository{db: db}
}

// GetByName retrieves a profile by name.
func (r *profileSettingsRepository) GetByName(ctx context.Context, name string) (*models.ProfileSettings, error) {
	var profile models.ProfileSettings
	if err := r.db.WithContext(ctx).First(&profile, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if profile.Settings.LocalImages == nil {
		profile.Settings.LocalImages = []models.LocalImage{}
	}
	return &profile, nil
}

// Upsert creates the profile or replaces its settings. Local images live in
// their own table, so they are stripped from the stored JSON.
func (r *profileSettingsRepository) Upsert(ctx context.Context, profile *models.ProfileSettings) error {
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("validating profile: %w", err)
	}

	row := *profile
	row.Settings = profile.Settings.Clone()
	row.Settings.LocalImages = []models.LocalImage{}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.ProfileSettings
		err := tx.Unscoped().First(&existing, "name = ?", row.Name).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			row.ID = existing.ID
			row.CreatedAt = existing.CreatedAt
			row.DeletedAt = gorm.DeletedAt{}
			if err := tx.Unscoped().Save(&row).Error; err != nil {
				return err
			}
		}
		profile.BaseModel = row.BaseModel
		return nil
	})
}

// List returns all profiles ordered by name.
func (r *profileSettingsRepository) List(ctx context.Context) ([]*models.ProfileSettings, error) {
	var profiles []*models.ProfileSettings
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// Delete hard-deletes a profile so the name can be reused.
func (r *profileSettingsRepository) Delete(ctx context.Context, name string) error {
	return r.db.WithContext(ctx).Unscoped().Delete(&models.ProfileSettings{}, "name = ?", name).Error
}
