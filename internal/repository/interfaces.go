// Package repository defines data access for tabcanvas profiles, local images
// and wallpaper history. Lookups that find nothing return (nil, nil).
package repository

import (
	"context"

	"github.com/jmylchreest/tabcanvas/internal/models"
)

// ProfileSettingsRepository persists per-profile background settings.
type ProfileSettingsRepository interface {
	// GetByName retrieves a profile by name, or nil if it does not exist.
	GetByName(ctx context.Context, name string) (*models.ProfileSettings, error)
	// Upsert creates the profile or replaces its settings.
	Upsert(ctx context.Context, profile *models.ProfileSettings) error
	// List returns all profiles ordered by name.
	List(ctx context.Context) ([]*models.ProfileSettings, error)
	// Delete hard-deletes a profile by name.
	Delete(ctx context.Context, name string) error
}

// LocalImageRepository persists uploaded images.
type LocalImageRepository interface {
	// Create stores a new image.
	Create(ctx context.Context, img *models.LocalImageRecord) error
	// GetByID retrieves an image owned by profile, or nil.
	GetByID(ctx context.Context, profile string, id models.ULID) (*models.LocalImageRecord, error)
	// ListByProfile returns a profile's images, oldest first.
	ListByProfile(ctx context.Context, profile string) ([]*models.LocalImageRecord, error)
	// Delete removes an image and reports whether it existed.
	Delete(ctx context.Context, profile string, id models.ULID) (bool, error)
}

// WallpaperHistoryRepository records remote images applied to profiles.
type WallpaperHistoryRepository interface {
	// Create appends a history entry.
	Create(ctx context.Context, entry *models.WallpaperHistory) error
	// ListByProfile returns up to limit entries, newest first.
	ListByProfile(ctx context.Context, profile string, limit int) ([]*models.WallpaperHistory, error)
	// Trim keeps the newest keep entries for profile and returns how many were removed.
	Trim(ctx context.Context, profile string, keep int) (int64, error)
}
