package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/jmylchreest/tabcanvas/internal/models"
)

// wallpaperHistoryRepository implements WallpaperHistoryRepository using GORM.
type wallpaperHistoryRepository struct {
	db *gorm.DB
}

// NewWallpaperHistoryRepository creates a new WallpaperHistoryRepository.
func NewWallpaperHistoryRepository(db *gorm.DB) WallpaperHistoryRepository {
	return &wallpaperHistoryRepository{db: db}
}

// Create appends a history entry, stamping AppliedAt when unset.
func (r *wallpaperHistoryRepository) Create(ctx context.Context, entry *models.WallpaperHistory) error {
	if entry.AppliedAt.IsZero() {
		entry.AppliedAt = time.Now().UTC()
	}
	if entry.ImageID == "" {
		entry.ImageID = entry.Image.ID
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByProfile returns up to limit entries, newest first. A limit below 1
// returns every entry.
func (r *wallpaperHistoryRepository) ListByProfile(ctx context.Context, profile string, limit int) ([]*models.WallpaperHistory, error) {
	q := r.db.WithContext(ctx).
		Where("profile = ?", profile).
		Order("applied_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var entries []*models.WallpaperHistory
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Trim keeps the newest keep entries for profile.
func (r *wallpaperHistoryRepository) Trim(ctx context.Context, profile string, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}

	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []models.ULID
		if err := tx.Model(&models.WallpaperHistory{}).
			Where("profile = ?", profile).
			Order("applied_at DESC, id DESC").
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) <= keep {
			return nil
		}
		stale := ids[keep:]
		res := tx.Unscoped().Where("id IN ?", stale).Delete(&models.WallpaperHistory{})
		removed = res.RowsAffected
		return res.Error
	})
	return removed, err
}
