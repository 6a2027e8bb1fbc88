package migrations

import (
	"gorm.io/gorm"

	"github.com/jmylchreest/tabcanvas/internal/models"
)

// AllMigrations returns all registered migrations in order.
//   - 001: profile_settings, local_images and wallpaper_history tables
//   - 002: default profile seeded with the default background
func AllMigrations() []Migration {
	return []Migration{
		migration001Schema(),
		migration002DefaultProfile(),
	}
}

// migration001Schema creates all database tables using GORM AutoMigrate.
func migration001Schema() Migration {
	return Migration{
		Version:     "001",
		Description: "Create profile, local image and wallpaper history tables",
		Up: func(tx *gorm.DB) error {
			return tx.AutoMigrate(
				&models.ProfileSettings{},
				&models.LocalImageRecord{},
				&models.WallpaperHistory{},
			)
		},
		Down: func(tx *gorm.DB) error {
			for _, table := range []string{"wallpaper_history", "local_images", "profile_settings"} {
				if tx.Migrator().HasTable(table) {
					if err := tx.Migrator().DropTable(table); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
}

// migration002DefaultProfile seeds the default profile so a fresh install
// resolves to the stock gradient.
func migration002DefaultProfile() Migration {
	return Migration{
		Version:     "002",
		Description: "Insert default profile",
		Up: func(tx *gorm.DB) error {
			var count int64
			if err := tx.Model(&models.ProfileSettings{}).
				Where("name = ?", models.DefaultProfile).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return nil
			}
			return tx.Create(&models.ProfileSettings{
				Name:     models.DefaultProfile,
				Settings: models.DefaultBackgroundSettings(),
			}).Error
		},
		Down: func(tx *gorm.DB) error {
			return tx.Unscoped().
				Where("name = ?", models.DefaultProfile).
				Delete(&models.ProfileSettings{}).Error
		},
	}
}
