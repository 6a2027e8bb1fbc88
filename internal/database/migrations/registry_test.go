package migrations

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jmylchreest/tabcanvas/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	return db
}

func newTestMigrator(t *testing.T) (*gorm.DB, *Migrator) {
	t.Helper()
	db := setupTestDB(t)
	m := NewMigrator(db, nil)
	m.RegisterAll(AllMigrations())
	return db, m
}

func TestAllMigrations_VersionsAreUniqueAndOrdered(t *testing.T) {
	migrations := AllMigrations()
	require.Len(t, migrations, 2)

	for i := 1; i < len(migrations); i++ {
		assert.Less(t, migrations[i-1].Version, migrations[i].Version)
	}
}

func TestMigrator_Up_CreatesTables(t *testing.T) {
	db, m := newTestMigrator(t)

	require.NoError(t, m.Up(context.Background()))

	assert.True(t, db.Migrator().HasTable("profile_settings"))
	assert.True(t, db.Migrator().HasTable("local_images"))
	assert.True(t, db.Migrator().HasTable("wallpaper_history"))
	assert.True(t, db.Migrator().HasTable("schema_migrations"))
}

func TestMigrator_Up_SeedsDefaultProfile(t *testing.T) {
	db, m := newTestMigrator(t)
	require.NoError(t, m.Up(context.Background()))

	var profile models.ProfileSettings
	require.NoError(t, db.Where("name = ?", models.DefaultProfile).First(&profile).Error)
	assert.Equal(t, models.BackgroundTypeGradient, profile.Settings.Type)
	assert.Len(t, profile.Settings.Gradient.Colors, 2)
}

func TestMigrator_Up_Idempotent(t *testing.T) {
	db, m := newTestMigrator(t)
	ctx := context.Background()

	require.NoError(t, m.Up(ctx))
	require.NoError(t, m.Up(ctx))

	var count int64
	require.NoError(t, db.Model(&models.ProfileSettings{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestMigrator_Status(t *testing.T) {
	_, m := newTestMigrator(t)
	ctx := context.Background()

	statuses, err := m.Status(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	for _, s := range statuses {
		assert.False(t, s.Applied)
		assert.Nil(t, s.AppliedAt)
	}

	require.NoError(t, m.Up(ctx))

	statuses, err = m.Status(ctx)
	require.NoError(t, err)
	for _, s := range statuses {
		assert.True(t, s.Applied)
		assert.NotNil(t, s.AppliedAt)
	}
}

func TestMigrator_Pending(t *testing.T) {
	_, m := newTestMigrator(t)
	ctx := context.Background()

	pending, err := m.Pending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	require.NoError(t, m.Up(ctx))

	pending, err = m.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestMigrator_Down_RollsBackInReverseOrder(t *testing.T) {
	db, m := newTestMigrator(t)
	ctx := context.Background()
	require.NoError(t, m.Up(ctx))

	// 002 removes the seeded profile but keeps the tables.
	require.NoError(t, m.Down(ctx))
	var count int64
	require.NoError(t, db.Unscoped().Model(&models.ProfileSettings{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.True(t, db.Migrator().HasTable("profile_settings"))

	// 001 drops the tables.
	require.NoError(t, m.Down(ctx))
	assert.False(t, db.Migrator().HasTable("profile_settings"))
	assert.False(t, db.Migrator().HasTable("wallpaper_history"))

	// Nothing left.
	require.NoError(t, m.Down(ctx))
}

func TestMigrations_CanInsertData(t *testing.T) {
	db, m := newTestMigrator(t)
	require.NoError(t, m.Up(context.Background()))

	img := &models.LocalImageRecord{
		Profile:  models.DefaultProfile,
		Name:     "beach.jpg",
		Data:     "data:image/jpeg;base64,AAAA",
		Size:     3,
		MimeType: "image/jpeg",
	}
	require.NoError(t, db.Create(img).Error)
	assert.False(t, img.ID.IsZero())

	entry := &models.WallpaperHistory{
		Profile: models.DefaultProfile,
		Source:  models.ImageSourceUnsplash,
		ImageID: "abc",
		Image:   models.BackgroundImage{ID: "abc", URL: "https://images.example/abc.jpg"},
	}
	require.NoError(t, db.Create(entry).Error)

	var loaded models.WallpaperHistory
	require.NoError(t, db.First(&loaded, "id = ?", entry.ID).Error)
	assert.Equal(t, "https://images.example/abc.jpg", loaded.Image.URL)
}

func TestMigrator_Up_RefusesNewerSchema(t *testing.T) {
	db, m := newTestMigrator(t)
	ctx := context.Background()
	require.NoError(t, m.Up(ctx))

	require.NoError(t, db.Create(&MigrationRecord{
		Version:     "999",
		Description: "from a newer release",
		AppliedAt:   time.Now().UTC(),
	}).Error)

	err := m.Up(ctx)
	require.ErrorIs(t, err, ErrSchemaAhead)
	assert.Contains(t, err.Error(), "999")

	statuses, err := m.Status(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 3)
	last := statuses[2]
	assert.Equal(t, "999", last.Version)
	assert.True(t, last.Applied)
	assert.True(t, last.Unknown)
	assert.Equal(t, "from a newer release", last.Description)
}
