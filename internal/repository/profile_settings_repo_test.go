package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/tabcanvas/internal/models"
)

func TestProfileSettingsRepo_GetByName_NotFound(t *testing.T) {
	repo := NewProfileSettingsRepository(setupTestDB(t))

	profile, err := repo.GetByName(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestProfileSettingsRepo_UpsertCreatesThenReplaces(t *testing.T) {
	repo := NewProfileSettingsRepository(setupTestDB(t))
	ctx := context.Background()

	settings := models.DefaultBackgroundSettings()
	settings.Type = models.BackgroundTypeColor
	settings.Color = "#112233"
	settings.LocalImages = []models.LocalImage{{ID: "x", Name: "inline.png"}}

	profile := &models.ProfileSettings{Name: "work", Settings: settings}
	require.NoError(t, repo.Upsert(ctx, profile))
	require.False(t, profile.ID.IsZero())
	firstID := profile.ID

	found, err := repo.GetByName(ctx, "work")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "#112233", found.Settings.Color)
	assert.Empty(t, found.Settings.LocalImages, "local images are stored in their own table")
	// The caller's value is left untouched.
	assert.Len(t, profile.Settings.LocalImages, 1)

	settings.Color = "#445566"
	again := &models.ProfileSettings{Name: "work", Settings: settings}
	require.NoError(t, repo.Upsert(ctx, again))
	assert.Equal(t, firstID, again.ID)

	found, err = repo.GetByName(ctx, "work")
	require.NoError(t, err)
	assert.Equal(t, "#445566", found.Settings.Color)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestProfileSettingsRepo_UpsertValidatesName(t *testing.T) {
	repo := NewProfileSettingsRepository(setupTestDB(t))

	err := repo.Upsert(context.Background(), &models.ProfileSettings{Name: "a/b"})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestProfileSettingsRepo_ListOrderedAndDelete(t *testing.T) {
	repo := NewProfileSettingsRepository(setupTestDB(t))
	ctx := context.Background()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, repo.Upsert(ctx, &models.ProfileSettings{
			Name:     name,
			Settings: models.DefaultBackgroundSettings(),
		}))
	}

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "alpha", all[0].Name)
	assert.Equal(t, "zeta", all[2].Name)

	require.NoError(t, repo.Delete(ctx, "mid"))
	found, err := repo.GetByName(ctx, "mid")
	require.NoError(t, err)
	assert.Nil(t, found)

	// The name is free again after a hard delete.
	require.NoError(t, repo.Upsert(ctx, &models.ProfileSettings{Name: "mid"}))
}
