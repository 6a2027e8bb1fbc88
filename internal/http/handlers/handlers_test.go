package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/tabcanvas/internal/config"
	"github.com/jmylchreest/tabcanvas/internal/database"
	"github.com/jmylchreest/tabcanvas/internal/http/handlers"
	"github.com/jmylchreest/tabcanvas/internal/models"
	"github.com/jmylchreest/tabcanvas/internal/provider"
	"github.com/jmylchreest/tabcanvas/internal/repository"
	"github.com/jmylchreest/tabcanvas/internal/service"
)

// fakeAdapter returns fixed images without network access.
type fakeAdapter struct {
	source models.ImageSource
	width  int
}

func (a *fakeAdapter) Source() models.ImageSource { return a.source }

func (a *fakeAdapter) image(i int) models.BackgroundImage {
	return models.BackgroundImage{
		ID:     fmt.Sprintf("%s-%d", a.source, i),
		URL:    fmt.Sprintf("https://img.example/%s/%d.jpg", a.source, i),
		Width:  a.width,
		Height: 1080,
		Source: a.source,
	}
}

func (a *fakeAdapter) RandomImage(context.Context, provider.Filters) (models.BackgroundImage, error) {
	return a.image(0), nil
}

func (a *fakeAdapter) RandomImages(_ context.Context, count int, _ provider.Filters) ([]models.BackgroundImage, error) {
	out := make([]models.BackgroundImage, count)
	for i := range out {
		out[i] = a.image(i)
	}
	return out, nil
}

func (a *fakeAdapter) SearchImages(context.Context, string, provider.Filters) ([]models.BackgroundImage, error) {
	return []models.BackgroundImage{a.image(0)}, nil
}

func (a *fakeAdapter) ImageURL(img models.BackgroundImage, _ provider.Quality) string { return img.URL }

func (a *fakeAdapter) PreloadImage(context.Context, string) bool { return true }

func (a *fakeAdapter) IsValidBackgroundImage(img models.BackgroundImage) bool {
	return img.Width >= 1920
}

func (a *fakeAdapter) RecommendedSettings(models.BackgroundImage) provider.RecommendedSettings {
	return provider.RecommendedSettings{FillMode: models.FillModeCover, Opacity: 100}
}

type testEnv struct {
	router      *chi.Mux
	db          *database.DB
	backgrounds *service.BackgroundService
	registry    *provider.Registry
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.New(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"}, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(context.Background()))

	profiles := repository.NewProfileSettingsRepository(db.DB)
	images := repository.NewLocalImageRepository(db.DB)
	history := repository.NewWallpaperHistoryRepository(db.DB)

	registry := provider.NewRegistry().WithShuffle(func([]models.BackgroundImage) {})
	registry.Register(models.ImageSourceUnsplash, &fakeAdapter{source: models.ImageSourceUnsplash, width: 2560})
	registry.Register(models.ImageSourceRandom, &fakeAdapter{source: models.ImageSourceRandom, width: 1920})

	backgrounds := service.NewBackgroundService(profiles, images).WithLogger(quietLogger())
	wallpapers := service.NewWallpaperService(registry, backgrounds, history, 10).WithLogger(quietLogger())
	localImages := service.NewLocalImageService(backgrounds, images, service.NewImageConverter(64, 64, 80), 1<<20).
		WithLogger(quietLogger())

	router := chi.NewRouter()
	api := humachi.New(router, huma.DefaultConfig("Test API", "1.0.0"))

	bg := handlers.NewBackgroundHandler(backgrounds)
	bg.Register(api)
	bg.RegisterChiRoutes(router)
	handlers.NewProviderHandler(wallpapers).Register(api)
	handlers.NewWallpaperHandler(wallpapers).Register(api)
	handlers.NewLocalImageHandler(localImages, 1<<20).Register(api)
	handlers.NewHealthHandler("1.2.3").WithDB(db).WithSources(registry).Register(api)

	return &testEnv{router: router, db: db, backgrounds: backgrounds, registry: registry}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out), rec.Body.String())
	return out
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
