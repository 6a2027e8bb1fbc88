package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmylchreest/tabcanvas/internal/config"
	"github.com/jmylchreest/tabcanvas/internal/database"
	"github.com/jmylchreest/tabcanvas/internal/models"
	"github.com/jmylchreest/tabcanvas/internal/observability"
	"github.com/jmylchreest/tabcanvas/internal/provider"
	"github.com/jmylchreest/tabcanvas/internal/provider/random"
	"github.com/jmylchreest/tabcanvas/internal/provider/unsplash"
	"github.com/jmylchreest/tabcanvas/internal/repository"
	"github.com/jmylchreest/tabcanvas/internal/service"
	"github.com/jmylchreest/tabcanvas/internal/storage"
	"github.com/jmylchreest/tabcanvas/internal/version"
	"github.com/jmylchreest/tabcanvas/pkg/httpclient"
)

// maxPreloadSize caps a single preloaded wallpaper.
const maxPreloadSize = 32 << 20

// app holds the wired service graph shared by the serve and wallpaper commands.
type app struct {
	cfg         *config.Config
	logger      *slog.Logger
	db          *database.DB
	clients     *httpclient.Registry
	cache       *storage.ImageCache
	registry    *provider.Registry
	backgrounds *service.BackgroundService
	localImages *service.LocalImageService
	wallpapers  *service.WallpaperService
}

// newApp opens the database, runs migrations and wires services.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	db, err := database.New(cfg.Database, observability.WithComponent(logger, "database"))
	if err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	cache, err := storage.NewImageCache(cfg.Storage.ImageCachePath())
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing image cache: %w", err)
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		db:      db,
		clients: httpclient.NewRegistry(),
		cache:   cache,
	}

	a.registry, err = a.newRegistry()
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	profiles := repository.NewProfileSettingsRepository(db.DB)
	images := repository.NewLocalImageRepository(db.DB)
	history := repository.NewWallpaperHistoryRepository(db.DB)

	a.backgrounds = service.NewBackgroundService(profiles, images).
		WithLogger(observability.WithComponent(logger, "background"))
	converter := service.NewImageConverter(cfg.Storage.MaxImageWidth, cfg.Storage.MaxImageHeight, cfg.Storage.JPEGQuality).
		WithMaxSourcePixels(cfg.Storage.MaxSourcePixels)
	a.localImages = service.NewLocalImageService(a.backgrounds, images, converter, cfg.Storage.MaxUploadSize.Bytes()).
		WithLogger(observability.WithComponent(logger, "local_images"))
	a.wallpapers = service.NewWallpaperService(a.registry, a.backgrounds, history, cfg.HistoryLimit).
		WithLogger(observability.WithComponent(logger, "wallpaper"))

	return a, nil
}

// httpClient returns the named provider client, registering it for health
// reporting.
func (a *app) httpClient(name string, timeout time.Duration, maxResponse int64) *httpclient.Client {
	hc := httpclient.DefaultConfig()
	hc.UserAgent = version.UserAgent()
	hc.Logger = observability.WithComponent(a.logger, "httpclient").With(slog.String("client", name))
	if timeout > 0 {
		hc.Timeout = timeout
	}
	if maxResponse > 0 {
		hc.MaxResponseSize = maxResponse
	}
	return a.clients.GetOrCreate(name, hc)
}

// newRegistry registers every configured provider. Unsplash needs an access
// key and the random API a base URL; unconfigured providers are skipped.
func (a *app) newRegistry() (*provider.Registry, error) {
	pc := a.cfg.Providers
	logger := observability.WithComponent(a.logger, "provider")

	registry := provider.NewRegistry().
		WithLogger(logger).
		WithCallTimeout(pc.CallTimeout).
		WithMaxConcurrency(pc.MaxConcurrency)

	preloader := provider.NewPreloader(a.httpClient("preloader", 0, maxPreloadSize), a.cache).
		WithLogger(logger)

	if pc.Unsplash.AccessKey != "" {
		client := a.httpClient("unsplash", pc.Unsplash.Timeout, 0)
		registry.Register(models.ImageSourceUnsplash, unsplash.New(client, pc.Unsplash.BaseURL, pc.Unsplash.AccessKey).
			WithPreloader(preloader).
			WithLogger(observability.WithSource(logger, string(models.ImageSourceUnsplash))))
	}
	if pc.Random.BaseURL != "" {
		client := a.httpClient("random", pc.Random.Timeout, 0)
		registry.Register(models.ImageSourceRandom, random.New(client, pc.Random.BaseURL, pc.Random.Theme).
			WithPreloader(preloader).
			WithLogger(observability.WithSource(logger, string(models.ImageSourceRandom))))
	}

	if len(registry.Sources()) == 0 {
		logger.Warn("no image providers configured; wallpaper endpoints will fail")
	}
	if pc.DefaultSource != "" {
		if err := registry.SetDefaultSource(models.ImageSource(pc.DefaultSource)); err != nil {
			return nil, fmt.Errorf("providers.default_source: %w", err)
		}
	}
	return registry, nil
}

// Close releases the database.
func (a *app) Close() error {
	return errors.Join(a.cache.Close(), a.db.Close())
}
