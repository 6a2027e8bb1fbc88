package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"github.com/jmylchreest/tabcanvas/internal/models"
	"github.com/jmylchreest/tabcanvas/internal/observability"
	"github.com/jmylchreest/tabcanvas/internal/provider"
	"github.com/jmylchreest/tabcanvas/internal/repository"
)

// MaxNextAttempts bounds how many images Next fetches looking for a usable one.
const MaxNextAttempts = 3

// DefaultHistoryLimit is used when no history limit is configured.
const DefaultHistoryLimit = 50

// NextRequest describes a wallpaper rotation.
type NextRequest struct {
	Profile string
	// Sources to pick from. Empty means the registry default.
	Sources          []models.ImageSource
	Filters          provider.Filters
	Quality          provider.Quality
	ApplyRecommended bool
}

// NextResult is the outcome of a successful rotation.
type NextResult struct {
	Image    models.BackgroundImage    `json:"image"`
	Settings models.BackgroundSettings `json:"settings"`
	Attempts int                       `json:"attempts"`
}

// WallpaperService fetches remote wallpapers and applies them to profiles.
type WallpaperService struct {
	registry     *provider.Registry
	backgrounds  *BackgroundService
	history      repository.WallpaperHistoryRepository
	historyLimit int
	pick         func([]models.ImageSource) models.ImageSource
	logger       *slog.Logger
}

// NewWallpaperService creates a new wallpaper service.
func NewWallpaperService(
	registry *provider.Registry,
	backgrounds *BackgroundService,
	history repository.WallpaperHistoryRepository,
	historyLimit int,
) *WallpaperService {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &WallpaperService{
		registry:     registry,
		backgrounds:  backgrounds,
		history:      history,
		historyLimit: historyLimit,
		pick:         lo.Sample[models.ImageSource],
		logger:       slog.Default(),
	}
}

// WithLogger sets the logger for the service.
func (s *WallpaperService) WithLogger(logger *slog.Logger) *WallpaperService {
	s.logger = logger
	return s
}

// Registry exposes the provider registry backing the service.
func (s *WallpaperService) Registry() *provider.Registry {
	return s.registry
}

// Random returns count images from source, or from the default source when
// source is empty.
func (s *WallpaperService) Random(ctx context.Context, source models.ImageSource, count int, filters provider.Filters) ([]models.BackgroundImage, error) {
	if source == "" {
		return s.registry.RandomImages(ctx, count, filters)
	}
	a, err := s.registry.Adapter(source)
	if err != nil {
		return nil, err
	}
	return a.RandomImages(ctx, count, filters)
}

// Search queries the default source, or every listed source when given.
func (s *WallpaperService) Search(ctx context.Context, query string, sources []models.ImageSource, filters provider.Filters) ([]models.BackgroundImage, error) {
	if len(sources) == 0 {
		return s.registry.SearchImages(ctx, query, filters)
	}
	return s.registry.SearchImagesFromMultipleSources(ctx, query, sources, filters)
}

// Mixed returns up to count shuffled images drawn from all listed sources.
func (s *WallpaperService) Mixed(ctx context.Context, count int, sources []models.ImageSource, filters provider.Filters) ([]models.BackgroundImage, error) {
	return s.registry.MixedRandomImages(ctx, count, sources, filters)
}

// Next fetches a random image, checks it is suitable, preloads it and makes
// it the profile's background. Unknown sources fail immediately; fetch,
// validity and preload failures are retried up to MaxNextAttempts times.
func (s *WallpaperService) Next(ctx context.Context, req NextRequest) (res *NextResult, err error) {
	if err := models.ValidateProfileName(req.Profile); err != nil {
		return nil, err
	}

	logger := observability.WithProfile(observability.WithOperation(s.logger, "wallpaper_next"), req.Profile)
	done := observability.TimedOperationWithError(ctx, logger, "wallpaper_next", &err)
	defer done()

	var lastErr error
	for attempt := 1; attempt <= MaxNextAttempts; attempt++ {
		source := s.registry.DefaultSource()
		if len(req.Sources) > 0 {
			source = s.pick(req.Sources)
		}
		adapter, err := s.registry.Adapter(source)
		if err != nil {
			return nil, err
		}

		img, ok, err := s.candidate(ctx, adapter, req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			observability.WithSource(logger, string(source)).WarnContext(ctx, "wallpaper candidate failed",
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()),
			)
			continue
		}
		if !ok {
			continue
		}

		settings, err := s.apply(ctx, req, adapter, img)
		if err != nil {
			return nil, err
		}
		return &NextResult{Image: img, Settings: settings, Attempts: attempt}, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrNoValidImage, lastErr)
	}
	return nil, models.ErrNoValidImage
}

// candidate fetches one image and reports whether it can be used.
func (s *WallpaperService) candidate(ctx context.Context, adapter provider.Adapter, req NextRequest) (models.BackgroundImage, bool, error) {
	img, err := adapter.RandomImage(ctx, req.Filters)
	if err != nil {
		return models.BackgroundImage{}, false, err
	}

	logger := observability.WithSource(s.logger, string(adapter.Source())).With(slog.String("image_id", img.ID))
	if !adapter.IsValidBackgroundImage(img) {
		logger.DebugContext(ctx, "image rejected as background",
			slog.Int("width", img.Width),
			slog.Int("height", img.Height),
		)
		return models.BackgroundImage{}, false, nil
	}

	quality := req.Quality
	if quality == "" {
		quality = provider.QualityLarge
	}
	if u := adapter.ImageURL(img, quality); u != "" {
		img.URL = u
	}
	if !adapter.PreloadImage(ctx, img.URL) {
		logger.WarnContext(ctx, "image preload failed", slog.String("url", img.URL))
		return models.BackgroundImage{}, false, nil
	}
	return img, true, nil
}

func (s *WallpaperService) apply(ctx context.Context, req NextRequest, adapter provider.Adapter, img models.BackgroundImage) (models.BackgroundSettings, error) {
	settings, err := s.backgrounds.Update(ctx, req.Profile, func(settings *models.BackgroundSettings) error {
		applied := img.Clone()
		settings.CurrentUnsplashImage = &applied
		settings.Type = models.BackgroundTypeUnsplash
		if req.ApplyRecommended {
			adapter.RecommendedSettings(img).Apply(&settings.Display)
		}
		return nil
	})
	if err != nil {
		return models.BackgroundSettings{}, fmt.Errorf("applying wallpaper: %w", err)
	}

	s.record(ctx, req.Profile, img)
	return settings, nil
}

// record appends to the profile history. Failures are logged only; the
// wallpaper has already been applied.
func (s *WallpaperService) record(ctx context.Context, profile string, img models.BackgroundImage) {
	entry := &models.WallpaperHistory{Profile: profile, Source: img.Source, Image: img}
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.WarnContext(ctx, "failed to record wallpaper history",
			slog.String("profile", profile),
			slog.String("error", err.Error()),
		)
		return
	}
	removed, err := s.history.Trim(ctx, profile, s.historyLimit)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to trim wallpaper history",
			slog.String("profile", profile),
			slog.String("error", err.Error()),
		)
		return
	}
	if removed > 0 {
		s.logger.DebugContext(ctx, "wallpaper history trimmed",
			slog.String("profile", profile),
			slog.Int64("removed", removed),
		)
	}
}

// History returns up to limit applied wallpapers for profile, newest first.
// A limit outside (0, historyLimit] is replaced by historyLimit.
func (s *WallpaperService) History(ctx context.Context, profile string, limit int) ([]*models.WallpaperHistory, error) {
	if err := models.ValidateProfileName(profile); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > s.historyLimit {
		limit = s.historyLimit
	}
	entries, err := s.history.ListByProfile(ctx, profile, limit)
	if err != nil {
		return nil, fmt.Errorf("listing wallpaper history: %w", err)
	}
	return entries, nil
}

// IsUnknownSource reports whether err names an unregistered image source.
func IsUnknownSource(err error) bool {
	return errors.Is(err, provider.ErrUnknownSource)
}
