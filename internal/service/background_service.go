package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/samber/lo"

	"github.com/jmylchreest/tabcanvas/internal/background"
	"github.com/jmylchreest/tabcanvas/internal/models"
	"github.com/jmylchreest/tabcanvas/internal/repository"
)

// StyleResult is a resolved style plus a text contrast hint for the page.
type StyleResult struct {
	Style     models.ResolvedStyle `json:"style"`
	TextTheme string               `json:"textTheme"`
}

// BackgroundService reads and writes per-profile background settings.
type BackgroundService struct {
	profiles repository.ProfileSettingsRepository
	images   repository.LocalImageRepository
	logger   *slog.Logger

	// mu serialises read-modify-write cycles started through Update.
	mu sync.Mutex
}

// NewBackgroundService creates a new background service.
func NewBackgroundService(profiles repository.ProfileSettingsRepository, images repository.LocalImageRepository) *BackgroundService {
	return &BackgroundService{
		profiles: profiles,
		images:   images,
		logger:   slog.Default(),
	}
}

// WithLogger sets the logger for the service.
func (s *BackgroundService) WithLogger(logger *slog.Logger) *BackgroundService {
	s.logger = logger
	return s
}

// GetSettings returns a profile's settings with its local images attached.
// Profiles that were never saved get the default settings.
func (s *BackgroundService) GetSettings(ctx context.Context, profile string) (models.BackgroundSettings, error) {
	if err := models.ValidateProfileName(profile); err != nil {
		return models.BackgroundSettings{}, err
	}
	return s.load(ctx, profile)
}

// SaveSettings validates and normalises settings, then stores them. Local
// images in the input are ignored; they are managed through uploads.
func (s *BackgroundService) SaveSettings(ctx context.Context, profile string, settings models.BackgroundSettings) (models.BackgroundSettings, error) {
	if err := models.ValidateProfileName(profile); err != nil {
		return models.BackgroundSettings{}, err
	}
	if err := ValidateSettings(settings); err != nil {
		return models.BackgroundSettings{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := settings.Clone()
	if err := s.attachLocalImages(ctx, profile, &next); err != nil {
		return models.BackgroundSettings{}, err
	}
	return s.store(ctx, profile, next)
}

// Update loads a profile's settings, applies fn and stores the result.
// fn sees the hydrated settings and may return an error to abort.
func (s *BackgroundService) Update(ctx context.Context, profile string, fn func(*models.BackgroundSettings) error) (models.BackgroundSettings, error) {
	if err := models.ValidateProfileName(profile); err != nil {
		return models.BackgroundSettings{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx, profile)
	if err != nil {
		return models.BackgroundSettings{}, err
	}
	if err := fn(&current); err != nil {
		return models.BackgroundSettings{}, err
	}
	return s.store(ctx, profile, current)
}

// ResolveStyle resolves the stored settings of a profile into render-ready style.
func (s *BackgroundService) ResolveStyle(ctx context.Context, profile string) (*StyleResult, error) {
	settings, err := s.GetSettings(ctx, profile)
	if err != nil {
		return nil, err
	}
	return ResolveSettings(settings), nil
}

// ListProfiles returns the names of every stored profile.
func (s *BackgroundService) ListProfiles(ctx context.Context) ([]string, error) {
	rows, err := s.profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	return lo.Map(rows, func(p *models.ProfileSettings, _ int) string { return p.Name }), nil
}

// ResolveSettings resolves settings that are not stored anywhere.
func ResolveSettings(settings models.BackgroundSettings) *StyleResult {
	return &StyleResult{
		Style:     background.Resolve(settings),
		TextTheme: background.TextTheme(settings),
	}
}

// ValidateSettings rejects colour values a browser would not accept. Empty
// colours are allowed: the resolver skips stops without a colour.
func ValidateSettings(settings models.BackgroundSettings) error {
	if settings.Color != "" && !background.IsColor(settings.Color) {
		return models.ValidationError{Field: "color", Message: fmt.Sprintf("%q is not a valid colour", settings.Color)}
	}
	for i, stop := range settings.Gradient.Colors {
		if stop.Color != "" && !background.IsColor(stop.Color) {
			return models.ValidationError{
				Field:   fmt.Sprintf("gradient.colors[%d].color", i),
				Message: fmt.Sprintf("%q is not a valid colour", stop.Color),
			}
		}
	}
	if c := settings.Display.OverlayColor; c != "" && !background.IsColor(c) {
		return models.ValidationError{Field: "display.overlayColor", Message: fmt.Sprintf("%q is not a valid colour", c)}
	}
	return nil
}

func (s *BackgroundService) load(ctx context.Context, profile string) (models.BackgroundSettings, error) {
	row, err := s.profiles.GetByName(ctx, profile)
	if err != nil {
		return models.BackgroundSettings{}, fmt.Errorf("loading profile %s: %w", profile, err)
	}

	settings := models.DefaultBackgroundSettings()
	if row != nil {
		settings = row.Settings.Clone()
	}
	if err := s.attachLocalImages(ctx, profile, &settings); err != nil {
		return models.BackgroundSettings{}, err
	}
	return settings, nil
}

func (s *BackgroundService) attachLocalImages(ctx context.Context, profile string, settings *models.BackgroundSettings) error {
	records, err := s.images.ListByProfile(ctx, profile)
	if err != nil {
		return fmt.Errorf("listing local images for %s: %w", profile, err)
	}
	settings.LocalImages = lo.Map(records, func(r *models.LocalImageRecord, _ int) models.LocalImage {
		return r.ToLocalImage()
	})
	return nil
}

func (s *BackgroundService) store(ctx context.Context, profile string, settings models.BackgroundSettings) (models.BackgroundSettings, error) {
	settings.Color = background.NormalizeHex(settings.Color)
	settings.Display.OverlayColor = background.NormalizeHex(settings.Display.OverlayColor)
	for i := range settings.Gradient.Colors {
		settings.Gradient.Colors[i].Color = background.NormalizeHex(settings.Gradient.Colors[i].Color)
	}
	settings.Normalize()

	row := &models.ProfileSettings{Name: profile, Settings: settings}
	if err := s.profiles.Upsert(ctx, row); err != nil {
		return models.BackgroundSettings{}, fmt.Errorf("saving profile %s: %w", profile, err)
	}

	s.logger.DebugContext(ctx, "background settings saved",
		slog.String("profile", profile),
		slog.String("type", string(settings.Type)),
	)
	return settings, nil
}
