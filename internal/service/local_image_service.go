package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/tabcanvas/internal/models"
	"github.com/jmylchreest/tabcanvas/internal/repository"
)

const maxImageNameLength = 255

// LocalImageService manages images uploaded by the user.
type LocalImageService struct {
	backgrounds   *BackgroundService
	images        repository.LocalImageRepository
	converter     *ImageConverter
	maxUploadSize int64
	logger        *slog.Logger
}

// NewLocalImageService creates a new local image service. Uploads larger than
// maxUploadSize bytes are rejected before decoding.
func NewLocalImageService(
	backgrounds *BackgroundService,
	images repository.LocalImageRepository,
	converter *ImageConverter,
	maxUploadSize int64,
) *LocalImageService {
	return &LocalImageService{
		backgrounds:   backgrounds,
		images:        images,
		converter:     converter,
		maxUploadSize: maxUploadSize,
		logger:        slog.Default(),
	}
}

// WithLogger sets the logger for the service.
func (s *LocalImageService) WithLogger(logger *slog.Logger) *LocalImageService {
	s.logger = logger
	return s
}

// Upload validates, downscales and stores an image for profile.
func (s *LocalImageService) Upload(ctx context.Context, profile, name, contentType string, data []byte) (*models.LocalImageRecord, error) {
	if err := models.ValidateProfileName(profile); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, models.ValidationError{Field: "file", Message: "is empty"}
	}
	if s.maxUploadSize > 0 && int64(len(data)) > s.maxUploadSize {
		return nil, fmt.Errorf("%w: %s > %s", models.ErrImageTooLarge,
			humanize.IBytes(uint64(len(data))), humanize.IBytes(uint64(s.maxUploadSize)))
	}

	mimeType := SniffContentType(contentType, data)
	if !IsSupportedFormat(mimeType) {
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedImageType, mimeType)
	}

	converted, err := s.converter.Convert(data)
	if err != nil {
		return nil, err
	}

	record := &models.LocalImageRecord{
		Profile:  profile,
		Name:     imageName(name),
		Data:     converted.DataURI(),
		Size:     int64(len(converted.Data)),
		MimeType: converted.MimeType,
		Width:    converted.Width,
		Height:   converted.Height,
	}
	if err := s.images.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("storing local image: %w", err)
	}

	s.logger.InfoContext(ctx, "local image uploaded",
		slog.String("profile", profile),
		slog.String("id", record.ID.String()),
		slog.String("mime_type", record.MimeType),
		slog.String("size", humanize.IBytes(uint64(record.Size))),
		slog.Int("width", record.Width),
		slog.Int("height", record.Height),
	)
	return record, nil
}

// List returns a profile's uploaded images, oldest first.
func (s *LocalImageService) List(ctx context.Context, profile string) ([]*models.LocalImageRecord, error) {
	if err := models.ValidateProfileName(profile); err != nil {
		return nil, err
	}
	return s.images.ListByProfile(ctx, profile)
}

// Delete removes an image. If it was the profile's current local image the
// selection is cleared.
func (s *LocalImageService) Delete(ctx context.Context, profile, id string) error {
	if err := models.ValidateProfileName(profile); err != nil {
		return err
	}
	ulid, err := models.ParseULID(id)
	if err != nil {
		return models.ErrLocalImageNotFound
	}

	found, err := s.images.Delete(ctx, profile, ulid)
	if err != nil {
		return fmt.Errorf("deleting local image: %w", err)
	}
	if !found {
		return models.ErrLocalImageNotFound
	}

	current, err := s.backgrounds.GetSettings(ctx, profile)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	if current.CurrentLocalImage == id {
		_, err = s.backgrounds.Update(ctx, profile, func(settings *models.BackgroundSettings) error {
			if settings.CurrentLocalImage == id {
				settings.CurrentLocalImage = ""
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("clearing current local image: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "local image deleted",
		slog.String("profile", profile),
		slog.String("id", id),
	)
	return nil
}

// Select makes an uploaded image the profile's active background.
func (s *LocalImageService) Select(ctx context.Context, profile, id string) (models.BackgroundSettings, error) {
	if err := models.ValidateProfileName(profile); err != nil {
		return models.BackgroundSettings{}, err
	}
	ulid, err := models.ParseULID(id)
	if err != nil {
		return models.BackgroundSettings{}, models.ErrLocalImageNotFound
	}

	record, err := s.images.GetByID(ctx, profile, ulid)
	if err != nil {
		return models.BackgroundSettings{}, fmt.Errorf("getting local image: %w", err)
	}
	if record == nil {
		return models.BackgroundSettings{}, models.ErrLocalImageNotFound
	}

	return s.backgrounds.Update(ctx, profile, func(settings *models.BackgroundSettings) error {
		settings.Type = models.BackgroundTypeLocal
		settings.CurrentLocalImage = record.ID.String()
		return nil
	})
}

func imageName(name string) string {
	name = strings.TrimSpace(filepath.Base(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "image"
	}
	if len(name) > maxImageNameLength {
		cut := maxImageNameLength
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = name[:cut]
	}
	return name
}
