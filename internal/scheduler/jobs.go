package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmylchreest/tabcanvas/internal/config"
	"github.com/jmylchreest/tabcanvas/internal/models"
	"github.com/jmylchreest/tabcanvas/internal/service"
)

// Job names registered by RegisterJobs.
const (
	JobRotateWallpaper = "rotate_wallpaper"
	JobPruneImageCache = "prune_image_cache"
)

// WallpaperRotator applies a new remote wallpaper to a profile.
type WallpaperRotator interface {
	Next(ctx context.Context, req service.NextRequest) (*service.NextResult, error)
}

// CachePruner removes cached images unused for longer than maxAge.
type CachePruner interface {
	Prune(maxAge time.Duration) (int, error)
}

// RotationJob returns a job that rotates the configured profile's wallpaper.
func RotationJob(rotator WallpaperRotator, cfg config.RotationConfig, logger *slog.Logger) JobFunc {
	sources := make([]models.ImageSource, 0, len(cfg.Sources))
	for _, s := range cfg.Sources {
		sources = append(sources, models.ImageSource(s))
	}

	return func(ctx context.Context) error {
		res, err := rotator.Next(ctx, service.NextRequest{
			Profile:          cfg.Profile,
			Sources:          sources,
			ApplyRecommended: cfg.ApplyRecommended,
		})
		if err != nil {
			return fmt.Errorf("rotating wallpaper for %s: %w", cfg.Profile, err)
		}
		logger.InfoContext(ctx, "wallpaper rotated",
			slog.String("profile", cfg.Profile),
			slog.String("source", string(res.Image.Source)),
			slog.String("image_id", res.Image.ID),
			slog.Int("attempts", res.Attempts),
		)
		return nil
	}
}

// PruneJob returns a job that evicts stale images from the remote image cache.
func PruneJob(pruner CachePruner, maxAge time.Duration, logger *slog.Logger) JobFunc {
	return func(ctx context.Context) error {
		removed, err := pruner.Prune(maxAge)
		if err != nil {
			return fmt.Errorf("pruning image cache: %w", err)
		}
		if removed > 0 {
			logger.InfoContext(ctx, "image cache pruned",
				slog.Int("removed", removed),
				slog.Duration("max_age", maxAge),
			)
		}
		return nil
	}
}

// RegisterJobs adds the configured background jobs to s. Rotation is only
// registered when enabled; pruning whenever a pruner and schedule exist.
func RegisterJobs(s *Scheduler, cfg *config.Config, rotator WallpaperRotator, pruner CachePruner) error {
	if cfg.Rotation.Enabled && rotator != nil {
		if err := s.Add(JobRotateWallpaper, cfg.Rotation.Cron, RotationJob(rotator, cfg.Rotation, s.logger)); err != nil {
			return err
		}
	}
	if pruner != nil && cfg.Storage.CachePruneCron != "" && cfg.Storage.CacheMaxAge > 0 {
		if err := s.Add(JobPruneImageCache, cfg.Storage.CachePruneCron, PruneJob(pruner, cfg.Storage.CacheMaxAge, s.logger)); err != nil {
			return err
		}
	}
	return nil
}
