package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	internalhttp "github.com/jmylchreest/tabcanvas/internal/http"
	"github.com/jmylchreest/tabcanvas/internal/http/handlers"
	"github.com/jmylchreest/tabcanvas/internal/observability"
	"github.com/jmylchreest/tabcanvas/internal/scheduler"
	"github.com/jmylchreest/tabcanvas/internal/startup"
	"github.com/jmylchreest/tabcanvas/internal/version"
)

// jobTimeout bounds one scheduled run.
const jobTimeout = 2 * time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the tabcanvas server",
	Long: `Start the tabcanvas HTTP server and API.

The server provides:
- REST API for profile background settings, resolved styles and local images
- Wallpaper search, random and rotation endpoints backed by image providers
- Cached wallpaper images and scheduled rotation
- Health check endpoint
- OpenAPI documentation at /docs`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().Int("port", 8080, "Port to listen on")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host, _ = cmd.Flags().GetString("host")
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port, _ = cmd.Flags().GetInt("port")
	}
	logger := newLogger(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	cleanupLogger := observability.WithComponent(logger, "startup")
	if n, err := startup.CleanupStaleTempFiles(cleanupLogger, cfg.Storage.ImageCachePath(), startup.DefaultCleanupAge); err != nil {
		cleanupLogger.Warn("image cache temp cleanup failed", slog.String("error", err.Error()))
	} else if n > 0 {
		cleanupLogger.Info("image cache temp cleanup complete", slog.Int("removed", n))
	}

	jobs := scheduler.NewScheduler().
		WithLogger(observability.WithComponent(logger, "scheduler")).
		WithJobTimeout(jobTimeout)
	if err := scheduler.RegisterJobs(jobs, cfg, a.wallpapers, a.cache); err != nil {
		return fmt.Errorf("registering jobs: %w", err)
	}
	if err := jobs.Start(ctx); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer jobs.Stop()

	buildVersion := version.GetInfo().Version
	server := internalhttp.NewServer(internalhttp.ServerConfigFrom(cfg.Server), logger, buildVersion)
	api, router := server.API(), server.Router()

	handlers.NewHealthHandler(buildVersion).
		WithDB(a.db).
		WithClients(a.clients).
		WithSources(a.registry).
		WithJobs(jobs).
		Register(api)

	backgroundHandler := handlers.NewBackgroundHandler(a.backgrounds)
	backgroundHandler.Register(api)
	backgroundHandler.RegisterChiRoutes(router)

	handlers.NewLocalImageHandler(a.localImages, cfg.Storage.MaxUploadSize.Bytes()).Register(api)
	handlers.NewProviderHandler(a.wallpapers).Register(api)
	handlers.NewWallpaperHandler(a.wallpapers).Register(api)
	handlers.NewJobHandler(jobs).Register(api)
	handlers.NewCacheHandler(a.cache).RegisterChiRoutes(router)

	logger.Info("starting tabcanvas server",
		slog.String("address", cfg.Server.Address()),
		slog.String("version", buildVersion),
		slog.Any("providers", a.registry.Sources()),
		slog.Int("jobs", len(jobs.Jobs())),
	)

	return server.ListenAndServe(ctx)
}
