// Package config provides configuration management for tabcanvas using Viper.
// It supports configuration from files, environment variables, and defaults.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	"github.com/jmylchreest/tabcanvas/internal/urlutil"
)

// Default configuration values.
const (
	defaultServerPort      = 8080
	defaultServerTimeout   = 30 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultIdleTimeout     = 2 * time.Minute
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 10
	defaultConnMaxIdleTime = 30 * time.Minute
	defaultMaxUploadSize   = "5MiB"
	defaultMaxImageWidth   = 3840
	defaultMaxImageHeight  = 2160
	defaultJPEGQuality     = 85
	defaultCacheMaxAge     = 30 * 24 * time.Hour
	defaultCallTimeout     = 10 * time.Second
	defaultMaxConcurrency  = 4
	defaultProviderTimeout = 15 * time.Second
	defaultRotationCron    = "0 6 * * *"
	defaultHistoryLimit    = 50
	defaultUnsplashBaseURL = "https://api.unsplash.com"
	defaultRandomTheme     = "nature"
	maxJPEGQuality         = 100
	defaultProfileName     = "default"
	defaultCachePruneCron  = "30 3 * * *"
)

// Config holds all configuration for the application.
type Config struct {
	Server       ServerConfig    `mapstructure:"server"`
	Database     DatabaseConfig  `mapstructure:"database"`
	Storage      StorageConfig   `mapstructure:"storage"`
	Logging      LoggingConfig   `mapstructure:"logging"`
	Providers    ProvidersConfig `mapstructure:"providers"`
	Rotation     RotationConfig  `mapstructure:"rotation"`
	HistoryLimit int             `mapstructure:"history_limit"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite, postgres, mysql
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	LogLevel        string        `mapstructure:"log_level"` // silent, error, warn, info
}

// StorageConfig holds file storage and local image limits.
type StorageConfig struct {
	BaseDir       string `mapstructure:"base_dir"`
	ImageCacheDir string `mapstructure:"image_cache_dir"`

	// MaxUploadSize accepts human readable sizes such as "5MiB" or "800kB".
	MaxUploadSize  ByteSize `mapstructure:"max_upload_size"`
	MaxImageWidth  int      `mapstructure:"max_image_width"`
	MaxImageHeight int      `mapstructure:"max_image_height"`
	JPEGQuality    int      `mapstructure:"jpeg_quality"`
	// MaxSourcePixels bounds width*height of uploads before decoding.
	// Zero derives it from the max image size.
	MaxSourcePixels int64         `mapstructure:"max_source_pixels"`
	CacheMaxAge     time.Duration `mapstructure:"cache_max_age"`
	CachePruneCron  string        `mapstructure:"cache_prune_cron"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // trace, debug, info, warn, error
	Format     string `mapstructure:"format"` // json, text
	AddSource  bool   `mapstructure:"add_source"`
	TimeFormat string `mapstructure:"time_format"`
}

// ProvidersConfig configures the image provider registry and its adapters.
type ProvidersConfig struct {
	// DefaultSource is the adapter used for single-source calls. Empty means
	// the first registered adapter.
	DefaultSource  string         `mapstructure:"default_source"`
	CallTimeout    time.Duration  `mapstructure:"call_timeout"`
	MaxConcurrency int            `mapstructure:"max_concurrency"`
	Unsplash       UnsplashConfig `mapstructure:"unsplash"`
	Random         RandomConfig   `mapstructure:"random"`
}

// UnsplashConfig configures the Unsplash adapter. It is only registered when
// AccessKey is set.
type UnsplashConfig struct {
	AccessKey string        `mapstructure:"access_key"`
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// RandomConfig configures the themed random wallpaper adapter. It is only
// registered when BaseURL is set.
type RandomConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Theme   string        `mapstructure:"theme"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RotationConfig drives the scheduled wallpaper rotation.
type RotationConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	Cron             string   `mapstructure:"cron"` // 5-field cron expression
	Profile          string   `mapstructure:"profile"`
	Sources          []string `mapstructure:"sources"`
	ApplyRecommended bool     `mapstructure:"apply_recommended"`
}

// Load reads configuration from file and environment variables.
// Environment variables take precedence over file configuration.
// Environment variables are prefixed with TABCANVAS_ and use underscores for nesting.
// Example: TABCANVAS_SERVER_PORT=8080.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/tabcanvas")
		v.AddConfigPath("$HOME/.tabcanvas")
	}

	v.SetEnvPrefix("TABCANVAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// SetDefaults configures default values for all configuration options.
func SetDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.read_timeout", defaultServerTimeout)
	v.SetDefault("server.write_timeout", defaultServerTimeout)
	v.SetDefault("server.idle_timeout", defaultIdleTimeout)
	v.SetDefault("server.shutdown_timeout", defaultShutdownTimeout)
	v.SetDefault("server.cors_origins", []string{"*"})

	// Database
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "tabcanvas.db")
	v.SetDefault("database.max_open_conns", defaultMaxOpenConns)
	v.SetDefault("database.max_idle_conns", defaultMaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", defaultConnMaxIdleTime)
	v.SetDefault("database.log_level", "warn")

	// Storage
	v.SetDefault("storage.base_dir", "./data")
	v.SetDefault("storage.image_cache_dir", "cache")
	v.SetDefault("storage.max_upload_size", defaultMaxUploadSize)
	v.SetDefault("storage.max_image_width", defaultMaxImageWidth)
	v.SetDefault("storage.max_image_height", defaultMaxImageHeight)
	v.SetDefault("storage.jpeg_quality", defaultJPEGQuality)
	v.SetDefault("storage.max_source_pixels", 0)
	v.SetDefault("storage.cache_max_age", defaultCacheMaxAge)
	v.SetDefault("storage.cache_prune_cron", defaultCachePruneCron)

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Providers
	v.SetDefault("providers.default_source", "")
	v.SetDefault("providers.call_timeout", defaultCallTimeout)
	v.SetDefault("providers.max_concurrency", defaultMaxConcurrency)
	v.SetDefault("providers.unsplash.access_key", "")
	v.SetDefault("providers.unsplash.base_url", defaultUnsplashBaseURL)
	v.SetDefault("providers.unsplash.timeout", defaultProviderTimeout)
	v.SetDefault("providers.random.base_url", "")
	v.SetDefault("providers.random.theme", defaultRandomTheme)
	v.SetDefault("providers.random.timeout", defaultProviderTimeout)

	// Rotation
	v.SetDefault("rotation.enabled", false)
	v.SetDefault("rotation.cron", defaultRotationCron)
	v.SetDefault("rotation.profile", defaultProfileName)
	v.SetDefault("rotation.sources", []string{})
	v.SetDefault("rotation.apply_recommended", true)

	v.SetDefault("history_limit", defaultHistoryLimit)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	const maxPort = 65535
	if c.Server.Port < 1 || c.Server.Port > maxPort {
		return fmt.Errorf("server.port must be between 1 and %d", maxPort)
	}

	validDrivers := map[string]bool{"sqlite": true, "postgres": true, "mysql": true}
	if !validDrivers[c.Database.Driver] {
		return fmt.Errorf("database.driver must be one of: sqlite, postgres, mysql")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}

	if c.Storage.BaseDir == "" {
		return fmt.Errorf("storage.base_dir is required")
	}
	if c.Storage.MaxUploadSize <= 0 {
		return fmt.Errorf("storage.max_upload_size must be positive")
	}
	if c.Storage.MaxImageWidth < 1 || c.Storage.MaxImageHeight < 1 {
		return fmt.Errorf("storage.max_image_width and storage.max_image_height must be at least 1")
	}
	if c.Storage.MaxSourcePixels < 0 {
		return fmt.Errorf("storage.max_source_pixels must not be negative")
	}
	if c.Storage.JPEGQuality < 1 || c.Storage.JPEGQuality > maxJPEGQuality {
		return fmt.Errorf("storage.jpeg_quality must be between 1 and %d", maxJPEGQuality)
	}
	if c.Storage.CachePruneCron != "" {
		if _, err := cron.ParseStandard(c.Storage.CachePruneCron); err != nil {
			return fmt.Errorf("storage.cache_prune_cron is invalid: %w", err)
		}
	}

	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: trace, debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	if c.Providers.MaxConcurrency < 1 {
		return fmt.Errorf("providers.max_concurrency must be at least 1")
	}
	if c.Providers.CallTimeout < 0 {
		return fmt.Errorf("providers.call_timeout must not be negative")
	}
	if u := c.Providers.Unsplash.BaseURL; u != "" {
		if err := urlutil.ValidateBaseURL(u); err != nil {
			return fmt.Errorf("providers.unsplash.base_url: %w", err)
		}
	}
	if u := c.Providers.Random.BaseURL; u != "" {
		if err := urlutil.ValidateBaseURL(u); err != nil {
			return fmt.Errorf("providers.random.base_url: %w", err)
		}
	}

	if c.Rotation.Enabled {
		if _, err := cron.ParseStandard(c.Rotation.Cron); err != nil {
			return fmt.Errorf("rotation.cron is invalid: %w", err)
		}
		if c.Rotation.Profile == "" {
			return fmt.Errorf("rotation.profile is required when rotation is enabled")
		}
	}

	if c.HistoryLimit < 1 {
		return fmt.Errorf("history_limit must be at least 1")
	}

	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ImageCachePath returns the directory holding cached remote images.
func (c *StorageConfig) ImageCachePath() string {
	if filepath.IsAbs(c.ImageCacheDir) {
		return c.ImageCacheDir
	}
	return filepath.Join(c.BaseDir, c.ImageCacheDir)
}
