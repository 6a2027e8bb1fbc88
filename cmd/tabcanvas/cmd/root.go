// Package cmd implements the CLI commands for tabcanvas.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/tabcanvas/internal/config"
	"github.com/jmylchreest/tabcanvas/internal/observability"
	"github.com/jmylchreest/tabcanvas/internal/version"
)

// cfgFile holds the config file path from CLI flag.
var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:     "tabcanvas",
	Short:   "New tab background settings and wallpaper service",
	Version: version.Short(),
	Long: `tabcanvas stores per-profile new tab background settings, resolves them
into presentation styles and rotates wallpapers from remote image providers.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("executing root command: %w", err)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "json", "log format (text, json)")
}

// loadConfig reads configuration and applies the logging flags. Flags only
// override file and environment values when explicitly set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		level, _ := flags.GetString("log-level")
		cfg.Logging.Level = strings.ToLower(level)
	}
	if flags.Changed("log-format") {
		format, _ := flags.GetString("log-format")
		cfg.Logging.Format = strings.ToLower(format)
	}
	if cfg.Logging.Level == "warning" {
		cfg.Logging.Level = "warn"
	}
	return cfg, nil
}

// newLogger builds the process logger and installs it as the default.
func newLogger(cfg config.LoggingConfig) *slog.Logger {
	logger := observability.NewLoggerWithWriter(cfg, os.Stderr).
		With(slog.String("app", version.ApplicationName))
	observability.SetDefault(logger)
	return logger
}
