// Package startup provides utilities for application startup tasks.
package startup

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TempFileSuffix marks files written by an interrupted atomic write.
const TempFileSuffix = ".tmp"

// DefaultCleanupAge is the default minimum age of a temp file before it is
// treated as orphaned.
const DefaultCleanupAge = 1 * time.Hour

// CleanupStaleTempFiles walks baseDir and removes hidden "*.tmp" files older
// than maxAge. These are left behind when the process dies between writing a
// temp file and renaming it into place.
//
// Returns the number of files removed. A missing baseDir is not an error.
func CleanupStaleTempFiles(logger *slog.Logger, baseDir string, maxAge time.Duration) (int, error) {
	if _, err := os.Stat(baseDir); os.IsNotExist(err) {
		logger.Debug("base directory does not exist, skipping cleanup",
			slog.String("path", baseDir),
		)
		return 0, nil
	}

	cutoff := time.Now().Add(-maxAge)
	var removed int

	err := filepath.WalkDir(baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("failed to read path during cleanup",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !isTempFile(d.Name()) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().After(cutoff) {
			logger.Debug("preserving recent temp file",
				slog.String("path", path),
				slog.Duration("age", time.Since(info.ModTime()).Round(time.Second)),
			)
			return nil
		}

		if err := os.Remove(path); err != nil {
			logger.Warn("failed to remove orphaned temp file",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			return nil
		}
		logger.Info("removed orphaned temp file",
			slog.String("path", path),
			slog.Duration("age", time.Since(info.ModTime()).Round(time.Second)),
		)
		removed++
		return nil
	})
	if err != nil {
		return removed, err
	}
	return removed, nil
}

func isTempFile(name string) bool {
	return strings.HasPrefix(name, ".") && strings.HasSuffix(name, TempFileSuffix)
}
