// Package storage keeps downloaded wallpaper images on disk. Every file
// operation goes through a Sandbox rooted at the configured directory.
package storage

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

const (
	dirPerm  = 0o750
	filePerm = 0o640
)

// Sandbox confines file operations to one directory. Paths are slash
// separated and relative to the root; any path that would leave the root,
// including through a symlink, is rejected by the underlying os.Root.
type Sandbox struct {
	root    *os.Root
	baseDir string
}

// NewSandbox opens a Sandbox at baseDir, creating the directory if needed.
func NewSandbox(baseDir string) (*Sandbox, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path: %w", err)
	}
	if err := os.MkdirAll(abs, dirPerm); err != nil {
		return nil, fmt.Errorf("creating base directory: %w", err)
	}
	root, err := os.OpenRoot(abs)
	if err != nil {
		return nil, fmt.Errorf("opening sandbox root: %w", err)
	}
	return &Sandbox{root: root, baseDir: abs}, nil
}

// BaseDir returns the absolute path of the sandbox root.
func (s *Sandbox) BaseDir() string {
	return s.baseDir
}

// Close releases the root directory handle.
func (s *Sandbox) Close() error {
	return s.root.Close()
}

// MkdirAll creates name and any missing parents.
func (s *Sandbox) MkdirAll(name string) error {
	if err := s.root.MkdirAll(name, dirPerm); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return nil
}

func (s *Sandbox) ReadFile(name string) ([]byte, error) {
	data, err := s.root.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}

// Open opens name for reading.
func (s *Sandbox) Open(name string) (*os.File, error) {
	f, err := s.root.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	return f, nil
}

// Remove deletes a file. A missing file is reported as os.ErrNotExist.
func (s *Sandbox) Remove(name string) error {
	if err := s.root.Remove(name); err != nil {
		return fmt.Errorf("removing file: %w", err)
	}
	return nil
}

// AtomicWrite writes data to a hidden temp file beside name and renames it
// into place, so readers see either the old content or the new.
func (s *Sandbox) AtomicWrite(name string, data []byte) error {
	dir := path.Dir(name)
	if err := s.root.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}

	tmp := path.Join(dir, fmt.Sprintf(".%s.%s.tmp", path.Base(name), rand.Text()[:8]))
	if err := s.root.WriteFile(tmp, data, filePerm); err != nil {
		return fmt.Errorf("writing temporary file: %w", err)
	}
	if err := s.root.Rename(tmp, name); err != nil {
		_ = s.root.Remove(tmp)
		return fmt.Errorf("renaming to target: %w", err)
	}
	return nil
}

// WalkFiles calls fn with the slash-separated path of every regular file
// under dir. Unreadable entries are skipped.
func (s *Sandbox) WalkFiles(dir string, fn func(name string) error) error {
	err := fs.WalkDir(s.root.FS(), dir, func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && name != dir {
				return fs.SkipDir
			}
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return fn(name)
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
