package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"regexp"
	"time"
)

// ErrNotCached indicates the requested image is not in the cache.
var ErrNotCached = errors.New("image not cached")

var idPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// ImageCache stores preloaded wallpaper images in a sharded directory tree:
//   - images/{shard}/{id}.{ext}  image bytes
//   - images/{shard}/{id}.json   CachedImage metadata
type ImageCache struct {
	sandbox *Sandbox
	now     func() time.Time
}

// NewImageCache creates an ImageCache rooted at baseDir.
func NewImageCache(baseDir string) (*ImageCache, error) {
	sandbox, err := NewSandbox(baseDir)
	if err != nil {
		return nil, fmt.Errorf("creating sandbox: %w", err)
	}
	if err := sandbox.MkdirAll(imagesDir); err != nil {
		_ = sandbox.Close()
		return nil, fmt.Errorf("creating images directory: %w", err)
	}
	return &ImageCache{sandbox: sandbox, now: time.Now}, nil
}

// BaseDir returns the absolute path to the cache base directory.
func (c *ImageCache) BaseDir() string {
	return c.sandbox.BaseDir()
}

// Close releases the cache directory handle.
func (c *ImageCache) Close() error {
	return c.sandbox.Close()
}

// Store writes the image and then its metadata. FileSize is filled in from data.
func (c *ImageCache) Store(meta *CachedImage, data []byte) error {
	meta.FileSize = int64(len(data))
	if err := c.sandbox.AtomicWrite(meta.RelativeImagePath(), data); err != nil {
		return fmt.Errorf("writing image: %w", err)
	}
	if err := c.writeMetadata(meta); err != nil {
		_ = c.sandbox.Remove(meta.RelativeImagePath())
		return err
	}
	return nil
}

// Lookup returns the metadata for id or ErrNotCached.
func (c *ImageCache) Lookup(id string) (*CachedImage, error) {
	if !idPattern.MatchString(id) {
		return nil, ErrNotCached
	}
	data, err := c.sandbox.ReadFile(metadataPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotCached
		}
		return nil, err
	}

	var meta CachedImage
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("unmarshaling metadata: %w", err)
	}
	return &meta, nil
}

// LookupURL returns the metadata for a previously stored URL.
func (c *ImageCache) LookupURL(rawURL string) (*CachedImage, error) {
	return c.Lookup(ImageID(rawURL))
}

// Open opens the cached image file for reading. The caller closes it.
func (c *ImageCache) Open(id string) (*os.File, *CachedImage, error) {
	meta, err := c.Lookup(id)
	if err != nil {
		return nil, nil, err
	}
	f, err := c.sandbox.Open(meta.RelativeImagePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, ErrNotCached
		}
		return nil, nil, err
	}
	return f, meta, nil
}

// Touch records that the image was used again.
func (c *ImageCache) Touch(meta *CachedImage) error {
	meta.LastUsedAt = c.now().UTC()
	return c.writeMetadata(meta)
}

// Delete removes an image and its metadata.
func (c *ImageCache) Delete(meta *CachedImage) error {
	if err := c.sandbox.Remove(meta.RelativeImagePath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting image: %w", err)
	}
	if err := c.sandbox.Remove(meta.RelativeMetadataPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting metadata: %w", err)
	}
	return nil
}

// Prune deletes images not used within maxAge and returns how many went.
func (c *ImageCache) Prune(maxAge time.Duration) (int, error) {
	cutoff := c.now().Add(-maxAge)

	var stale []*CachedImage
	err := c.sandbox.WalkFiles(imagesDir, func(name string) error {
		if path.Ext(name) != ".json" {
			return nil
		}
		data, err := c.sandbox.ReadFile(name)
		if err != nil {
			return nil
		}
		var meta CachedImage
		if err := json.Unmarshal(data, &meta); err != nil {
			return nil
		}
		if meta.LastUsedAt.Before(cutoff) {
			stale = append(stale, &meta)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("walking image cache: %w", err)
	}

	removed := 0
	for _, meta := range stale {
		if err := c.Delete(meta); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func (c *ImageCache) writeMetadata(meta *CachedImage) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	if err := c.sandbox.AtomicWrite(meta.RelativeMetadataPath(), data); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	return nil
}
