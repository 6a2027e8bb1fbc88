package storage

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *ImageCache {
	t.Helper()
	c, err := NewImageCache(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestImageID_NormalisesURL(t *testing.T) {
	a := ImageID("https://Images.Example.com:443/photo.jpg?w=10&q=80")
	b := ImageID("http://images.example.com/photo.jpg?q=80&w=10")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, ImageID("https://images.example.com/other.jpg"))
}

func TestCachedImage_Paths(t *testing.T) {
	meta := NewCachedImage("https://example.com/a.png")
	meta.ContentType = "image/png; charset=binary"

	assert.Contains(t, meta.RelativeImagePath(), meta.ID[:2])
	assert.Equal(t, ".png", meta.RelativeImagePath()[len(meta.RelativeImagePath())-4:])
	assert.Equal(t, ".jpg", extension("application/octet-stream"))
}

func TestImageCache_StoreLookupOpen(t *testing.T) {
	c := newTestCache(t)
	meta := NewCachedImage("https://example.com/wall.jpg")
	meta.ContentType = "image/jpeg"
	meta.Width, meta.Height = 1920, 1080

	require.NoError(t, c.Store(meta, []byte("jpeg-bytes")))

	got, err := c.LookupURL("https://example.com/wall.jpg")
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.FileSize)
	assert.Equal(t, 1920, got.Width)

	f, openedMeta, err := c.Open(meta.ID)
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
	assert.Equal(t, meta.ID, openedMeta.ID)
}

func TestImageCache_LookupMissing(t *testing.T) {
	c := newTestCache(t)

	_, err := c.Lookup(ImageID("https://example.com/none.jpg"))
	assert.ErrorIs(t, err, ErrNotCached)

	_, err = c.Lookup("../../etc/passwd")
	assert.ErrorIs(t, err, ErrNotCached)
}

func TestImageCache_Prune(t *testing.T) {
	c := newTestCache(t)
	now := time.Now()
	c.now = func() time.Time { return now }

	old := NewCachedImage("https://example.com/old.jpg")
	old.LastUsedAt = now.Add(-48 * time.Hour)
	require.NoError(t, c.Store(old, []byte("old")))

	fresh := NewCachedImage("https://example.com/fresh.jpg")
	require.NoError(t, c.Store(fresh, []byte("fresh")))
	require.NoError(t, c.Touch(fresh))

	removed, err := c.Prune(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = c.Lookup(old.ID)
	assert.ErrorIs(t, err, ErrNotCached)
	_, err = c.Lookup(fresh.ID)
	assert.NoError(t, err)
}
