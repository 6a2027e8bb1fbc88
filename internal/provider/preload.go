package provider

import (
	"bytes"
	"context"
	"image"
	"io"
	"log/slog"
	"net/http"
	"strings"

	// Decoders for DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/jmylchreest/tabcanvas/internal/models"
	"github.com/jmylchreest/tabcanvas/internal/storage"
	"github.com/jmylchreest/tabcanvas/internal/urlutil"
	"github.com/jmylchreest/tabcanvas/pkg/httpclient"
)

// Preloader downloads an image, checks that it decodes and keeps the bytes in
// the local image cache.
type Preloader struct {
	client *httpclient.Client
	cache  *storage.ImageCache
	logger *slog.Logger
}

// NewPreloader creates a preloader. cache may be nil, in which case images are
// only fetched and verified.
func NewPreloader(client *httpclient.Client, cache *storage.ImageCache) *Preloader {
	return &Preloader{
		client: client,
		cache:  cache,
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for the preloader.
func (p *Preloader) WithLogger(logger *slog.Logger) *Preloader {
	p.logger = logger
	return p
}

// Preload reports whether url could be fetched and decoded as an image.
func (p *Preloader) Preload(ctx context.Context, url string, source models.ImageSource) bool {
	if !urlutil.IsRemoteURL(url) {
		return false
	}

	if p.cache != nil {
		if meta, err := p.cache.LookupURL(url); err == nil {
			if err := p.cache.Touch(meta); err != nil {
				p.logger.DebugContext(ctx, "touching cached image failed", slog.String("error", err.Error()))
			}
			return true
		}
	}

	resp, err := p.client.Get(ctx, url)
	if err != nil {
		p.logger.DebugContext(ctx, "preload request failed",
			slog.String("source", string(source)),
			slog.String("error", err.Error()),
		)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.logger.DebugContext(ctx, "preload returned non-200",
			slog.String("source", string(source)),
			slog.Int("status", resp.StatusCode),
		)
		return false
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return false
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return false
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		p.logger.DebugContext(ctx, "preloaded body is not a decodable image",
			slog.String("source", string(source)),
			slog.String("error", err.Error()),
		)
		return false
	}

	if p.cache == nil {
		return true
	}

	meta := storage.NewCachedImage(url)
	meta.Source = string(source)
	meta.ContentType = "image/" + format
	meta.Width = cfg.Width
	meta.Height = cfg.Height
	if err := p.cache.Store(meta, data); err != nil {
		// The image itself is fine; only the cache write failed.
		p.logger.WarnContext(ctx, "caching preloaded image failed", slog.String("error", err.Error()))
	}
	return true
}
