package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/jmylchreest/tabcanvas/internal/observability"
	"github.com/jmylchreest/tabcanvas/internal/storage"
)

// CacheHandler serves preloaded wallpaper images from the local cache.
type CacheHandler struct {
	cache *storage.ImageCache
}

// NewCacheHandler creates a new cache handler.
func NewCacheHandler(cache *storage.ImageCache) *CacheHandler {
	return &CacheHandler{cache: cache}
}

// ImageURL returns the API path an image with id is served from.
func ImageURL(id string) string {
	return "/api/v1/cache/images/" + id
}

// RegisterChiRoutes registers the cached image route.
func (h *CacheHandler) RegisterChiRoutes(r chi.Router) {
	r.Get("/api/v1/cache/images/{id}", h.serveImage)
}

func (h *CacheHandler) serveImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerFromContext(ctx)

	f, meta, err := h.cache.Open(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotCached) {
			writeProblem(w, huma.Error404NotFound("image not cached"))
			return
		}
		logger.ErrorContext(ctx, "failed to open cached image", slog.String("error", err.Error()))
		writeProblem(w, huma.Error500InternalServerError("failed to open cached image"))
		return
	}
	defer f.Close()

	if err := h.cache.Touch(meta); err != nil {
		logger.WarnContext(ctx, "failed to touch cached image",
			slog.String("id", meta.ID),
			slog.String("error", err.Error()),
		)
	}

	w.Header().Set("Content-Type", meta.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	w.Header().Set("ETag", `"`+meta.ID+`"`)
	http.ServeContent(w, r, "", meta.CreatedAt, f)
}
