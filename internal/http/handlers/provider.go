package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/samber/lo"

	"github.com/jmylchreest/tabcanvas/internal/models"
	"github.com/jmylchreest/tabcanvas/internal/provider"
	"github.com/jmylchreest/tabcanvas/internal/service"
)

// ProviderHandler exposes the wallpaper provider registry.
type ProviderHandler struct {
	wallpapers *service.WallpaperService
}

// NewProviderHandler creates a new provider handler.
func NewProviderHandler(wallpapers *service.WallpaperService) *ProviderHandler {
	return &ProviderHandler{wallpapers: wallpapers}
}

// FilterParams are the image filters accepted as query parameters.
type FilterParams struct {
	Category    string `query:"category" doc:"Category keyword"`
	Theme       string `query:"theme" doc:"Theme keyword"`
	Orientation string `query:"orientation" enum:"landscape,portrait,squarish" doc:"Image orientation"`
	Color       string `query:"color" doc:"Dominant colour"`
}

func (p FilterParams) filters() provider.Filters {
	return provider.Filters{
		Category:    p.Category,
		Theme:       p.Theme,
		Orientation: provider.Orientation(p.Orientation),
		Color:       p.Color,
	}
}

func toSources(in []string) []models.ImageSource {
	return lo.Map(lo.Compact(in), func(s string, _ int) models.ImageSource {
		return models.ImageSource(s)
	})
}

// ProvidersOutput lists registered sources.
type ProvidersOutput struct {
	Body struct {
		Sources []models.ImageSource `json:"sources"`
		Default models.ImageSource   `json:"default"`
	}
}

// SetDefaultProviderInput changes the default source.
type SetDefaultProviderInput struct {
	Body struct {
		Source string `json:"source" minLength:"1" doc:"Registered source key"`
	}
}

// RandomImagesInput requests random images.
type RandomImagesInput struct {
	FilterParams
	Source string `query:"source" doc:"Source key, default source when empty"`
	Count  int    `query:"count" default:"1" minimum:"1" maximum:"30"`
}

// SearchImagesInput searches images.
type SearchImagesInput struct {
	FilterParams
	Query   string   `query:"q" required:"true" minLength:"1"`
	Sources []string `query:"sources" doc:"Sources to search, default source when empty"`
}

// MixedImagesInput requests images from several sources.
type MixedImagesInput struct {
	FilterParams
	Count   int      `query:"count" default:"10" minimum:"1" maximum:"30"`
	Sources []string `query:"sources" doc:"Sources to draw from, all registered sources when empty"`
}

// ImagesOutput carries a list of images.
type ImagesOutput struct {
	Body struct {
		Images []models.BackgroundImage `json:"images"`
	}
}

func imagesOutput(images []models.BackgroundImage) *ImagesOutput {
	out := &ImagesOutput{}
	out.Body.Images = images
	if out.Body.Images == nil {
		out.Body.Images = []models.BackgroundImage{}
	}
	return out
}

// Register registers the provider routes with the API.
func (h *ProviderHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listProviders",
		Method:      "GET",
		Path:        "/api/v1/providers",
		Summary:     "List image providers",
		Tags:        []string{"Providers"},
	}, h.List)

	huma.Register(api, huma.Operation{
		OperationID: "setDefaultProvider",
		Method:      "PUT",
		Path:        "/api/v1/providers/default",
		Summary:     "Set default image provider",
		Tags:        []string{"Providers"},
	}, h.SetDefault)

	huma.Register(api, huma.Operation{
		OperationID: "randomWallpapers",
		Method:      "GET",
		Path:        "/api/v1/wallpapers/random",
		Summary:     "Random wallpapers",
		Description: "Fetches random images from one source",
		Tags:        []string{"Wallpapers"},
	}, h.Random)

	huma.Register(api, huma.Operation{
		OperationID: "searchWallpapers",
		Method:      "GET",
		Path:        "/api/v1/wallpapers/search",
		Summary:     "Search wallpapers",
		Description: "Searches one or more sources. Sources that fail are skipped",
		Tags:        []string{"Wallpapers"},
	}, h.Search)

	huma.Register(api, huma.Operation{
		OperationID: "mixedWallpapers",
		Method:      "GET",
		Path:        "/api/v1/wallpapers/mixed",
		Summary:     "Mixed wallpapers",
		Description: "Draws random images from several sources and shuffles them",
		Tags:        []string{"Wallpapers"},
	}, h.Mixed)
}

// List returns registered sources and the default.
func (h *ProviderHandler) List(_ context.Context, _ *struct{}) (*ProvidersOutput, error) {
	registry := h.wallpapers.Registry()
	out := &ProvidersOutput{}
	out.Body.Sources = registry.Sources()
	out.Body.Default = registry.DefaultSource()
	return out, nil
}

// SetDefault changes the default source.
func (h *ProviderHandler) SetDefault(ctx context.Context, input *SetDefaultProviderInput) (*ProvidersOutput, error) {
	if err := h.wallpapers.Registry().SetDefaultSource(models.ImageSource(input.Body.Source)); err != nil {
		return nil, apiError(ctx, err, "failed to set default provider")
	}
	return h.List(ctx, nil)
}

// Random returns random images.
func (h *ProviderHandler) Random(ctx context.Context, input *RandomImagesInput) (*ImagesOutput, error) {
	images, err := h.wallpapers.Random(ctx, models.ImageSource(input.Source), input.Count, input.filters())
	if err != nil {
		return nil, apiError(ctx, err, "failed to fetch wallpapers")
	}
	return imagesOutput(images), nil
}

// Search searches images.
func (h *ProviderHandler) Search(ctx context.Context, input *SearchImagesInput) (*ImagesOutput, error) {
	images, err := h.wallpapers.Search(ctx, input.Query, toSources(input.Sources), input.filters())
	if err != nil {
		return nil, apiError(ctx, err, "failed to search wallpapers")
	}
	return imagesOutput(images), nil
}

// Mixed returns shuffled images from several sources.
func (h *ProviderHandler) Mixed(ctx context.Context, input *MixedImagesInput) (*ImagesOutput, error) {
	sources := toSources(input.Sources)
	if len(sources) == 0 {
		sources = h.wallpapers.Registry().Sources()
	}
	images, err := h.wallpapers.Mixed(ctx, input.Count, sources, input.filters())
	if err != nil {
		return nil, apiError(ctx, err, "failed to fetch wallpapers")
	}
	return imagesOutput(images), nil
}
