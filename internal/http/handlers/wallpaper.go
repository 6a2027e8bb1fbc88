package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/tabcanvas/internal/models"
	"github.com/jmylchreest/tabcanvas/internal/provider"
	"github.com/jmylchreest/tabcanvas/internal/service"
)

// WallpaperHandler rotates and lists a profile's remote wallpapers.
type WallpaperHandler struct {
	wallpapers *service.WallpaperService
}

// NewWallpaperHandler creates a new wallpaper handler.
func NewWallpaperHandler(wallpapers *service.WallpaperService) *WallpaperHandler {
	return &WallpaperHandler{wallpapers: wallpapers}
}

// NextWallpaperRequest is the body of a rotation request.
type NextWallpaperRequest struct {
	Sources          []string         `json:"sources,omitempty" required:"false" doc:"Sources to pick from, default source when empty"`
	Filters          provider.Filters `json:"filters,omitzero" required:"false"`
	Quality          string           `json:"quality,omitempty" required:"false" enum:"original,large,medium,small" doc:"Image size tier, large when empty"`
	ApplyRecommended bool             `json:"applyRecommended,omitempty" required:"false" doc:"Also apply the source's recommended display settings"`
}

// NextWallpaperInput rotates a profile's wallpaper.
type NextWallpaperInput struct {
	Profile string `path:"profile" doc:"Profile name"`
	Body    NextWallpaperRequest
}

// NextWallpaperOutput carries the applied wallpaper.
type NextWallpaperOutput struct {
	Body service.NextResult
}

// HistoryInput lists applied wallpapers.
type HistoryInput struct {
	Profile string `path:"profile" doc:"Profile name"`
	Limit   int    `query:"limit" minimum:"0" doc:"Maximum entries, configured limit when 0"`
}

// HistoryOutput carries wallpaper history, newest first.
type HistoryOutput struct {
	Body struct {
		History []*models.WallpaperHistory `json:"history"`
	}
}

// Register registers the wallpaper routes with the API.
func (h *WallpaperHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "nextWallpaper",
		Method:      "POST",
		Path:        "/api/v1/profiles/{profile}/wallpaper/next",
		Summary:     "Rotate wallpaper",
		Description: "Fetches a suitable image, preloads it and makes it the profile's background",
		Tags:        []string{"Wallpapers"},
	}, h.Next)

	huma.Register(api, huma.Operation{
		OperationID: "wallpaperHistory",
		Method:      "GET",
		Path:        "/api/v1/profiles/{profile}/wallpaper/history",
		Summary:     "Wallpaper history",
		Tags:        []string{"Wallpapers"},
	}, h.History)
}

// Next rotates the wallpaper.
func (h *WallpaperHandler) Next(ctx context.Context, input *NextWallpaperInput) (*NextWallpaperOutput, error) {
	res, err := h.wallpapers.Next(ctx, service.NextRequest{
		Profile:          input.Profile,
		Sources:          toSources(input.Body.Sources),
		Filters:          input.Body.Filters,
		Quality:          provider.ParseQuality(input.Body.Quality),
		ApplyRecommended: input.Body.ApplyRecommended,
	})
	if err != nil {
		return nil, apiError(ctx, err, "failed to rotate wallpaper")
	}
	return &NextWallpaperOutput{Body: *res}, nil
}

// History lists applied wallpapers.
func (h *WallpaperHandler) History(ctx context.Context, input *HistoryInput) (*HistoryOutput, error) {
	entries, err := h.wallpapers.History(ctx, input.Profile, input.Limit)
	if err != nil {
		return nil, apiError(ctx, err, "failed to list wallpaper history")
	}
	out := &HistoryOutput{}
	out.Body.History = entries
	if out.Body.History == nil {
		out.Body.History = []*models.WallpaperHistory{}
	}
	return out, nil
}
