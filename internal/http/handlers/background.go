package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/jmylchreest/tabcanvas/internal/models"
	"github.com/jmylchreest/tabcanvas/internal/service"
)

// BackgroundHandler serves profile background settings and resolved styles.
type BackgroundHandler struct {
	backgrounds *service.BackgroundService
}

// NewBackgroundHandler creates a new background handler.
func NewBackgroundHandler(backgrounds *service.BackgroundService) *BackgroundHandler {
	return &BackgroundHandler{backgrounds: backgrounds}
}

// ProfileInput identifies a profile by path.
type ProfileInput struct {
	Profile string `path:"profile" doc:"Profile name" example:"default"`
}

// SettingsOutput carries background settings.
type SettingsOutput struct {
	Body models.BackgroundSettings
}

// SaveSettingsInput replaces a profile's settings.
type SaveSettingsInput struct {
	Profile string `path:"profile" doc:"Profile name"`
	Body    models.BackgroundSettings
}

// StyleOutput carries a resolved style.
type StyleOutput struct {
	Body service.StyleResult
}

// ResolveInput resolves settings that are not stored.
type ResolveInput struct {
	Body models.BackgroundSettings
}

// ListProfilesOutput lists stored profile names.
type ListProfilesOutput struct {
	Body struct {
		Profiles []string `json:"profiles"`
	}
}

// Register registers the background routes with the API.
func (h *BackgroundHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listProfiles",
		Method:      "GET",
		Path:        "/api/v1/profiles",
		Summary:     "List profiles",
		Description: "Returns the names of profiles with stored settings",
		Tags:        []string{"Background"},
	}, h.ListProfiles)

	huma.Register(api, huma.Operation{
		OperationID: "getBackgroundSettings",
		Method:      "GET",
		Path:        "/api/v1/profiles/{profile}/background",
		Summary:     "Get background settings",
		Description: "Returns the profile's settings, or defaults when nothing is stored",
		Tags:        []string{"Background"},
	}, h.GetSettings)

	huma.Register(api, huma.Operation{
		OperationID: "saveBackgroundSettings",
		Method:      "PUT",
		Path:        "/api/v1/profiles/{profile}/background",
		Summary:     "Save background settings",
		Description: "Validates, normalises and stores the profile's settings. Local images are managed through the local image endpoints",
		Tags:        []string{"Background"},
	}, h.SaveSettings)

	huma.Register(api, huma.Operation{
		OperationID: "getBackgroundStyle",
		Method:      "GET",
		Path:        "/api/v1/profiles/{profile}/background/style",
		Summary:     "Resolve background style",
		Description: "Resolves the profile's stored settings into presentation properties",
		Tags:        []string{"Background"},
	}, h.GetStyle)

	huma.Register(api, huma.Operation{
		OperationID: "resolveBackground",
		Method:      "POST",
		Path:        "/api/v1/background/resolve",
		Summary:     "Resolve settings",
		Description: "Resolves the given settings without storing them",
		Tags:        []string{"Background"},
	}, h.Resolve)
}

// RegisterChiRoutes registers the plain CSS route.
func (h *BackgroundHandler) RegisterChiRoutes(r chi.Router) {
	r.Get("/api/v1/profiles/{profile}/background.css", h.serveCSS)
}

// ListProfiles lists stored profiles.
func (h *BackgroundHandler) ListProfiles(ctx context.Context, _ *struct{}) (*ListProfilesOutput, error) {
	names, err := h.backgrounds.ListProfiles(ctx)
	if err != nil {
		return nil, apiError(ctx, err, "failed to list profiles")
	}
	out := &ListProfilesOutput{}
	out.Body.Profiles = names
	return out, nil
}

// GetSettings returns a profile's settings.
func (h *BackgroundHandler) GetSettings(ctx context.Context, input *ProfileInput) (*SettingsOutput, error) {
	settings, err := h.backgrounds.GetSettings(ctx, input.Profile)
	if err != nil {
		return nil, apiError(ctx, err, "failed to get background settings")
	}
	return &SettingsOutput{Body: settings}, nil
}

// SaveSettings stores a profile's settings.
func (h *BackgroundHandler) SaveSettings(ctx context.Context, input *SaveSettingsInput) (*SettingsOutput, error) {
	settings, err := h.backgrounds.SaveSettings(ctx, input.Profile, input.Body)
	if err != nil {
		return nil, apiError(ctx, err, "failed to save background settings")
	}
	return &SettingsOutput{Body: settings}, nil
}

// GetStyle resolves a profile's stored settings.
func (h *BackgroundHandler) GetStyle(ctx context.Context, input *ProfileInput) (*StyleOutput, error) {
	res, err := h.backgrounds.ResolveStyle(ctx, input.Profile)
	if err != nil {
		return nil, apiError(ctx, err, "failed to resolve background style")
	}
	return &StyleOutput{Body: *res}, nil
}

// Resolve resolves ad hoc settings.
func (h *BackgroundHandler) Resolve(ctx context.Context, input *ResolveInput) (*StyleOutput, error) {
	if err := service.ValidateSettings(input.Body); err != nil {
		return nil, apiError(ctx, err, "failed to resolve background style")
	}
	return &StyleOutput{Body: *service.ResolveSettings(input.Body)}, nil
}

// serveCSS renders the resolved style as a stylesheet. The selector query
// parameter defaults to body.
func (h *BackgroundHandler) serveCSS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, err := h.backgrounds.ResolveStyle(ctx, chi.URLParam(r, "profile"))
	if err != nil {
		writeProblem(w, apiError(ctx, err, "failed to resolve background style"))
		return
	}

	css := res.Style.CSS(r.URL.Query().Get("selector"))
	sum := sha256.Sum256([]byte(css))
	etag := `"` + hex.EncodeToString(sum[:8]) + `"`

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Text-Theme", res.TextTheme)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	_, _ = w.Write([]byte(css))
}
