// Package random adapts a themed random-wallpaper JSON API.
//
// Endpoints:
//
//	GET {base}/api/v1/random?count=N&theme=T&category=C
//	GET {base}/api/v1/search?q=Q&theme=T&category=C
//
// Both return {"images": [...]}.
package random

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jmylchreest/tabcanvas/internal/models"
	"github.com/jmylchreest/tabcanvas/internal/provider"
	"github.com/jmylchreest/tabcanvas/internal/urlutil"
	"github.com/jmylchreest/tabcanvas/pkg/httpclient"
)

// Source is the registry key for this adapter.
const Source = models.ImageSourceRandom

// Acceptance bounds for IsValidBackgroundImage.
const (
	MinWidth       = 1280
	MinHeight      = 720
	MinAspectRatio = 1.0
	MaxAspectRatio = 2.6

	// softBlurBelowWidth is the width under which a light blur hides upscaling.
	softBlurBelowWidth = 1920
	maxCount           = 30
)

type apiImage struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	Category    string    `json:"category"`
	Theme       string    `json:"theme"`
	Author      *apiOwner `json:"author"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type apiOwner struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	URL      string `json:"url"`
	Avatar   string `json:"avatar"`
}

type apiResponse struct {
	Images []apiImage `json:"images"`
}

// Adapter implements provider.Adapter for the random wallpaper API.
type Adapter struct {
	client    *httpclient.Client
	baseURL   string
	theme     string
	preloader provider.ImagePreloader
	logger    *slog.Logger
}

var _ provider.Adapter = (*Adapter)(nil)

// New creates an adapter for the API at baseURL. theme is applied when a
// request does not name one.
func New(client *httpclient.Client, baseURL, theme string) *Adapter {
	return &Adapter{
		client:  client,
		baseURL: urlutil.NormalizeBaseURL(baseURL),
		theme:   theme,
		logger:  slog.Default(),
	}
}

// WithPreloader sets the preloader used by PreloadImage.
func (a *Adapter) WithPreloader(p provider.ImagePreloader) *Adapter {
	a.preloader = p
	return a
}

// WithLogger sets the logger for the adapter.
func (a *Adapter) WithLogger(logger *slog.Logger) *Adapter {
	a.logger = logger
	return a
}

// Source implements provider.Adapter.
func (a *Adapter) Source() models.ImageSource {
	return Source
}

// RandomImage implements provider.Adapter.
func (a *Adapter) RandomImage(ctx context.Context, filters provider.Filters) (models.BackgroundImage, error) {
	images, err := a.RandomImages(ctx, 1, filters)
	if err != nil {
		return models.BackgroundImage{}, err
	}
	if len(images) == 0 {
		return models.BackgroundImage{}, fmt.Errorf("random: empty response: %w", models.ErrNoValidImage)
	}
	return images[0], nil
}

// RandomImages implements provider.Adapter.
func (a *Adapter) RandomImages(ctx context.Context, count int, filters provider.Filters) ([]models.BackgroundImage, error) {
	if count <= 0 {
		return []models.BackgroundImage{}, nil
	}
	q := a.query(filters)
	q.Set("count", strconv.Itoa(min(count, maxCount)))
	return a.fetch(ctx, "/api/v1/random", q)
}

// SearchImages implements provider.Adapter.
func (a *Adapter) SearchImages(ctx context.Context, query string, filters provider.Filters) ([]models.BackgroundImage, error) {
	q := a.query(filters)
	q.Set("q", query)
	return a.fetch(ctx, "/api/v1/search", q)
}

// ImageURL implements provider.Adapter. The API serves a single size.
func (a *Adapter) ImageURL(img models.BackgroundImage, _ provider.Quality) string {
	return img.URL
}

// PreloadImage implements provider.Adapter.
func (a *Adapter) PreloadImage(ctx context.Context, url string) bool {
	if a.preloader == nil {
		return false
	}
	return a.preloader.Preload(ctx, url, Source)
}

// IsValidBackgroundImage implements provider.Adapter.
func (a *Adapter) IsValidBackgroundImage(img models.BackgroundImage) bool {
	if img.URL == "" || img.Width < MinWidth || img.Height < MinHeight {
		return false
	}
	ratio := img.AspectRatio()
	return ratio >= MinAspectRatio && ratio <= MaxAspectRatio
}

// RecommendedSettings implements provider.Adapter.
func (a *Adapter) RecommendedSettings(img models.BackgroundImage) provider.RecommendedSettings {
	rec := provider.RecommendedSettings{FillMode: models.FillModeCover, Opacity: 100}
	if img.Width < softBlurBelowWidth {
		rec.Blur = 2
	}
	return rec
}

func (a *Adapter) query(filters provider.Filters) url.Values {
	q := url.Values{}
	if theme := cmp.Or(filters.Theme, a.theme); theme != "" {
		q.Set("theme", theme)
	}
	if filters.Category != "" {
		q.Set("category", filters.Category)
	}
	return q
}

func (a *Adapter) fetch(ctx context.Context, path string, q url.Values) ([]models.BackgroundImage, error) {
	endpoint := urlutil.WithQuery(a.baseURL, path, q)

	var resp apiResponse
	if err := a.client.GetJSON(ctx, endpoint, nil, &resp); err != nil {
		return nil, fmt.Errorf("random: %w", err)
	}

	images := make([]models.BackgroundImage, 0, len(resp.Images))
	for _, raw := range resp.Images {
		if raw.ID == "" || raw.URL == "" {
			a.logger.DebugContext(ctx, "skipping incomplete image", slog.String("id", raw.ID))
			continue
		}
		images = append(images, a.normalize(raw))
	}
	return images, nil
}

// normalize converts an API record. Casers hold state, so each call builds its own.
func (a *Adapter) normalize(raw apiImage) models.BackgroundImage {
	title := cases.Title(language.English)
	lower := cases.Lower(language.English)

	img := models.BackgroundImage{
		ID:          raw.ID,
		URL:         raw.URL,
		Width:       raw.Width,
		Height:      raw.Height,
		Description: raw.Description,
		Category:    raw.Category,
		Theme:       raw.Theme,
		Source:      Source,
	}
	if img.Description == "" && raw.Category != "" {
		img.Description = title.String(raw.Category) + " wallpaper"
	}
	for _, tag := range raw.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			img.Keywords = append(img.Keywords, lower.String(tag))
		}
	}
	if raw.Author != nil && raw.Author.Name != "" {
		img.Author = &models.Author{
			Name:       raw.Author.Name,
			Username:   raw.Author.Username,
			ProfileURL: raw.Author.URL,
			AvatarURL:  raw.Author.Avatar,
		}
	}
	if !raw.CreatedAt.IsZero() {
		t := raw.CreatedAt
		img.CreatedAt = &t
	}
	if !raw.UpdatedAt.IsZero() {
		t := raw.UpdatedAt
		img.UpdatedAt = &t
	}
	return img
}
