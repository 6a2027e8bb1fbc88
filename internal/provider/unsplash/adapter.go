// Package unsplash adapts the Unsplash REST API.
package unsplash

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/jmylchreest/tabcanvas/internal/models"
	"github.com/jmylchreest/tabcanvas/internal/provider"
	"github.com/jmylchreest/tabcanvas/internal/urlutil"
	"github.com/jmylchreest/tabcanvas/pkg/httpclient"
)

// Source is the registry key for this adapter.
const Source = models.ImageSourceUnsplash

// DefaultBaseURL is the public API endpoint.
const DefaultBaseURL = "https://api.unsplash.com"

// Acceptance bounds for IsValidBackgroundImage. The long edge must reach
// MinLongEdge and the short edge MinShortEdge, so portrait photos qualify.
const (
	MinLongEdge    = 1920
	MinShortEdge   = 1080
	MinAspectRatio = 0.5
	MaxAspectRatio = 3.5

	maxPerRequest = 30
)

// tier is the imgix transformation applied to urls.raw for a quality.
type tier struct {
	width   int
	quality int
}

var tiers = map[provider.Quality]tier{
	provider.QualityLarge:  {width: 2560, quality: 85},
	provider.QualityMedium: {width: 1920, quality: 80},
	provider.QualitySmall:  {width: 1080, quality: 75},
}

type photo struct {
	ID             string    `json:"id"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	Description    string    `json:"description"`
	AltDescription string    `json:"alt_description"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	URLs           struct {
		Raw     string `json:"raw"`
		Full    string `json:"full"`
		Regular string `json:"regular"`
	} `json:"urls"`
	User struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Links    struct {
			HTML string `json:"html"`
		} `json:"links"`
		ProfileImage struct {
			Medium string `json:"medium"`
		} `json:"profile_image"`
	} `json:"user"`
	Tags []tag `json:"tags"`
}

type tag struct {
	Title string `json:"title"`
}

type searchResponse struct {
	Total      int     `json:"total"`
	TotalPages int     `json:"total_pages"`
	Results    []photo `json:"results"`
}

// Adapter implements provider.Adapter for Unsplash.
type Adapter struct {
	client    *httpclient.Client
	baseURL   string
	accessKey string
	preloader provider.ImagePreloader
	logger    *slog.Logger
}

var _ provider.Adapter = (*Adapter)(nil)

// New creates an Unsplash adapter. An empty baseURL uses DefaultBaseURL.
func New(client *httpclient.Client, baseURL, accessKey string) *Adapter {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Adapter{
		client:    client,
		baseURL:   urlutil.NormalizeBaseURL(baseURL),
		accessKey: accessKey,
		logger:    slog.Default(),
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
		return models.BackgroundImage{}, fmt.Errorf("unsplash: empty response: %w", models.ErrNoValidImage)
	}
	return images[0], nil
}

// RandomImages implements provider.Adapter.
func (a *Adapter) RandomImages(ctx context.Context, count int, filters provider.Filters) ([]models.BackgroundImage, error) {
	if count <= 0 {
		return []models.BackgroundImage{}, nil
	}

	q := url.Values{}
	q.Set("count", strconv.Itoa(min(count, maxPerRequest)))
	if topic := topicQuery(filters); topic != "" {
		q.Set("query", topic)
	}
	if filters.Orientation != provider.OrientationAny {
		q.Set("orientation", string(filters.Orientation))
	}

	var photos []photo
	if err := a.get(ctx, "/photos/random", q, &photos); err != nil {
		return nil, err
	}
	return a.normalizeAll(photos), nil
}

// SearchImages implements provider.Adapter.
func (a *Adapter) SearchImages(ctx context.Context, query string, filters provider.Filters) ([]models.BackgroundImage, error) {
	q := url.Values{}
	q.Set("query", strings.TrimSpace(strings.Join(lo.Compact([]string{query, filters.Category}), " ")))
	q.Set("per_page", strconv.Itoa(maxPerRequest))
	if filters.Orientation != provider.OrientationAny {
		q.Set("orientation", string(filters.Orientation))
	}
	if filters.Color != "" {
		q.Set("color", filters.Color)
	}

	var resp searchResponse
	if err := a.get(ctx, "/search/photos", q, &resp); err != nil {
		return nil, err
	}
	return a.normalizeAll(resp.Results), nil
}

// ImageURL implements provider.Adapter by applying imgix parameters to the
// raw URL. Images without a raw URL only have one size.
func (a *Adapter) ImageURL(img models.BackgroundImage, quality provider.Quality) string {
	if img.RawURL == "" {
		return img.URL
	}
	if quality == provider.QualityOriginal {
		return img.RawURL
	}
	t, ok := tiers[quality]
	if !ok {
		t = tiers[provider.QualityLarge]
	}
	return withTier(img.RawURL, t)
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
	if img.URL == "" {
		return false
	}
	long, short := max(img.Width, img.Height), min(img.Width, img.Height)
	if long < MinLongEdge || short < MinShortEdge {
		return false
	}
	ratio := img.AspectRatio()
	return ratio >= MinAspectRatio && ratio <= MaxAspectRatio
}

// RecommendedSettings implements provider.Adapter. Portrait photos are
// contained so the subject is not cropped away.
func (a *Adapter) RecommendedSettings(img models.BackgroundImage) provider.RecommendedSettings {
	fill := models.FillModeCover
	if img.Height > img.Width {
		fill = models.FillModeContain
	}
	return provider.RecommendedSettings{FillMode: fill, Opacity: 100, Blur: 0}
}

func (a *Adapter) get(ctx context.Context, path string, q url.Values, out any) error {
	header := http.Header{}
	header.Set("Authorization", "Client-ID "+a.accessKey)
	header.Set("Accept-Version", "v1")

	if err := a.client.GetJSON(ctx, urlutil.WithQuery(a.baseURL, path, q), header, out); err != nil {
		return fmt.Errorf("unsplash: %w", err)
	}
	return nil
}

func (a *Adapter) normalizeAll(photos []photo) []models.BackgroundImage {
	images := make([]models.BackgroundImage, 0, len(photos))
	for _, p := range photos {
		if p.ID == "" {
			continue
		}
		img := a.normalize(p)
		if img.URL == "" {
			continue
		}
		images = append(images, img)
	}
	return images
}

func (a *Adapter) normalize(p photo) models.BackgroundImage {
	img := models.BackgroundImage{
		ID:          p.ID,
		RawURL:      p.URLs.Raw,
		Width:       p.Width,
		Height:      p.Height,
		Description: lo.CoalesceOrEmpty(p.Description, p.AltDescription),
		Source:      Source,
	}
	if p.URLs.Raw != "" {
		img.URL = withTier(p.URLs.Raw, tiers[provider.QualityLarge])
	} else {
		img.URL = lo.CoalesceOrEmpty(p.URLs.Full, p.URLs.Regular)
	}

	img.Keywords = lo.FilterMap(p.Tags, func(t tag, _ int) (string, bool) {
		title := strings.ToLower(strings.TrimSpace(t.Title))
		return title, title != ""
	})

	if p.User.Name != "" {
		img.Author = &models.Author{
			Name:       p.User.Name,
			Username:   p.User.Username,
			ProfileURL: p.User.Links.HTML,
			AvatarURL:  p.User.ProfileImage.Medium,
		}
	}
	if !p.CreatedAt.IsZero() {
		t := p.CreatedAt
		img.CreatedAt = &t
	}
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		img.UpdatedAt = &t
	}
	return img
}

func withTier(raw string, t tier) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set("auto", "format")
	q.Set("fit", "max")
	q.Set("q", strconv.Itoa(t.quality))
	q.Set("w", strconv.Itoa(t.width))
	u.RawQuery = q.Encode()
	return u.String()
}

func topicQuery(filters provider.Filters) string {
	return strings.Join(lo.Compact([]string{filters.Category, filters.Theme}), " ")
}
