// Package provider defines the capability set every remote wallpaper source
// implements and a Registry that composes them.
package provider

import (
	"context"

	"github.com/jmylchreest/tabcanvas/internal/models"
)

// Quality selects a size tier when building an image URL.
type Quality string

const (
	QualityOriginal Quality = "original"
	QualityLarge    Quality = "large"
	QualityMedium   Quality = "medium"
	QualitySmall    Quality = "small"
)

// ParseQuality maps a string to a Quality, defaulting to large.
func ParseQuality(s string) Quality {
	switch Quality(s) {
	case QualityOriginal, QualityLarge, QualityMedium, QualitySmall:
		return Quality(s)
	default:
		return QualityLarge
	}
}

// Orientation filters images by shape.
type Orientation string

const (
	OrientationAny       Orientation = ""
	OrientationLandscape Orientation = "landscape"
	OrientationPortrait  Orientation = "portrait"
	OrientationSquarish  Orientation = "squarish"
)

// Filters narrows the images a provider returns. Adapters ignore the fields
// their API cannot express.
type Filters struct {
	Category    string      `json:"category,omitempty"`
	Theme       string      `json:"theme,omitempty"`
	Orientation Orientation `json:"orientation,omitempty"`
	Color       string      `json:"color,omitempty"`
}

// RecommendedSettings is a source specific display suggestion for an image.
type RecommendedSettings struct {
	FillMode models.FillMode `json:"fillMode"`
	Opacity  float64         `json:"opacity"`
	Blur     float64         `json:"blur"`
}

// Apply copies the recommendation onto display settings.
func (r RecommendedSettings) Apply(d *models.DisplaySettings) {
	d.FillMode = r.FillMode
	d.Opacity = r.Opacity
	d.Blur = r.Blur
}

// Adapter is one remote image source.
type Adapter interface {
	// Source returns the key the adapter is registered under.
	Source() models.ImageSource

	RandomImage(ctx context.Context, filters Filters) (models.BackgroundImage, error)
	RandomImages(ctx context.Context, count int, filters Filters) ([]models.BackgroundImage, error)
	SearchImages(ctx context.Context, query string, filters Filters) ([]models.BackgroundImage, error)

	// ImageURL returns the URL for a quality tier. Sources without tiers
	// return the best URL they have.
	ImageURL(img models.BackgroundImage, quality Quality) string

	// PreloadImage warms the image into the local cache. It never fails;
	// false means the image could not be fetched or decoded.
	PreloadImage(ctx context.Context, url string) bool

	IsValidBackgroundImage(img models.BackgroundImage) bool
	RecommendedSettings(img models.BackgroundImage) RecommendedSettings
}

// ImagePreloader is the part of Preloader adapters depend on.
type ImagePreloader interface {
	Preload(ctx context.Context, url string, source models.ImageSource) bool
}
