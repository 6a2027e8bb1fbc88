// Package background turns stored background settings into a render-ready
// style description. Everything here is pure: no I/O, no mutation of the
// input, and identical input always yields identical output.
package background

import (
	"strings"

	"github.com/jmylchreest/tabcanvas/internal/models"
)

const (
	noImage     = "none"
	transparent = "transparent"
)

// Layer is the image and colour of the main background layer.
type Layer struct {
	BackgroundImage string
	BackgroundColor string
	// Placeholder is set when the referenced image is unavailable and the
	// caller should render an empty slot.
	Placeholder bool
}

// placeholderLayer is the neutral state used for missing image data.
var placeholderLayer = Layer{
	BackgroundImage: noImage,
	BackgroundColor: transparent,
	Placeholder:     true,
}

// ResolveBackgroundLayer dispatches on the settings type. Missing data never
// fails; it degrades to the placeholder layer.
func ResolveBackgroundLayer(s models.BackgroundSettings) Layer {
	switch s.Type {
	case models.BackgroundTypeColor:
		return Layer{BackgroundImage: noImage, BackgroundColor: s.Color}
	case models.BackgroundTypeGradient:
		return Layer{BackgroundImage: GradientCSS(s.Gradient), BackgroundColor: transparent}
	case models.BackgroundTypeLocal:
		img := s.FindLocalImage(s.CurrentLocalImage)
		if img == nil || img.Data == "" {
			return placeholderLayer
		}
		return Layer{BackgroundImage: cssURL(img.Data), BackgroundColor: transparent}
	case models.BackgroundTypeUnsplash:
		if s.CurrentUnsplashImage == nil || s.CurrentUnsplashImage.URL == "" {
			return placeholderLayer
		}
		return Layer{BackgroundImage: cssURL(s.CurrentUnsplashImage.URL), BackgroundColor: transparent}
	default:
		return placeholderLayer
	}
}

// Resolve computes the full style description for s. Display values are used
// as stored; range checks belong to the code that edits settings.
func Resolve(s models.BackgroundSettings) models.ResolvedStyle {
	layer := ResolveBackgroundLayer(s)
	size := ResolveSizeAndRepeat(s)
	overlay, hasOverlay := ResolveOverlay(s.Display)

	return models.ResolvedStyle{
		Main: models.MainStyle{
			BackgroundImage:    layer.BackgroundImage,
			BackgroundColor:    layer.BackgroundColor,
			BackgroundSize:     size.BackgroundSize,
			BackgroundPosition: size.BackgroundPosition,
			BackgroundRepeat:   size.BackgroundRepeat,
			Opacity:            s.Display.Opacity / 100,
			Filter:             ResolveFilters(s.Display),
		},
		Overlay:     overlay,
		HasOverlay:  hasOverlay,
		Placeholder: layer.Placeholder,
	}
}

// urlEscaper percent-encodes the characters that would end an unquoted url().
var urlEscaper = strings.NewReplacer(
	"(", "%28",
	")", "%29",
	" ", "%20",
	`"`, "%22",
	"'", "%27",
)

func cssURL(u string) string {
	return "url(" + urlEscaper.Replace(u) + ")"
}
