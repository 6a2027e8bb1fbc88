package background

import "github.com/jmylchreest/tabcanvas/internal/models"

// Foreground values returned by TextTheme.
const (
	ForegroundLight = "light"
	ForegroundDark  = "dark"
)

// darkThreshold is the luminance below which a background counts as dark.
const darkThreshold = 0.179

// overlayDominates is the overlay opacity at which the tint decides contrast.
const overlayDominates = 50

// TextTheme suggests the text colour for content drawn over the background:
// ForegroundLight for dark backgrounds, ForegroundDark otherwise. Images are
// assumed dark unless a strong overlay says otherwise.
func TextTheme(s models.BackgroundSettings) string {
	d := s.Display
	if d.Overlay && d.OverlayOpacity >= overlayDominates {
		if lum, ok := Luminance(d.OverlayColor); ok {
			return themeFor(lum)
		}
	}

	switch s.Type {
	case models.BackgroundTypeColor:
		if lum, ok := Luminance(s.Color); ok {
			return themeFor(lum)
		}
	case models.BackgroundTypeGradient:
		var sum float64
		var n int
		for _, stop := range s.Gradient.Colors {
			if lum, ok := Luminance(stop.Color); ok {
				sum += lum
				n++
			}
		}
		if n > 0 {
			return themeFor(sum / float64(n))
		}
	}
	return ForegroundLight
}

func themeFor(lum float64) string {
	if lum < darkThreshold {
		return ForegroundLight
	}
	return ForegroundDark
}
