package background

import "github.com/jmylchreest/tabcanvas/internal/models"

// ResolveOverlay returns the overlay description and whether it is drawn.
func ResolveOverlay(d models.DisplaySettings) (models.OverlayStyle, bool) {
	if !d.Overlay {
		return models.OverlayStyle{}, false
	}
	opacity := d.OverlayOpacity / 100
	return models.OverlayStyle{
		BackgroundColor: d.OverlayColor,
		Opacity:         &opacity,
	}, true
}
