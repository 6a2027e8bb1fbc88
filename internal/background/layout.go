package background

import "github.com/jmylchreest/tabcanvas/internal/models"

// SizeAndRepeat holds the sizing properties of the main layer.
type SizeAndRepeat struct {
	BackgroundSize     string
	BackgroundPosition string
	BackgroundRepeat   string
}

// ResolveSizeAndRepeat derives sizing from the fill mode. Colours and
// gradients always use auto since they never scale an image. Image types use
// the fill mode as the size, except repeat: "repeat" is not a valid
// background-size value, so repeat deliberately maps to auto and is carried
// by BackgroundRepeat instead.
func ResolveSizeAndRepeat(s models.BackgroundSettings) SizeAndRepeat {
	fill := s.Display.FillMode
	if fill == "" {
		fill = models.FillModeCover
	}

	out := SizeAndRepeat{
		BackgroundSize:     string(fill),
		BackgroundPosition: "center",
		BackgroundRepeat:   "no-repeat",
	}
	if fill == models.FillModeRepeat {
		out.BackgroundSize = "auto"
		out.BackgroundRepeat = "repeat"
	}
	switch s.Type {
	case models.BackgroundTypeColor, models.BackgroundTypeGradient:
		out.BackgroundSize = "auto"
	}
	return out
}
