package models

import (
	"math"
	"slices"
)

// BackgroundType selects which part of BackgroundSettings is active.
type BackgroundType string

const (
	BackgroundTypeColor    BackgroundType = "color"
	BackgroundTypeGradient BackgroundType = "gradient"
	BackgroundTypeLocal    BackgroundType = "local"
	// BackgroundTypeUnsplash covers any remote image, whichever adapter produced it.
	BackgroundTypeUnsplash BackgroundType = "unsplash"
)

// GradientType is the CSS gradient function family.
type GradientType string

const (
	GradientTypeLinear GradientType = "linear"
	GradientTypeRadial GradientType = "radial"
	GradientTypeConic  GradientType = "conic"
)

// FillMode controls how an image is scaled or tiled in its container.
type FillMode string

const (
	FillModeCover   FillMode = "cover"
	FillModeContain FillMode = "contain"
	FillModeRepeat  FillMode = "repeat"
	FillModeAuto    FillMode = "auto"
)

// Valid reports whether m is one of the known fill modes.
func (m FillMode) Valid() bool {
	switch m {
	case FillModeCover, FillModeContain, FillModeRepeat, FillModeAuto:
		return true
	default:
		return false
	}
}

// GradientStop is a single colour transition point.
type GradientStop struct {
	Color    string  `json:"color"`
	Position float64 `json:"position"`
}

// GradientSettings describes a CSS gradient.
type GradientSettings struct {
	Type      GradientType   `json:"type"`
	Direction float64        `json:"direction"`
	Colors    []GradientStop `json:"colors"`
	CenterX   *float64       `json:"centerX,omitempty"`
	CenterY   *float64       `json:"centerY,omitempty"`
	Shape     string         `json:"shape,omitempty"`
	Size      string         `json:"size,omitempty"`
}

// LocalImage is a user uploaded image stored inline as a data URI.
type LocalImage struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Data string `json:"data"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

// DisplaySettings holds the visual effect parameters applied on top of the layer.
type DisplaySettings struct {
	FillMode       FillMode `json:"fillMode"`
	Opacity        float64  `json:"opacity"`
	Blur           float64  `json:"blur"`
	Brightness     float64  `json:"brightness"`
	Contrast       float64  `json:"contrast"`
	Saturation     float64  `json:"saturation"`
	Overlay        bool     `json:"overlay"`
	OverlayColor   string   `json:"overlayColor"`
	OverlayOpacity float64  `json:"overlayOpacity"`
}

// BackgroundSettings is the user's background configuration.
// Type selects the active variant; the other fields are kept so switching back
// restores the previous choice.
type BackgroundSettings struct {
	Type                 BackgroundType   `json:"type"`
	Color                string           `json:"color"`
	Gradient             GradientSettings `json:"gradient"`
	CurrentLocalImage    string           `json:"currentLocalImage,omitempty"`
	LocalImages          []LocalImage     `json:"localImages" required:"false" nullable:"true"`
	CurrentUnsplashImage *BackgroundImage `json:"currentUnsplashImage,omitempty"`
	Display              DisplaySettings  `json:"display"`
}

// Default colours and effect values for a fresh profile.
const (
	DefaultBackgroundColor = "#1a1a2e"
	DefaultOverlayColor    = "#000000"
)

// DefaultDisplaySettings returns neutral effect parameters.
func DefaultDisplaySettings() DisplaySettings {
	return DisplaySettings{
		FillMode:       FillModeCover,
		Opacity:        100,
		Blur:           0,
		Brightness:     100,
		Contrast:       100,
		Saturation:     100,
		Overlay:        false,
		OverlayColor:   DefaultOverlayColor,
		OverlayOpacity: 30,
	}
}

// DefaultBackgroundSettings returns the settings a new profile starts with.
func DefaultBackgroundSettings() BackgroundSettings {
	return BackgroundSettings{
		Type:  BackgroundTypeGradient,
		Color: DefaultBackgroundColor,
		Gradient: GradientSettings{
			Type:      GradientTypeLinear,
			Direction: 135,
			Colors: []GradientStop{
				{Color: "#667eea", Position: 0},
				{Color: "#764ba2", Position: 100},
			},
		},
		LocalImages: []LocalImage{},
		Display:     DefaultDisplaySettings(),
	}
}

// FindLocalImage returns the local image with the given id, or nil.
func (s *BackgroundSettings) FindLocalImage(id string) *LocalImage {
	if id == "" {
		return nil
	}
	for i := range s.LocalImages {
		if s.LocalImages[i].ID == id {
			return &s.LocalImages[i]
		}
	}
	return nil
}

// Clone returns a deep copy so callers can edit without touching shared state.
func (s BackgroundSettings) Clone() BackgroundSettings {
	out := s
	out.Gradient.Colors = slices.Clone(s.Gradient.Colors)
	out.LocalImages = slices.Clone(s.LocalImages)
	if s.Gradient.CenterX != nil {
		x := *s.Gradient.CenterX
		out.Gradient.CenterX = &x
	}
	if s.Gradient.CenterY != nil {
		y := *s.Gradient.CenterY
		out.Gradient.CenterY = &y
	}
	if s.CurrentUnsplashImage != nil {
		img := s.CurrentUnsplashImage.Clone()
		out.CurrentUnsplashImage = &img
	}
	return out
}

// Limits enforced by Normalize.
const (
	MaxBlur            = 50
	MaxFilterPercent   = 200
	MaxPercent         = 100
	fullTurnDegrees    = 360
	defaultCenterValue = 50
)

// Normalize clamps the editable values into their documented ranges and repairs
// dangling references. This belongs to the settings editing layer; style
// resolution never calls it and trusts whatever was stored.
func (s *BackgroundSettings) Normalize() {
	switch s.Type {
	case BackgroundTypeColor, BackgroundTypeGradient, BackgroundTypeLocal, BackgroundTypeUnsplash:
	default:
		s.Type = BackgroundTypeColor
	}

	d := &s.Display
	if !d.FillMode.Valid() {
		d.FillMode = FillModeCover
	}
	d.Opacity = clamp(d.Opacity, 0, MaxPercent)
	d.Blur = clamp(d.Blur, 0, MaxBlur)
	d.Brightness = clamp(d.Brightness, 0, MaxFilterPercent)
	d.Contrast = clamp(d.Contrast, 0, MaxFilterPercent)
	d.Saturation = clamp(d.Saturation, 0, MaxFilterPercent)
	d.OverlayOpacity = clamp(d.OverlayOpacity, 0, MaxPercent)
	if d.OverlayColor == "" {
		d.OverlayColor = DefaultOverlayColor
	}

	g := &s.Gradient
	switch g.Type {
	case GradientTypeLinear, GradientTypeRadial, GradientTypeConic:
	default:
		g.Type = GradientTypeLinear
	}
	g.Direction = math.Mod(g.Direction, fullTurnDegrees)
	if g.Direction < 0 {
		g.Direction += fullTurnDegrees
	}
	for i := range g.Colors {
		g.Colors[i].Position = clamp(g.Colors[i].Position, 0, MaxPercent)
	}
	if g.CenterX != nil {
		x := clamp(*g.CenterX, 0, MaxPercent)
		g.CenterX = &x
	}
	if g.CenterY != nil {
		y := clamp(*g.CenterY, 0, MaxPercent)
		g.CenterY = &y
	}

	if s.LocalImages == nil {
		s.LocalImages = []LocalImage{}
	}
	if s.CurrentLocalImage != "" && s.FindLocalImage(s.CurrentLocalImage) == nil {
		s.CurrentLocalImage = ""
	}
}

// CenterOrDefault returns the gradient centre, defaulting to 50% on both axes.
func (g GradientSettings) CenterOrDefault() (float64, float64) {
	x, y := float64(defaultCenterValue), float64(defaultCenterValue)
	if g.CenterX != nil {
		x = *g.CenterX
	}
	if g.CenterY != nil {
		y = *g.CenterY
	}
	return x, y
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
