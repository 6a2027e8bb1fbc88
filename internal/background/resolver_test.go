package background

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/tabcanvas/internal/models"
)

func settings(t models.BackgroundType) models.BackgroundSettings {
	s := models.DefaultBackgroundSettings()
	s.Type = t
	return s
}

func TestResolveBackgroundLayer_Color(t *testing.T) {
	s := settings(models.BackgroundTypeColor)
	s.Color = "#336699"

	layer := ResolveBackgroundLayer(s)
	assert.Equal(t, "none", layer.BackgroundImage)
	assert.Equal(t, "#336699", layer.BackgroundColor)
	assert.False(t, layer.Placeholder)
}

func TestResolveBackgroundLayer_Gradient(t *testing.T) {
	s := settings(models.BackgroundTypeGradient)
	s.Gradient.Colors = []models.GradientStop{
		{Color: "#fff", Position: 80},
		{Color: "#000", Position: 0},
	}

	layer := ResolveBackgroundLayer(s)
	assert.Equal(t, "linear-gradient(135deg, #000 0%, #fff 80%)", layer.BackgroundImage)
}

func TestResolveBackgroundLayer_Local(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		s := settings(models.BackgroundTypeLocal)
		s.LocalImages = []models.LocalImage{{ID: "img1", Data: "data:image/png;base64,iVBOR"}}
		s.CurrentLocalImage = "img1"

		layer := ResolveBackgroundLayer(s)
		assert.Equal(t, "url(data:image/png;base64,iVBOR)", layer.BackgroundImage)
		assert.False(t, layer.Placeholder)
	})

	t.Run("missing reference", func(t *testing.T) {
		s := settings(models.BackgroundTypeLocal)
		s.CurrentLocalImage = "missing-id"
		s.LocalImages = []models.LocalImage{}

		var style models.ResolvedStyle
		require.NotPanics(t, func() { style = Resolve(s) })
		assert.True(t, style.Placeholder)
		assert.Equal(t, "none", style.Main.BackgroundImage)
		assert.Equal(t, "transparent", style.Main.BackgroundColor)
	})

	t.Run("unset reference", func(t *testing.T) {
		s := settings(models.BackgroundTypeLocal)
		assert.True(t, ResolveBackgroundLayer(s).Placeholder)
	})
}

func TestResolveBackgroundLayer_Remote(t *testing.T) {
	s := settings(models.BackgroundTypeUnsplash)
	assert.True(t, ResolveBackgroundLayer(s).Placeholder)

	s.CurrentUnsplashImage = &models.BackgroundImage{ID: "x", URL: "https://img.example.com/a b.jpg"}
	layer := ResolveBackgroundLayer(s)
	assert.False(t, layer.Placeholder)
	assert.Equal(t, "url(https://img.example.com/a%20b.jpg)", layer.BackgroundImage)
}

func TestResolveBackgroundLayer_UnknownType(t *testing.T) {
	s := settings("video")
	assert.True(t, ResolveBackgroundLayer(s).Placeholder)
}

func TestResolveFilters(t *testing.T) {
	tests := []struct {
		name    string
		display models.DisplaySettings
		want    string
	}{
		{"all neutral", models.DisplaySettings{Blur: 0, Brightness: 100, Contrast: 100, Saturation: 100}, "none"},
		{"blur and brightness", models.DisplaySettings{Blur: 5, Brightness: 120, Contrast: 100, Saturation: 100}, "blur(5px) brightness(120%)"},
		{"all set keeps order", models.DisplaySettings{Blur: 2.5, Brightness: 90, Contrast: 110, Saturation: 0}, "blur(2.5px) brightness(90%) contrast(110%) saturate(0%)"},
		{"negative blur ignored", models.DisplaySettings{Blur: -4, Brightness: 100, Contrast: 100, Saturation: 150}, "saturate(150%)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveFilters(tt.display))
		})
	}
}

func TestResolveSizeAndRepeat(t *testing.T) {
	tests := []struct {
		name     string
		bgType   models.BackgroundType
		fill     models.FillMode
		wantSize string
		wantRep  string
	}{
		{"color ignores fill", models.BackgroundTypeColor, models.FillModeContain, "auto", "no-repeat"},
		{"gradient ignores fill", models.BackgroundTypeGradient, models.FillModeCover, "auto", "no-repeat"},
		{"local cover", models.BackgroundTypeLocal, models.FillModeCover, "cover", "no-repeat"},
		{"remote contain", models.BackgroundTypeUnsplash, models.FillModeContain, "contain", "no-repeat"},
		{"remote repeat", models.BackgroundTypeUnsplash, models.FillModeRepeat, "auto", "repeat"},
		{"local auto", models.BackgroundTypeLocal, models.FillModeAuto, "auto", "no-repeat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := settings(tt.bgType)
			s.Display.FillMode = tt.fill

			got := ResolveSizeAndRepeat(s)
			assert.Equal(t, tt.wantSize, got.BackgroundSize)
			assert.Equal(t, tt.wantRep, got.BackgroundRepeat)
			assert.Equal(t, "center", got.BackgroundPosition)
		})
	}
}

func TestResolveOverlay(t *testing.T) {
	d := models.DefaultDisplaySettings()

	overlay, ok := ResolveOverlay(d)
	assert.False(t, ok)
	assert.Equal(t, models.OverlayStyle{}, overlay)

	d.Overlay = true
	d.OverlayColor = "#112233"
	d.OverlayOpacity = 45
	overlay, ok = ResolveOverlay(d)
	require.True(t, ok)
	assert.Equal(t, "#112233", overlay.BackgroundColor)
	require.NotNil(t, overlay.Opacity)
	assert.InDelta(t, 0.45, *overlay.Opacity, 1e-9)
}

func TestResolve_OverlayDisabledMarshalsEmptyObject(t *testing.T) {
	data, err := json.Marshal(Resolve(settings(models.BackgroundTypeColor)))
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.JSONEq(t, "{}", string(raw["overlay"]))
	assert.JSONEq(t, "false", string(raw["hasOverlay"]))
}

func TestResolve_Idempotent(t *testing.T) {
	s := settings(models.BackgroundTypeGradient)
	s.Gradient.Type = models.GradientTypeConic
	s.Display.Blur = 3
	s.Display.Contrast = 130
	s.Display.Overlay = true

	first := Resolve(s)
	second := Resolve(s)
	assert.Equal(t, first, second)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestResolve_DoesNotMutateInput(t *testing.T) {
	s := settings(models.BackgroundTypeGradient)
	s.Gradient.Colors = []models.GradientStop{{Color: "#fff", Position: 90}, {Color: "#000", Position: 10}}
	before := s.Clone()

	Resolve(s)
	assert.Equal(t, before, s)
}

func TestResolve_TrustsOutOfRangeValues(t *testing.T) {
	s := settings(models.BackgroundTypeColor)
	s.Display.Opacity = 150
	s.Display.Brightness = 300

	style := Resolve(s)
	assert.Equal(t, 1.5, style.Main.Opacity)
	assert.Equal(t, "brightness(300%)", style.Main.Filter)
}
