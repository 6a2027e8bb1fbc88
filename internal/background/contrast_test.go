package background

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/tabcanvas/internal/models"
)

func TestTextTheme(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.BackgroundSettings)
		want   string
	}{
		{"dark colour", func(s *models.BackgroundSettings) {
			s.Type = models.BackgroundTypeColor
			s.Color = "#101010"
		}, ForegroundLight},
		{"light colour", func(s *models.BackgroundSettings) {
			s.Type = models.BackgroundTypeColor
			s.Color = "#fafafa"
		}, ForegroundDark},
		{"named colour", func(s *models.BackgroundSettings) {
			s.Type = models.BackgroundTypeColor
			s.Color = "white"
		}, ForegroundDark},
		{"unparseable colour", func(s *models.BackgroundSettings) {
			s.Type = models.BackgroundTypeColor
			s.Color = "rgb(1, 2, 3)"
		}, ForegroundLight},
		{"light gradient", func(s *models.BackgroundSettings) {
			s.Gradient.Colors = []models.GradientStop{{Color: "#ffffff"}, {Color: "#eeeeee", Position: 100}}
		}, ForegroundDark},
		{"dark gradient", func(s *models.BackgroundSettings) {
			s.Gradient.Colors = []models.GradientStop{{Color: "#0f0c29"}, {Color: "#302b63", Position: 100}}
		}, ForegroundLight},
		{"remote image", func(s *models.BackgroundSettings) {
			s.Type = models.BackgroundTypeUnsplash
		}, ForegroundLight},
		{"strong light overlay", func(s *models.BackgroundSettings) {
			s.Type = models.BackgroundTypeUnsplash
			s.Display.Overlay = true
			s.Display.OverlayColor = "#ffffff"
			s.Display.OverlayOpacity = 80
		}, ForegroundDark},
		{"weak overlay ignored", func(s *models.BackgroundSettings) {
			s.Type = models.BackgroundTypeColor
			s.Color = "#000000"
			s.Display.Overlay = true
			s.Display.OverlayColor = "#ffffff"
			s.Display.OverlayOpacity = 20
		}, ForegroundLight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := models.DefaultBackgroundSettings()
			tt.mutate(&s)
			assert.Equal(t, tt.want, TextTheme(s))
		})
	}
}
