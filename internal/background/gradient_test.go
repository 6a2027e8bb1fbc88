package background

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/tabcanvas/internal/models"
)

func f(v float64) *float64 { return &v }

func TestGradientCSS(t *testing.T) {
	twoStops := []models.GradientStop{{Color: "#ff0000", Position: 100}, {Color: "#0000ff", Position: 0}}

	tests := []struct {
		name string
		g    models.GradientSettings
		want string
	}{
		{
			name: "linear sorted",
			g:    models.GradientSettings{Type: models.GradientTypeLinear, Direction: 90, Colors: twoStops},
			want: "linear-gradient(90deg, #0000ff 0%, #ff0000 100%)",
		},
		{
			name: "radial defaults",
			g:    models.GradientSettings{Type: models.GradientTypeRadial, Colors: twoStops},
			want: "radial-gradient(ellipse farthest-corner at 50% 50%, #0000ff 0%, #ff0000 100%)",
		},
		{
			name: "radial explicit",
			g: models.GradientSettings{
				Type: models.GradientTypeRadial, Shape: "circle", Size: "closest-side",
				CenterX: f(25), CenterY: f(75), Colors: twoStops,
			},
			want: "radial-gradient(circle closest-side at 25% 75%, #0000ff 0%, #ff0000 100%)",
		},
		{
			name: "conic",
			g:    models.GradientSettings{Type: models.GradientTypeConic, Direction: 45, CenterX: f(10), Colors: twoStops},
			want: "conic-gradient(from 45deg at 10% 50%, #0000ff 0%, #ff0000 100%)",
		},
		{
			name: "single valid stop duplicated",
			g: models.GradientSettings{Type: models.GradientTypeLinear, Direction: 180, Colors: []models.GradientStop{
				{Color: "#abcdef", Position: 40}, {Color: "", Position: 60},
			}},
			want: "linear-gradient(180deg, #abcdef 0%, #abcdef 100%)",
		},
		{
			name: "no valid stops",
			g:    models.GradientSettings{Type: models.GradientTypeRadial, Colors: []models.GradientStop{{Color: " "}}},
			want: DefaultGradientCSS,
		},
		{
			name: "duplicate positions kept in input order",
			g: models.GradientSettings{Type: models.GradientTypeLinear, Direction: 0, Colors: []models.GradientStop{
				{Color: "red", Position: 50}, {Color: "blue", Position: 50}, {Color: "green", Position: 0},
			}},
			want: "linear-gradient(0deg, green 0%, red 50%, blue 50%)",
		},
		{
			name: "fractional positions",
			g: models.GradientSettings{Type: models.GradientTypeLinear, Direction: 12.5, Colors: []models.GradientStop{
				{Color: "#000", Position: 33.3}, {Color: "#fff", Position: 66.6},
			}},
			want: "linear-gradient(12.5deg, #000 33.3%, #fff 66.6%)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GradientCSS(tt.g))
		})
	}
}

func TestGradientCSS_DoesNotReorderInput(t *testing.T) {
	stops := []models.GradientStop{{Color: "#fff", Position: 80}, {Color: "#000", Position: 0}}
	GradientCSS(models.GradientSettings{Type: models.GradientTypeLinear, Colors: stops})
	assert.Equal(t, "#fff", stops[0].Color)
}
