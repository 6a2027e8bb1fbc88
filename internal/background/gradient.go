package background

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/jmylchreest/tabcanvas/internal/models"
)

// DefaultGradientCSS is rendered when a gradient has no usable colour stops.
const DefaultGradientCSS = "linear-gradient(135deg, #667eea 0%, #764ba2 100%)"

const (
	defaultRadialShape = "ellipse"
	defaultRadialSize  = "farthest-corner"
)

// GradientCSS builds the CSS gradient function for g. Stops are emitted in
// ascending position order. Stops without a colour are skipped; a single
// remaining stop becomes a flat two stop gradient and none at all yields
// DefaultGradientCSS.
func GradientCSS(g models.GradientSettings) string {
	stops := validStops(g.Colors)
	switch len(stops) {
	case 0:
		return DefaultGradientCSS
	case 1:
		stops = []models.GradientStop{
			{Color: stops[0].Color, Position: 0},
			{Color: stops[0].Color, Position: 100},
		}
	}

	list := formatStops(stops)
	cx, cy := g.CenterOrDefault()

	switch g.Type {
	case models.GradientTypeRadial:
		shape := cmp.Or(strings.TrimSpace(g.Shape), defaultRadialShape)
		size := cmp.Or(strings.TrimSpace(g.Size), defaultRadialSize)
		return "radial-gradient(" + shape + " " + size + " at " + percent(cx) + " " + percent(cy) + ", " + list + ")"
	case models.GradientTypeConic:
		return "conic-gradient(from " + degrees(g.Direction) + " at " + percent(cx) + " " + percent(cy) + ", " + list + ")"
	default:
		return "linear-gradient(" + degrees(g.Direction) + ", " + list + ")"
	}
}

// validStops drops stops with an empty colour and sorts the rest by position.
// The sort is stable so stops sharing a position keep their input order.
func validStops(in []models.GradientStop) []models.GradientStop {
	out := make([]models.GradientStop, 0, len(in))
	for _, s := range in {
		c := strings.TrimSpace(s.Color)
		if c == "" {
			continue
		}
		out = append(out, models.GradientStop{Color: c, Position: s.Position})
	}
	slices.SortStableFunc(out, func(a, b models.GradientStop) int {
		return cmp.Compare(a.Position, b.Position)
	})
	return out
}

func formatStops(stops []models.GradientStop) string {
	parts := make([]string, len(stops))
	for i, s := range stops {
		parts[i] = s.Color + " " + percent(s.Position)
	}
	return strings.Join(parts, ", ")
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func percent(v float64) string {
	return number(v) + "%"
}

func degrees(v float64) string {
	return number(v) + "deg"
}
