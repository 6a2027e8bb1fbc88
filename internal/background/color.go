package background

import (
	"math"
	"regexp"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

var (
	// hexAlphaPattern matches #rrggbbaa, which go-colorful does not parse.
	hexAlphaPattern = regexp.MustCompile(`^#[0-9a-fA-F]{8}$`)
	// functionalPattern matches rgb(), rgba(), hsl() and hsla() notation.
	functionalPattern = regexp.MustCompile(`^(rgba?|hsla?)\(\s*[-0-9.%]+(\s*[,\s]\s*[-0-9.%]+){2}(\s*[,/]\s*[0-9.%]+)?\s*\)$`)
)

// IsColor reports whether s is a CSS colour the settings layer accepts.
// Supported: hex (#rgb, #rrggbb, #rrggbbaa), rgb/rgba/hsl/hsla functions,
// "transparent", "currentcolor" and the SVG named colours.
func IsColor(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if strings.HasPrefix(s, "#") {
		if hexAlphaPattern.MatchString(s) {
			return true
		}
		_, err := colorful.Hex(s)
		return err == nil
	}
	lower := strings.ToLower(s)
	if lower == "transparent" || lower == "currentcolor" {
		return true
	}
	if _, ok := colornames.Map[lower]; ok {
		return true
	}
	return functionalPattern.MatchString(lower)
}

// NormalizeHex lower-cases a hex colour and expands #rgb to #rrggbb.
// Values that are not plain hex colours are returned unchanged.
func NormalizeHex(s string) string {
	c, err := colorful.Hex(strings.TrimSpace(s))
	if err != nil {
		return s
	}
	return c.Hex()
}

// Luminance returns the WCAG relative luminance of a hex or named colour in
// [0,1]. ok is false when the colour cannot be parsed.
func Luminance(s string) (lum float64, ok bool) {
	c, ok := parseColor(s)
	if !ok {
		return 0, false
	}
	r, g, b := c.LinearRgb()
	return clampUnit(0.2126*r + 0.7152*g + 0.0722*b), true
}

// IsDark reports whether text over s should be light.
func IsDark(s string) bool {
	lum, ok := Luminance(s)
	return ok && lum < darkThreshold
}

func parseColor(s string) (colorful.Color, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if hexAlphaPattern.MatchString(s) {
		s = s[:7]
	}
	if c, err := colorful.Hex(s); err == nil {
		return c, true
	}
	if rgba, found := colornames.Map[s]; found {
		c, _ := colorful.MakeColor(rgba)
		return c, true
	}
	return colorful.Color{}, false
}

// clampUnit keeps float noise inside [0,1].
func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
