package background

import (
	"strings"

	"github.com/jmylchreest/tabcanvas/internal/models"
)

// neutralPercent is the brightness, contrast and saturation value that leaves
// the image untouched.
const neutralPercent = 100

// ResolveFilters returns the CSS filter chain for d, always in the order blur,
// brightness, contrast, saturate. Neutral values are omitted and an empty chain
// is "none". Negative blur counts as no blur.
func ResolveFilters(d models.DisplaySettings) string {
	var parts []string
	if d.Blur > 0 {
		parts = append(parts, "blur("+number(d.Blur)+"px)")
	}
	if d.Brightness != neutralPercent {
		parts = append(parts, "brightness("+percent(d.Brightness)+")")
	}
	if d.Contrast != neutralPercent {
		parts = append(parts, "contrast("+percent(d.Contrast)+")")
	}
	if d.Saturation != neutralPercent {
		parts = append(parts, "saturate("+percent(d.Saturation)+")")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}
