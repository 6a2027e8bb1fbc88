package models

import (
	"strconv"
	"strings"
)

// MainStyle is the render-ready description of the background layer.
type MainStyle struct {
	BackgroundImage    string  `json:"backgroundImage"`
	BackgroundColor    string  `json:"backgroundColor"`
	BackgroundSize     string  `json:"backgroundSize"`
	BackgroundPosition string  `json:"backgroundPosition"`
	BackgroundRepeat   string  `json:"backgroundRepeat"`
	Opacity            float64 `json:"opacity"`
	Filter             string  `json:"filter"`
}

// OverlayStyle is the tint layer drawn above the background. The zero value
// marshals to an empty JSON object.
type OverlayStyle struct {
	BackgroundColor string   `json:"backgroundColor,omitempty"`
	Opacity         *float64 `json:"opacity,omitempty"`
}

// ResolvedStyle is the derived output of style resolution. It is never stored.
type ResolvedStyle struct {
	Main        MainStyle    `json:"main"`
	Overlay     OverlayStyle `json:"overlay"`
	HasOverlay  bool         `json:"hasOverlay"`
	Placeholder bool         `json:"placeholder"`
}

// CSS renders the style as CSS rules for selector. Properties are written in a
// fixed order so identical styles produce identical text.
func (s ResolvedStyle) CSS(selector string) string {
	if selector == "" {
		selector = "body"
	}

	var b strings.Builder
	b.WriteString(selector)
	b.WriteString(" {\n")
	writeDecl(&b, "background-image", s.Main.BackgroundImage)
	writeDecl(&b, "background-color", s.Main.BackgroundColor)
	writeDecl(&b, "background-size", s.Main.BackgroundSize)
	writeDecl(&b, "background-position", s.Main.BackgroundPosition)
	writeDecl(&b, "background-repeat", s.Main.BackgroundRepeat)
	writeDecl(&b, "opacity", formatNumber(s.Main.Opacity))
	writeDecl(&b, "filter", s.Main.Filter)
	b.WriteString("}\n")

	if s.HasOverlay {
		opacity := 0.0
		if s.Overlay.Opacity != nil {
			opacity = *s.Overlay.Opacity
		}
		b.WriteString(selector)
		b.WriteString("::after {\n")
		writeDecl(&b, "content", `""`)
		writeDecl(&b, "position", "absolute")
		writeDecl(&b, "inset", "0")
		writeDecl(&b, "pointer-events", "none")
		writeDecl(&b, "background-color", s.Overlay.BackgroundColor)
		writeDecl(&b, "opacity", formatNumber(opacity))
		b.WriteString("}\n")
	}
	return b.String()
}

func writeDecl(b *strings.Builder, prop, value string) {
	if value == "" {
		return
	}
	b.WriteString("  ")
	b.WriteString(prop)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString(";\n")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
