package svg

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Style controls how every path of a document is stroked.
type Style struct {
	Stroke      colorful.Color
	StrokeWidth float64
}

// DefaultStyle is a black 0.5-unit stroke.
func DefaultStyle() Style {
	return Style{Stroke: colorful.Color{R: 0, G: 0, B: 0}, StrokeWidth: 0.5}
}

var namedColors = map[string]string{
	"black": "#000000",
	"white": "#ffffff",
	"gray":  "#808080",
	"grey":  "#808080",
	"red":   "#ff0000",
	"green": "#008000",
	"blue":  "#0000ff",
}

// ParseColor accepts a #rrggbb or #rgb hex string or one of a few basic color
// names.
func ParseColor(s string) (colorful.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if hex, ok := namedColors[s]; ok {
		s = hex
	}
	if len(s) == 4 && s[0] == '#' {
		s = "#" + strings.Repeat(s[1:2], 2) + strings.Repeat(s[2:3], 2) + strings.Repeat(s[3:4], 2)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return c, nil
}

// strokeAttr renders the stroke color for the stroke attribute. Black keeps
// its keyword form.
func (s Style) strokeAttr() string {
	hex := s.Stroke.Clamped().Hex()
	if hex == "#000000" {
		return "black"
	}
	return hex
}
