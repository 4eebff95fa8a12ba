package svg

import (
	"math"
	"strconv"
	"strings"

	"github.com/ironsheep/sketch-tools-mcp/internal/smooth"
)

// Transform maps mask coordinates into the square output frame: uniform
// scale first, then translation.
type Transform struct {
	Scale   float64 `json:"scale"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
}

// NewTransform fits a width×height mask into a frame×frame square,
// preserving aspect ratio and centering the short axis.
func NewTransform(width, height int, frame float64) Transform {
	if width <= 0 || height <= 0 {
		return Transform{Scale: 1}
	}
	scale := math.Min(frame/float64(width), frame/float64(height))
	return Transform{
		Scale:   scale,
		OffsetX: (frame - float64(width)*scale) / 2,
		OffsetY: (frame - float64(height)*scale) / 2,
	}
}

// Apply maps a point from mask space to frame space.
func (t Transform) Apply(v smooth.Vec) smooth.Vec {
	return smooth.Vec{X: v.X*t.Scale + t.OffsetX, Y: v.Y*t.Scale + t.OffsetY}
}

// String renders the transform attribute value.
func (t Transform) String() string {
	return "translate(" + formatNumber(t.OffsetX) + "," + formatNumber(t.OffsetY) +
		") scale(" + formatNumber(t.Scale) + ")"
}

// formatNumber prints the shortest decimal that round-trips, keeping a
// trailing ".0" on integral values.
func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// formatCoord rounds a path coordinate to one decimal.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// formatPixel prints an integral pixel coordinate without a fraction.
func formatPixel(v float64) string {
	return strconv.FormatFloat(v, 'f', 0, 64)
}
