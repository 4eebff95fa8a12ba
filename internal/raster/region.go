package raster

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Region is a rectangle in image coordinates relative to the top-left
// corner. X2 and Y2 are exclusive.
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// RegionNames lists the names accepted by NamedRegion.
var RegionNames = []string{
	"top-left", "top-right", "bottom-left", "bottom-right",
	"top-half", "bottom-half", "left-half", "right-half", "center",
}

// NamedRegion resolves a quadrant, half or "center" (the middle 50% on each
// axis) of a width x height image.
func NamedRegion(width, height int, name string) (Region, error) {
	midX, midY := width/2, height/2
	switch name {
	case "top-left":
		return Region{0, 0, midX, midY}, nil
	case "top-right":
		return Region{midX, 0, width, midY}, nil
	case "bottom-left":
		return Region{0, midY, midX, height}, nil
	case "bottom-right":
		return Region{midX, midY, width, height}, nil
	case "top-half":
		return Region{0, 0, width, midY}, nil
	case "bottom-half":
		return Region{0, midY, width, height}, nil
	case "left-half":
		return Region{0, 0, midX, height}, nil
	case "right-half":
		return Region{midX, 0, width, height}, nil
	case "center":
		qW, qH := width/4, height/4
		return Region{qW, qH, width - qW, height - qH}, nil
	default:
		return Region{}, fmt.Errorf("unknown region: %s", name)
	}
}

// Crop extracts r from img. The result always has its origin at (0,0).
func Crop(img image.Image, r Region) (image.Image, error) {
	b := img.Bounds()
	if r.X1 < 0 || r.Y1 < 0 || r.X2 > b.Dx() || r.Y2 > b.Dy() {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds %dx%d",
			r.X1, r.Y1, r.X2, r.Y2, b.Dx(), b.Dy())
	}
	if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}
	rect := image.Rect(r.X1, r.Y1, r.X2, r.Y2).Add(b.Min)
	return imaging.Crop(img, rect), nil
}
