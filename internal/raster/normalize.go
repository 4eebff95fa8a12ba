package raster

import (
	"image"

	"github.com/disintegration/imaging"
)

// Gray is a single-channel image with float samples in [0,1], stored row-major.
type Gray struct {
	Width  int
	Height int
	Pix    []float64
}

// NewGray allocates a black Gray image.
func NewGray(width, height int) *Gray {
	return &Gray{
		Width:  width,
		Height: height,
		Pix:    make([]float64, width*height),
	}
}

// At returns the sample at (x, y). Coordinates must be in range.
func (g *Gray) At(x, y int) float64 {
	return g.Pix[y*g.Width+x]
}

// WorkingSize returns the dimensions an image of width×height is reduced to
// when its long edge is capped at maxDim.
//
// Images that already fit are returned unchanged (never upscaled). Otherwise
// both sides are multiplied by min(maxDim/width, maxDim/height) and truncated,
// with a floor of one pixel. maxDim <= 0 disables the cap.
func WorkingSize(width, height, maxDim int) (int, int) {
	if maxDim <= 0 || (width <= maxDim && height <= maxDim) {
		return width, height
	}
	ratio := min(float64(maxDim)/float64(width), float64(maxDim)/float64(height))
	w := max(int(float64(width)*ratio), 1)
	h := max(int(float64(height)*ratio), 1)
	return w, h
}

// Normalize converts an image into the pipeline's working representation.
//
// The steps are:
//
//  1. Alpha removal: every pixel becomes opaque; the stored color channels are
//     kept as they are (no compositing against a background).
//
//  2. Downscaling: if either side exceeds maxDim the image is resized to
//     WorkingSize with a Lanczos filter.
//
//  3. Luma: RGB -> 8-bit luminance using ITU-R BT.601 weights
//     (0.299*R + 0.587*G + 0.114*B), rounded.
//
//  4. Scaling: samples are divided by 255 into [0,1].
func Normalize(img image.Image, maxDim int) *Gray {
	src := imaging.Clone(img)
	for i := 3; i < len(src.Pix); i += 4 {
		src.Pix[i] = 0xff
	}

	b := src.Bounds()
	w, h := WorkingSize(b.Dx(), b.Dy(), maxDim)
	if w != b.Dx() || h != b.Dy() {
		src = imaging.Resize(src, w, h, imaging.Lanczos)
	}

	luma := imaging.Grayscale(src)

	lb := luma.Bounds()
	out := NewGray(lb.Dx(), lb.Dy())
	for y := 0; y < out.Height; y++ {
		row := luma.Pix[y*luma.Stride:]
		for x := 0; x < out.Width; x++ {
			out.Pix[y*out.Width+x] = float64(row[x*4]) / 255.0
		}
	}
	return out
}
