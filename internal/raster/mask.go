package raster

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/anthonynsimon/bild/imgio"
)

// Mask is an immutable binary grid where true marks an edge pixel.
//
// Masks are created whole (by Canny, by NewMaskFunc or MaskFromRows) and only
// read afterwards, so a mask can be shared freely between goroutines.
type Mask struct {
	width  int
	height int
	pix    []bool
}

// NewMaskFunc builds a width×height mask whose pixel (x, y) is set when
// fn(x, y) returns true. fn is called once per pixel in row-major order.
func NewMaskFunc(width, height int, fn func(x, y int) bool) *Mask {
	m := &Mask{width: width, height: height, pix: make([]bool, width*height)}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			m.pix[y*width+x] = fn(x, y)
		}
	}
	return m
}

// MaskFromRows builds a mask from rows of booleans indexed [y][x].
// All rows must have the same length as the first one.
func MaskFromRows(rows [][]bool) *Mask {
	height := len(rows)
	width := 0
	if height > 0 {
		width = len(rows[0])
	}
	return NewMaskFunc(width, height, func(x, y int) bool {
		return x < len(rows[y]) && rows[y][x]
	})
}

// Width returns the mask width in pixels.
func (m *Mask) Width() int { return m.width }

// Height returns the mask height in pixels.
func (m *Mask) Height() int { return m.height }

// At reports whether (x, y) is an edge pixel. Out-of-range coordinates are
// never edges.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return false
	}
	return m.pix[y*m.width+x]
}

// Count returns the number of edge pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.pix {
		if v {
			n++
		}
	}
	return n
}

// Image renders the mask as a grayscale image: edges white (255), background
// black (0).
func (m *Mask) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.width, m.height))
	for i, v := range m.pix {
		if v {
			img.Pix[i] = 255
		}
	}
	return img
}

// SavePNG writes the mask image to path as PNG.
func (m *Mask) SavePNG(path string) error {
	if err := imgio.Save(path, m.Image(), imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("failed to save mask %s: %w", path, err)
	}
	return nil
}

// MaskImageResult contains an edge mask encoded as base64 PNG.
type MaskImageResult struct {
	// Width of the mask in pixels.
	Width int `json:"width"`

	// Height of the mask in pixels.
	Height int `json:"height"`

	// EdgePixels is the number of pixels marked as edges.
	EdgePixels int `json:"edge_pixels"`

	// ImageBase64 is the mask encoded as base64 PNG, edges in white.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png".
	MimeType string `json:"mime_type"`
}

// EncodePNG encodes the mask as a base64 PNG result.
func (m *Mask) EncodePNG() (*MaskImageResult, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, m.Image()); err != nil {
		return nil, fmt.Errorf("failed to encode edge image: %w", err)
	}
	return &MaskImageResult{
		Width:       m.width,
		Height:      m.height,
		EdgePixels:  m.Count(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
