// Package pipeline runs the full image-to-line-drawing conversion.
//
// One call decodes the image, normalizes it to a grayscale working copy,
// detects edges at a fine and a coarse blur scale and turns each edge mask
// into its own SVG document. Calls share no state and may run concurrently.
package pipeline

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/ironsheep/sketch-tools-mcp/internal/log"
	"github.com/ironsheep/sketch-tools-mcp/internal/raster"
	"github.com/ironsheep/sketch-tools-mcp/internal/svg"
)

// Options configures a conversion.
type Options struct {
	// MaxDimension caps the longest image side before edge detection.
	// Zero disables downscaling.
	MaxDimension int

	// SigmaLow and SigmaHigh are the two Gaussian blur scales.
	SigmaLow  float64
	SigmaHigh float64

	// LowThreshold and HighThreshold are the Canny hysteresis thresholds.
	LowThreshold  float64
	HighThreshold float64

	// Emit controls frame size, smoothing and stroke style.
	Emit svg.Options

	// KeepMasks retains both edge masks in the result.
	KeepMasks bool
}

// DefaultOptions returns the standard settings: 800 px working size, blur
// scales 1 and 2, thresholds 0.1 and 0.2 and the default emitter options.
func DefaultOptions() Options {
	canny := raster.DefaultCannyOptions()
	return Options{
		MaxDimension:  800,
		SigmaLow:      1.0,
		SigmaHigh:     2.0,
		LowThreshold:  canny.Low,
		HighThreshold: canny.High,
		Emit:          svg.DefaultOptions(),
	}
}

// Result holds the two drawings of one image.
type Result struct {
	// Low is drawn from the fine-scale edges, High from the coarse ones.
	Low  *svg.Document
	High *svg.Document

	// Width and Height are the working dimensions after downscaling.
	Width  int
	Height int

	// LowMask and HighMask are set only with Options.KeepMasks.
	LowMask  *raster.Mask
	HighMask *raster.Mask
}

// Process converts a base64 payload, optionally prefixed with a data URI
// header, into two SVG documents.
func Process(data string, opts Options) (*Result, error) {
	raw, err := raster.DecodePayload(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	return ProcessBytes(raw, opts)
}

// ProcessBytes converts encoded image bytes.
func ProcessBytes(raw []byte, opts Options) (*Result, error) {
	img, err := raster.Decode(raw)
	if err != nil {
		return nil, err
	}
	return ProcessImage(img, opts), nil
}

// ProcessImage converts a decoded image.
func ProcessImage(img image.Image, opts Options) *Result {
	logger := log.WithComponent("pipeline")
	b := img.Bounds()

	gray := raster.Normalize(img, opts.MaxDimension)
	logger.Debug("normalized image",
		slog.Int("src_width", b.Dx()), slog.Int("src_height", b.Dy()),
		slog.Int("width", gray.Width), slog.Int("height", gray.Height))

	res := &Result{Width: gray.Width, Height: gray.Height}
	res.Low, res.LowMask = draw(gray, opts.SigmaLow, opts)
	res.High, res.HighMask = draw(gray, opts.SigmaHigh, opts)

	logger.Debug("processed image",
		slog.Int("paths_low", len(res.Low.Paths)),
		slog.Int("paths_high", len(res.High.Paths)),
		slog.Int("fallbacks", res.Low.Fallbacks+res.High.Fallbacks))
	return res
}

// DrawImage emits the drawing of a decoded image at a single blur scale.
// It matches the corresponding document of ProcessImage without running the
// other scale.
func DrawImage(img image.Image, sigma float64, opts Options) *svg.Document {
	gray := raster.Normalize(img, opts.MaxDimension)
	return svg.Emit(Edges(gray, sigma, opts), opts.Emit)
}

// draw detects edges at one blur scale and emits their drawing. The mask is
// dropped once emitted unless the caller asked to keep it.
func draw(gray *raster.Gray, sigma float64, opts Options) (*svg.Document, *raster.Mask) {
	mask := Edges(gray, sigma, opts)
	doc := svg.Emit(mask, opts.Emit)
	if !opts.KeepMasks {
		return doc, nil
	}
	return doc, mask
}

// Edges runs Canny on a normalized image at the given blur scale.
func Edges(gray *raster.Gray, sigma float64, opts Options) *raster.Mask {
	return raster.Canny(gray, raster.CannyOptions{
		Sigma: sigma,
		Low:   opts.LowThreshold,
		High:  opts.HighThreshold,
	})
}
