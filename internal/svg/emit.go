package svg

import (
	"log/slog"

	"github.com/ironsheep/sketch-tools-mcp/internal/log"
	"github.com/ironsheep/sketch-tools-mcp/internal/raster"
	"github.com/ironsheep/sketch-tools-mcp/internal/skeleton"
	"github.com/ironsheep/sketch-tools-mcp/internal/smooth"
	"github.com/ironsheep/sketch-tools-mcp/internal/trace"
)

// DefaultFrame is the side of the square output canvas.
const DefaultFrame = 256

// Options controls document generation.
type Options struct {
	Frame     int
	Smoothing float64
	Style     Style
}

// DefaultOptions returns a 256 frame, smoothing 1 and the default style.
func DefaultOptions() Options {
	return Options{
		Frame:     DefaultFrame,
		Smoothing: smooth.DefaultSmoothing,
		Style:     DefaultStyle(),
	}
}

// Emit thins, traces and smooths mask and returns the resulting drawing.
//
// Every traced path is fitted on its own. Paths too short to fit, and paths
// whose fit fails, are drawn through their original pixel centers. A mask without edges yields a
// document with an empty group.
func Emit(mask *raster.Mask, opts Options) *Document {
	logger := log.WithComponent("svg")

	thin := skeleton.Skeletonize(mask)
	doc := &Document{
		Frame:     opts.Frame,
		Transform: NewTransform(mask.Width(), mask.Height(), float64(opts.Frame)),
		Style:     opts.Style,
	}

	paths := trace.Trace(thin)
	for i, p := range paths {
		orig := smooth.FromPath(p)
		res := smooth.Smooth(orig, opts.Smoothing)
		pts, traced := res.Points, len(orig) < smooth.MinPoints
		if res.Err != nil {
			logger.Debug("curve fit failed, using traced points",
				slog.Int("path", i), slog.Int("points", len(orig)), slog.Any("err", res.Err))
			pts, traced = orig, true
			doc.Fallbacks++
		}
		if len(pts) > 1 {
			doc.Paths = append(doc.Paths, pts)
			doc.Traced = append(doc.Traced, traced)
		}
	}

	logger.Debug("emitted document",
		slog.Int("width", mask.Width()),
		slog.Int("height", mask.Height()),
		slog.Int("edge_pixels", thin.Count()),
		slog.Int("paths", len(doc.Paths)),
		slog.Int("fallbacks", doc.Fallbacks))
	return doc
}
