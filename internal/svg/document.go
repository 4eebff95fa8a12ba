// Package svg turns edge masks into stroked vector line drawings.
package svg

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ironsheep/sketch-tools-mcp/internal/smooth"
)

// Document is one square line drawing. Paths are kept in mask coordinates;
// the transform places them in the frame when rendered.
type Document struct {
	Frame     int
	Transform Transform
	Style     Style
	Paths     [][]smooth.Vec

	// Traced marks paths drawn through their traced pixel centers rather
	// than a fitted curve. Their coordinates are written as integers.
	// Missing entries count as false.
	Traced []bool

	// Fallbacks counts paths drawn through their original points because the
	// curve fit failed.
	Fallbacks int
}

// PathData renders path i as "M x,y L x,y ...". Fitted coordinates are
// rounded to one decimal; traced pixel coordinates are written as integers.
func (d *Document) PathData(i int) string {
	pts := d.Paths[i]
	format := formatCoord
	if i < len(d.Traced) && d.Traced[i] {
		format = formatPixel
	}
	var b strings.Builder
	b.Grow(len(pts) * 12)
	for j, p := range pts {
		if j == 0 {
			b.WriteString("M ")
		} else {
			b.WriteString(" L ")
		}
		b.WriteString(format(p.X))
		b.WriteByte(',')
		b.WriteString(format(p.Y))
	}
	return b.String()
}

// WriteTo serializes the document as a standalone SVG file.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	var n int64
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		c, err := fmt.Fprintf(w, format, args...)
		n += int64(c)
		werr = err
	}

	wf("<?xml version=\"1.0\" encoding=\"utf-8\" ?>\n")
	wf("<svg baseProfile=\"full\" height=\"%d\" version=\"1.1\" viewBox=\"0 0 %d %d\" width=\"%d\" "+
		"xmlns=\"http://www.w3.org/2000/svg\" xmlns:ev=\"http://www.w3.org/2001/xml-events\" "+
		"xmlns:xlink=\"http://www.w3.org/1999/xlink\"><defs />", d.Frame, d.Frame, d.Frame, d.Frame)

	if len(d.Paths) == 0 {
		wf("<g transform=\"%s\" />", d.Transform)
	} else {
		wf("<g transform=\"%s\">", d.Transform)
		stroke := d.Style.strokeAttr()
		width := formatNumber(d.Style.StrokeWidth)
		for i := range d.Paths {
			wf("<path d=\"%s\" fill=\"none\" stroke=\"%s\" stroke-linecap=\"round\" stroke-linejoin=\"round\" stroke-width=\"%s\" />",
				d.PathData(i), stroke, width)
		}
		wf("</g>")
	}
	wf("</svg>")

	if werr != nil {
		return n, fmt.Errorf("write svg: %w", werr)
	}
	return n, nil
}

// Bytes returns the serialized document.
func (d *Document) Bytes() []byte {
	var buf bytes.Buffer
	// Writes to a bytes.Buffer cannot fail.
	_, _ = d.WriteTo(&buf)
	return buf.Bytes()
}

// String returns the serialized document.
func (d *Document) String() string {
	return string(d.Bytes())
}

// WriteFile writes the document to path.
func (d *Document) WriteFile(path string) error {
	if err := os.WriteFile(path, d.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write svg %s: %w", path, err)
	}
	return nil
}
