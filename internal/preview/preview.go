// Package preview rasterizes line drawings to PNG for quick inspection.
package preview

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"io"

	"github.com/gogpu/gg"

	"github.com/ironsheep/sketch-tools-mcp/internal/svg"
)

// minStrokePx keeps hairline strokes visible after scaling.
const minStrokePx = 1.0

// Render draws doc on a white frame×frame canvas.
func Render(doc *svg.Document) (image.Image, error) {
	dc, err := draw(doc)
	if err != nil {
		return nil, err
	}
	defer dc.Close()
	return dc.Image(), nil
}

// EncodePNG renders doc and writes it to w as PNG.
func EncodePNG(w io.Writer, doc *svg.Document) error {
	dc, err := draw(doc)
	if err != nil {
		return err
	}
	defer dc.Close()
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	return nil
}

func draw(doc *svg.Document) (*gg.Context, error) {
	if doc.Frame <= 0 {
		return nil, fmt.Errorf("invalid frame size %d", doc.Frame)
	}

	dc := gg.NewContext(doc.Frame, doc.Frame)
	dc.ClearWithColor(gg.White)
	dc.SetColor(doc.Style.Stroke.Clamped())
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)

	width := doc.Style.StrokeWidth * doc.Transform.Scale
	if width < minStrokePx {
		width = minStrokePx
	}
	dc.SetLineWidth(width)

	for i, path := range doc.Paths {
		for j, p := range path {
			q := doc.Transform.Apply(p)
			if j == 0 {
				dc.MoveTo(q.X, q.Y)
			} else {
				dc.LineTo(q.X, q.Y)
			}
		}
		if err := dc.Stroke(); err != nil {
			dc.Close()
			return nil, fmt.Errorf("stroke path %d: %w", i, err)
		}
	}
	return dc, nil
}

// Result contains a rendered preview encoded as base64 PNG.
type Result struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Paths       int    `json:"paths"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Encode renders doc into a base64 PNG result.
func Encode(doc *svg.Document) (*Result, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, doc); err != nil {
		return nil, err
	}
	return &Result{
		Width:       doc.Frame,
		Height:      doc.Frame,
		Paths:       len(doc.Paths),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
