package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/ironsheep/sketch-tools-mcp/internal/pipeline"
	"github.com/ironsheep/sketch-tools-mcp/internal/preview"
	"github.com/ironsheep/sketch-tools-mcp/internal/raster"
	"github.com/ironsheep/sketch-tools-mcp/internal/skeleton"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "sketch_vectorize").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// errInvalidArguments marks schema violations so they map to -32602.
var errInvalidArguments = errors.New("invalid arguments")

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Schema violations return -32602; tool execution errors return -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}
	if len(params.Arguments) == 0 || string(params.Arguments) == "null" {
		params.Arguments = json.RawMessage("{}")
	}

	if err := s.validateArguments(params.Name, params.Arguments); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", slog.String("tool", params.Name), slog.Any("err", err))
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// validateArguments checks args against the named tool's input schema.
// Unknown tools are left to executeTool.
func (s *Server) validateArguments(name string, args json.RawMessage) error {
	schema, ok := s.schemas[name]
	if !ok {
		return nil
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(args))
	if err != nil {
		return fmt.Errorf("%w: %v", errInvalidArguments, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", errInvalidArguments, strings.Join(msgs, "; "))
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_load":
		return s.handleImageLoad(args)
	case "sketch_vectorize":
		return s.handleSketchVectorize(args)
	case "sketch_edges":
		return s.handleSketchEdges(args)
	case "sketch_preview":
		return s.handleSketchPreview(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// imageSource selects the input image of a sketch tool.
type imageSource struct {
	Path        string         `json:"path"`
	ImageBase64 string         `json:"image_base64"`
	Region      string         `json:"region"`
	Crop        *raster.Region `json:"crop"`
}

// load returns the image from the cache or decodes the inline data, then
// applies the requested region. Cached images are never modified.
func (s *Server) load(src imageSource) (image.Image, error) {
	if src.Region != "" && src.Crop != nil {
		return nil, errors.New("region and crop are mutually exclusive")
	}

	var img image.Image
	if src.Path != "" {
		cached, err := s.cache.Load(src.Path)
		if err != nil {
			return nil, err
		}
		img = cached
	} else {
		raw, err := raster.DecodePayload(src.ImageBase64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image_base64: %w", err)
		}
		if img, err = raster.Decode(raw); err != nil {
			return nil, err
		}
	}

	switch {
	case src.Crop != nil:
		return raster.Crop(img, *src.Crop)
	case src.Region != "":
		b := img.Bounds()
		r, err := raster.NamedRegion(b.Dx(), b.Dy(), src.Region)
		if err != nil {
			return nil, err
		}
		return raster.Crop(img, r)
	}
	return img, nil
}

// === Image Information ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return raster.LoadImageInfo(s.cache, a.Path, s.opts.MaxDimension)
}

// === Vectorization ===

type sketchVectorizeArgs struct {
	imageSource
	FrameSize int      `json:"frame_size"`
	Smoothing *float64 `json:"smoothing"`
}

// VectorizeResult is the sketch_vectorize response.
type VectorizeResult struct {
	Sigma1    string `json:"sigma1"`
	Sigma2    string `json:"sigma2"`
	PathsLow  int    `json:"paths_low"`
	PathsHigh int    `json:"paths_high"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

func (s *Server) handleSketchVectorize(args json.RawMessage) (interface{}, error) {
	var a sketchVectorizeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.load(a.imageSource)
	if err != nil {
		return nil, err
	}

	opts := s.opts
	if a.FrameSize > 0 {
		opts.Emit.Frame = a.FrameSize
	}
	if a.Smoothing != nil {
		opts.Emit.Smoothing = *a.Smoothing
	}

	res := pipeline.ProcessImage(img, opts)
	return &VectorizeResult{
		Sigma1:    res.Low.String(),
		Sigma2:    res.High.String(),
		PathsLow:  len(res.Low.Paths),
		PathsHigh: len(res.High.Paths),
		Width:     res.Width,
		Height:    res.Height,
	}, nil
}

// === Edge Masks ===

type sketchEdgesArgs struct {
	imageSource
	Sigma float64 `json:"sigma"`
	Thin  bool    `json:"thin"`
}

func (s *Server) handleSketchEdges(args json.RawMessage) (interface{}, error) {
	var a sketchEdgesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Sigma == 0 {
		a.Sigma = s.opts.SigmaLow
	}
	img, err := s.load(a.imageSource)
	if err != nil {
		return nil, err
	}

	mask := pipeline.Edges(raster.Normalize(img, s.opts.MaxDimension), a.Sigma, s.opts)
	if a.Thin {
		mask = skeleton.Skeletonize(mask)
	}
	return mask.EncodePNG()
}

// === Preview ===

type sketchPreviewArgs struct {
	imageSource
	Which     string `json:"which"`
	FrameSize int    `json:"frame_size"`
}

func (s *Server) handleSketchPreview(args json.RawMessage) (interface{}, error) {
	var a sketchPreviewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.load(a.imageSource)
	if err != nil {
		return nil, err
	}

	opts := s.opts
	if a.FrameSize > 0 {
		opts.Emit.Frame = a.FrameSize
	}
	sigma := opts.SigmaLow
	if a.Which == "high" {
		sigma = opts.SigmaHigh
	}
	return preview.Encode(pipeline.DrawImage(img, sigma, opts))
}
