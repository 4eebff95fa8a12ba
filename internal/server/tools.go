package server

import "github.com/ironsheep/sketch-tools-mcp/internal/raster"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// imageSourceProperties are shared by every tool that takes an image either
// from disk or inline, optionally restricted to a region.
func imageSourceProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"minLength":   1,
			"description": "Absolute path to the image file",
		},
		"image_base64": map[string]interface{}{
			"type":        "string",
			"minLength":   1,
			"description": "Base64 image data, optionally with a data URI prefix (data:image/png;base64,...)",
		},
		"region": map[string]interface{}{
			"type":        "string",
			"enum":        raster.RegionNames,
			"description": "Only use a named part of the image: a quadrant, a half, or center (middle 50%)",
		},
		"crop": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"x1": map[string]interface{}{"type": "integer", "minimum": 0},
				"y1": map[string]interface{}{"type": "integer", "minimum": 0},
				"x2": map[string]interface{}{"type": "integer", "minimum": 1},
				"y2": map[string]interface{}{"type": "integer", "minimum": 1},
			},
			"required":             []string{"x1", "y1", "x2", "y2"},
			"additionalProperties": false,
			"description":          "Only use the pixel rectangle (x1,y1)-(x2,y2); x2 and y2 are exclusive",
		},
	}
}

// imageSourceRule requires exactly one of path and image_base64.
var imageSourceRule = []interface{}{
	map[string]interface{}{"required": []string{"path"}},
	map[string]interface{}{"required": []string{"image_base64"}},
}

func withImageSource(extra map[string]interface{}) map[string]interface{} {
	props := imageSourceProperties()
	for k, v := range extra {
		props[k] = v
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and the working size used for edge detection.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"minLength":   1,
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name: "sketch_vectorize",
			Description: "Convert an image into two stylized SVG line drawings. sigma1 keeps fine detail (blur scale 1), " +
				"sigma2 keeps only the main contours (blur scale 2). Both drawings are centered in a square frame.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withImageSource(map[string]interface{}{
					"frame_size": map[string]interface{}{
						"type":        "integer",
						"minimum":     16,
						"maximum":     8192,
						"description": "Side of the square SVG canvas. Default 256",
					},
					"smoothing": map[string]interface{}{
						"type":        "number",
						"minimum":     0,
						"description": "Curve smoothing factor; 0 follows the pixels exactly. Default 1.0",
					},
				}),
				"oneOf":                imageSourceRule,
				"additionalProperties": false,
			},
		},
		{
			Name:        "sketch_edges",
			Description: "Run Canny edge detection at one blur scale and return the binary edge mask as base64-encoded PNG (edges white).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withImageSource(map[string]interface{}{
					"sigma": map[string]interface{}{
						"type":        "number",
						"minimum":     0.1,
						"maximum":     20,
						"description": "Gaussian blur scale. Default 1.0",
					},
					"thin": map[string]interface{}{
						"type":        "boolean",
						"description": "Thin the mask to one-pixel-wide curves as the vectorizer does. Default false",
					},
				}),
				"oneOf":                imageSourceRule,
				"additionalProperties": false,
			},
		},
		{
			Name:        "sketch_preview",
			Description: "Vectorize an image and rasterize one of the drawings to a base64-encoded PNG for a quick look.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withImageSource(map[string]interface{}{
					"which": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"low", "high"},
						"description": "low = fine-detail drawing (sigma1), high = main contours (sigma2). Default low",
					},
					"frame_size": map[string]interface{}{
						"type":        "integer",
						"minimum":     16,
						"maximum":     8192,
						"description": "Side of the square canvas. Default 256",
					},
				}),
				"oneOf":                imageSourceRule,
				"additionalProperties": false,
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
