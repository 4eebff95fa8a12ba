// Package server implements the MCP (Model Context Protocol) server for the
// sketch tools.
//
// This package provides a JSON-RPC 2.0 server that exposes the
// image-to-line-drawing pipeline through the MCP protocol, so that MCP
// clients can vectorize photos and inspect the intermediate edge masks.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - image_load: Load an image file and report its size, format and working size
//   - sketch_vectorize: Convert an image into two SVG line drawings (fine and coarse)
//   - sketch_edges: Return the Canny edge mask at one blur scale as PNG
//   - sketch_preview: Rasterize one of the drawings to PNG
//
// Every sketch tool accepts either a file path or base64 image data
// (optionally a data URI), and may restrict the work to a named region
// ("top-left", "center", ...) or an explicit pixel crop.
//
// # Argument Validation
//
// Tool arguments are checked against the tool's published input schema
// before the handler runs. Violations are reported as -32602 (invalid params)
// with one line per schema error.
//
// # Image Caching
//
// Images loaded by path are cached for the lifetime of the server process
// and reused across tool calls. Base64 images are decoded per call.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv, err := server.New(pipeline.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
