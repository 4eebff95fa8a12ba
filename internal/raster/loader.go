package raster

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// ErrEmptyInput is returned when a payload carries no image bytes at all.
var ErrEmptyInput = errors.New("empty image input")

// DecodePayload unwraps a base64 image payload.
//
// If the payload contains a comma, everything up to and including the first
// comma is treated as a data URI header (e.g. "data:image/png;base64,") and
// discarded. Whitespace inside the base64 body is ignored.
//
// Returns ErrEmptyInput if nothing remains after unwrapping.
func DecodePayload(data string) ([]byte, error) {
	if _, body, ok := strings.Cut(data, ","); ok {
		data = body
	}
	data = strings.Join(strings.Fields(data), "")
	if data == "" {
		return nil, ErrEmptyInput
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 payload: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrEmptyInput
	}
	return raw, nil
}

// Decode decodes encoded image bytes.
//
// Supported formats are PNG, JPEG, GIF (first frame only), BMP, TIFF and WebP.
// EXIF orientation is not applied.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// ImageCache provides thread-safe caching of decoded images keyed by file path.
//
// The MCP server resolves every path argument through one cache, so repeated
// tool calls on the same file (vectorize, then preview, then edges) decode it
// only once. Cached images stay in memory until Evict or Clear is called.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates an empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load returns the cached image for path, decoding it from disk on first use.
//
// The cache key is the exact path string, so relative and absolute spellings
// of the same file are cached separately.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a single path from the cache. Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Len reports the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// ImageInfo describes a source image and the size the pipeline will work at.
type ImageInfo struct {
	// Width is the source width in pixels.
	Width int `json:"width"`

	// Height is the source height in pixels.
	Height int `json:"height"`

	// Format is the format name reported by the registered decoder
	// ("png", "jpeg", "gif", "bmp", "tiff", "webp").
	Format string `json:"format"`

	// HasAlpha reports whether the decoded color model carries alpha.
	// Alpha is discarded during normalization.
	HasAlpha bool `json:"has_alpha"`

	// WorkingWidth and WorkingHeight are the dimensions after the long-edge
	// cap is applied; edge masks have exactly this size.
	WorkingWidth  int `json:"working_width"`
	WorkingHeight int `json:"working_height"`

	// FileSizeBytes is the size of the encoded file.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image through the cache and describes it.
//
// Parameters:
//   - cache: The image cache to use for loading. Must not be nil.
//   - path: Path to the image file.
//   - maxDim: The long-edge cap applied by Normalize (<= 0 disables it).
//
// The format is detected from the file contents, not its extension.
func LoadImageInfo(cache *ImageCache, path string, maxDim int) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	_, format, err := image.DecodeConfig(f)
	if err != nil {
		format = "unknown"
	}
	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	hasAlpha := false
	switch img.(type) {
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64, *image.Paletted:
		hasAlpha = true
	}

	bounds := img.Bounds()
	ww, wh := WorkingSize(bounds.Dx(), bounds.Dy(), maxDim)

	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        format,
		HasAlpha:      hasAlpha,
		WorkingWidth:  ww,
		WorkingHeight: wh,
		FileSizeBytes: stat.Size(),
	}, nil
}
