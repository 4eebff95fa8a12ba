// Package raster provides the pixel-side stages of the sketch pipeline.
//
// This package turns encoded image bytes into the binary edge masks consumed by
// the tracer. It covers payload unwrapping (base64 and data URIs), decoding,
// region cropping, normalization to a single-channel float image, and Canny
// edge detection.
// All operations use a coordinate system where (0,0) is at the top-left
// corner, X increases rightward, and Y increases downward.
//
// # Normalization
//
// Inputs are reduced to a Gray image with samples in [0,1]:
//   - Alpha is discarded (the color channels are kept as stored)
//   - Images whose long edge exceeds the working limit are downscaled with a
//     Lanczos filter, preserving aspect ratio
//   - Color is converted to luma using ITU-R BT.601 weights
//
// # Edge Masks
//
// A Mask is an immutable height×width grid of booleans where true marks an
// edge pixel. Masks are produced by Canny and by the skeleton package, and are
// only read afterwards. Masks can be exported as PNG for diagnostics.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Decoding, normalization and
// edge detection are stateless and can be called concurrently on different
// inputs.
//
// # Error Handling
//
// Only decoding can fail: malformed base64, empty payloads and unknown image
// formats are returned as wrapped errors. Numerical stages never fail; an
// image without structure simply yields an empty mask.
package raster
