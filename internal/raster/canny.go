package raster

import (
	"math"
)

// CannyOptions parameterizes edge detection.
type CannyOptions struct {
	// Sigma is the standard deviation of the Gaussian blur applied before
	// gradient computation. Larger values suppress fine detail. Zero disables
	// blurring.
	Sigma float64

	// Low and High are the hysteresis thresholds on the Sobel gradient
	// magnitude of the [0,1] image. Pixels at or above High seed edges;
	// pixels at or above Low are kept when 8-connected to a seed.
	Low  float64
	High float64
}

// DefaultCannyOptions returns sigma 1 with thresholds 0.1 and 0.2.
func DefaultCannyOptions() CannyOptions {
	return CannyOptions{Sigma: 1.0, Low: 0.1, High: 0.2}
}

// gaussianTruncate is the kernel half-width in standard deviations.
const gaussianTruncate = 4.0

// Canny performs Canny edge detection on a normalized grayscale image.
//
// # Algorithm
//
//  1. Gaussian blur with the given sigma. Pixels outside the image count as
//     zero and every output sample is divided by the blurred weight of the
//     in-image pixels, so borders are not darkened.
//
//  2. Gradient computation: unnormalized Sobel operators for X and Y
//     (borders replicate the edge sample), magnitude = hypot(Gx, Gy).
//
//  3. Non-maximum suppression: the magnitude is compared against the two
//     neighbors across the gradient, each linearly interpolated between the
//     two pixels that bracket the gradient direction. The one-pixel image
//     border never holds an edge.
//
//  4. Hysteresis: local maxima at or above High are strong edges; local
//     maxima at or above Low survive only if their 8-connected component of
//     such pixels contains a strong edge.
//
// Images narrower or shorter than 3 pixels produce an empty mask.
func Canny(img *Gray, opts CannyOptions) *Mask {
	width, height := img.Width, img.Height
	if width < 3 || height < 3 {
		return NewMaskFunc(width, height, func(int, int) bool { return false })
	}

	smoothed := gaussianBlur(img.Pix, width, height, opts.Sigma)

	// isobel is the derivative along Y (rows), jsobel along X (columns).
	isobel := make([]float64, width*height)
	jsobel := make([]float64, width*height)
	magnitude := make([]float64, width*height)

	sobelX := [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY := [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					py := clamp(y+ky, 0, height-1)
					px := clamp(x+kx, 0, width-1)
					v := smoothed[py*width+px]
					gx += v * sobelX[ky+1][kx+1]
					gy += v * sobelY[ky+1][kx+1]
				}
			}
			i := y*width + x
			jsobel[i] = gx
			isobel[i] = gy
			magnitude[i] = math.Hypot(gx, gy)
		}
	}

	g := &gradientField{
		width:     width,
		isobel:    isobel,
		jsobel:    jsobel,
		magnitude: magnitude,
	}

	// Double threshold on local maxima only.
	const (
		none = iota
		weak
		strong
	)
	class := make([]uint8, width*height)
	var seeds []int
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			i := y*width + x
			m := magnitude[i]
			if m < opts.Low {
				continue
			}
			if !g.isLocalMax(x, y) {
				continue
			}
			if m >= opts.High {
				class[i] = strong
				seeds = append(seeds, i)
			} else {
				class[i] = weak
			}
		}
	}

	// Edge tracking by hysteresis: flood every component that holds a seed.
	edges := make([]bool, width*height)
	stack := make([]int, 0, len(seeds))
	for _, s := range seeds {
		if edges[s] {
			continue
		}
		edges[s] = true
		stack = append(stack, s)
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := i%width, i/width
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= width || ny >= height {
						continue
					}
					j := ny*width + nx
					if class[j] != none && !edges[j] {
						edges[j] = true
						stack = append(stack, j)
					}
				}
			}
		}
	}

	return &Mask{width: width, height: height, pix: edges}
}

// gradientField holds the Sobel responses for non-maximum suppression.
type gradientField struct {
	width     int
	isobel    []float64
	jsobel    []float64
	magnitude []float64
}

func (g *gradientField) mag(x, y int) float64 {
	return g.magnitude[y*g.width+x]
}

// isLocalMax reports whether the magnitude at the interior pixel (x, y) is
// not exceeded by either interpolated neighbor across the gradient.
//
// The gradient direction is split into four 45° sectors. For each sector the
// neighbor on each side is interpolated between an axis neighbor (c1) and a
// diagonal neighbor (c2) with weight w = ratio of the smaller to the larger
// absolute derivative. Sectors are evaluated in order and a later match
// overrides an earlier one, so directions lying exactly on a sector boundary
// take the last sector's verdict. A zero gradient yields NaN weights and is
// never a maximum.
func (g *gradientField) isLocalMax(x, y int) bool {
	i := y*g.width + x
	gi, gj := g.isobel[i], g.jsobel[i]
	ai, aj := math.Abs(gi), math.Abs(gj)
	m := g.magnitude[i]

	sameSign := (gi >= 0 && gj >= 0) || (gi <= 0 && gj <= 0)
	oppositeSign := (gi <= 0 && gj >= 0) || (gi >= 0 && gj <= 0)

	interp := func(c1, c2, w float64) float64 {
		return c2*w + c1*(1-w)
	}

	result := false

	// 0 to 45 degrees
	if sameSign && ai >= aj {
		w := aj / ai
		plus := interp(g.mag(x, y+1), g.mag(x+1, y+1), w) <= m
		minus := interp(g.mag(x, y-1), g.mag(x-1, y-1), w) <= m
		result = plus && minus
	}

	// 45 to 90 degrees
	if sameSign && ai <= aj {
		w := ai / aj
		plus := interp(g.mag(x+1, y), g.mag(x+1, y+1), w) <= m
		minus := interp(g.mag(x-1, y), g.mag(x-1, y-1), w) <= m
		result = plus && minus
	}

	// 90 to 135 degrees
	if oppositeSign && ai <= aj {
		w := ai / aj
		plus := interp(g.mag(x+1, y), g.mag(x+1, y-1), w) <= m
		minus := interp(g.mag(x-1, y), g.mag(x-1, y+1), w) <= m
		result = plus && minus
	}

	// 135 to 180 degrees
	if oppositeSign && ai >= aj {
		w := aj / ai
		plus := interp(g.mag(x, y-1), g.mag(x+1, y-1), w) <= m
		minus := interp(g.mag(x, y+1), g.mag(x-1, y+1), w) <= m
		result = plus && minus
	}

	return result
}

// gaussianKernel returns a normalized 1-D Gaussian of half-width
// int(4*sigma + 0.5).
func gaussianKernel(sigma float64) []float64 {
	if sigma <= 0 {
		return []float64{1}
	}
	radius := int(gaussianTruncate*sigma + 0.5)
	kernel := make([]float64, 2*radius+1)
	var sum float64
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-0.5 * float64(i*i) / (sigma * sigma))
		kernel[i+radius] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// gaussianBlur applies a separable Gaussian blur with zero padding, then
// divides by the blurred all-ones image so that border samples are averaged
// only over in-image pixels.
func gaussianBlur(src []float64, width, height int, sigma float64) []float64 {
	kernel := gaussianKernel(sigma)
	if len(kernel) == 1 {
		out := make([]float64, len(src))
		copy(out, src)
		return out
	}

	ones := make([]float64, width*height)
	for i := range ones {
		ones[i] = 1
	}

	blurred := convolveSeparable(src, width, height, kernel)
	weight := convolveSeparable(ones, width, height, kernel)

	eps := math.Nextafter(1, 2) - 1
	for i := range blurred {
		blurred[i] /= weight[i] + eps
	}
	return blurred
}

// convolveSeparable convolves along Y then X with a symmetric kernel,
// treating samples outside the image as zero.
func convolveSeparable(src []float64, width, height int, kernel []float64) []float64 {
	radius := len(kernel) / 2
	tmp := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum float64
			for k := -radius; k <= radius; k++ {
				py := y + k
				if py < 0 || py >= height {
					continue
				}
				sum += src[py*width+x] * kernel[k+radius]
			}
			tmp[y*width+x] = sum
		}
	}

	out := make([]float64, width*height)
	for y := 0; y < height; y++ {
		row := tmp[y*width : (y+1)*width]
		for x := 0; x < width; x++ {
			var sum float64
			for k := -radius; k <= radius; k++ {
				px := x + k
				if px < 0 || px >= width {
					continue
				}
				sum += row[px] * kernel[k+radius]
			}
			out[y*width+x] = sum
		}
	}
	return out
}

// clamp constrains an integer value to the range [lo, hi].
// Used for boundary handling in convolution operations.
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
