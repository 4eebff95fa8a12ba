package raster

import (
	"math"
	"testing"
)

// grayFunc builds a Gray image from a per-pixel function.
func grayFunc(width, height int, fn func(x, y int) float64) *Gray {
	g := NewGray(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.Pix[y*width+x] = fn(x, y)
		}
	}
	return g
}

// createEdgeTestGray creates a white image with a black rectangle covering the
// middle half, giving four clear edges.
func createEdgeTestGray(width, height int) *Gray {
	return grayFunc(width, height, func(x, y int) float64 {
		if x >= width/4 && x < 3*width/4 && y >= height/4 && y < 3*height/4 {
			return 0
		}
		return 1
	})
}

func TestCanny_StrongVerticalEdge(t *testing.T) {
	img := grayFunc(100, 100, func(x, y int) float64 {
		if x < 50 {
			return 0
		}
		return 1
	})

	mask := Canny(img, DefaultCannyOptions())
	if mask.Width() != 100 || mask.Height() != 100 {
		t.Fatalf("dimensions: got %dx%d, want 100x100", mask.Width(), mask.Height())
	}

	for _, y := range []int{10, 50, 90} {
		found := false
		for x := 48; x <= 51; x++ {
			if mask.At(x, y) {
				found = true
			}
		}
		if !found {
			t.Errorf("row %d: vertical edge near x=50 was not detected", y)
		}
	}

	// Nothing away from the step.
	for y := 1; y < 99; y++ {
		for x := 1; x < 99; x++ {
			if mask.At(x, y) && (x < 47 || x > 52) {
				t.Fatalf("unexpected edge at (%d,%d)", x, y)
			}
		}
	}
}

func TestCanny_UniformImage(t *testing.T) {
	img := grayFunc(50, 50, func(int, int) float64 { return 0.5 })

	mask := Canny(img, DefaultCannyOptions())
	if n := mask.Count(); n != 0 {
		t.Errorf("uniform image should have no edges, got %d", n)
	}
}

func TestCanny_Rectangle(t *testing.T) {
	img := createEdgeTestGray(100, 100)

	for _, sigma := range []float64{1, 2} {
		opts := DefaultCannyOptions()
		opts.Sigma = sigma
		mask := Canny(img, opts)

		if mask.Count() == 0 {
			t.Fatalf("sigma %.0f: no edges detected", sigma)
		}
		for y := 0; y < 100; y++ {
			for x := 0; x < 100; x++ {
				if !mask.At(x, y) {
					continue
				}
				if !nearRectBorder(float64(x), float64(y), 24.5, 74.5, 4) {
					t.Fatalf("sigma %.0f: edge at (%d,%d) is far from the rectangle border", sigma, x, y)
				}
			}
		}
	}
}

func nearRectBorder(x, y, lo, hi, tol float64) bool {
	inSpan := func(v float64) bool { return v >= lo-tol && v <= hi+tol }
	nearLine := func(v float64) bool { return math.Abs(v-lo) <= tol || math.Abs(v-hi) <= tol }
	return (nearLine(x) && inSpan(y)) || (nearLine(y) && inSpan(x))
}

func TestCanny_LargerSigmaFindsLessDetail(t *testing.T) {
	// Fine checkerboard texture with a large bright square.
	img := grayFunc(80, 80, func(x, y int) float64 {
		if x >= 20 && x < 60 && y >= 20 && y < 60 {
			return 1
		}
		if (x/3+y/3)%2 == 0 {
			return 0.6
		}
		return 0
	})

	fine := Canny(img, CannyOptions{Sigma: 1, Low: 0.1, High: 0.2})
	coarse := Canny(img, CannyOptions{Sigma: 2, Low: 0.1, High: 0.2})
	if coarse.Count() >= fine.Count() {
		t.Errorf("sigma 2 should find fewer edge pixels than sigma 1: got %d >= %d",
			coarse.Count(), fine.Count())
	}
}

func TestCanny_BorderNeverEdge(t *testing.T) {
	// Strong edges touching the border.
	img := grayFunc(20, 20, func(x, y int) float64 {
		if (x+y)%2 == 0 {
			return 1
		}
		return 0
	})

	mask := Canny(img, CannyOptions{Sigma: 0, Low: 0.1, High: 0.2})
	for i := 0; i < 20; i++ {
		if mask.At(i, 0) || mask.At(i, 19) || mask.At(0, i) || mask.At(19, i) {
			t.Fatalf("border pixel marked as edge at index %d", i)
		}
	}
}

func TestCanny_Deterministic(t *testing.T) {
	img := createEdgeTestGray(64, 48)
	a := Canny(img, DefaultCannyOptions())
	b := Canny(img, DefaultCannyOptions())
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			if a.At(x, y) != b.At(x, y) {
				t.Fatalf("masks differ at (%d,%d)", x, y)
			}
		}
	}
}

func TestCanny_SmallImage(t *testing.T) {
	img := grayFunc(2, 5, func(x, y int) float64 { return float64(x) })

	mask := Canny(img, DefaultCannyOptions())
	if mask.Width() != 2 || mask.Height() != 5 {
		t.Errorf("dimensions: got %dx%d, want 2x5", mask.Width(), mask.Height())
	}
	if mask.Count() != 0 {
		t.Errorf("tiny image should have no edges, got %d", mask.Count())
	}
}

func TestGaussianKernel(t *testing.T) {
	tests := []struct {
		sigma   float64
		wantLen int
	}{
		{0, 1},
		{1, 9},
		{2, 17},
		{0.5, 5},
	}

	for _, tt := range tests {
		k := gaussianKernel(tt.sigma)
		if len(k) != tt.wantLen {
			t.Errorf("sigma %.1f: len = %d, want %d", tt.sigma, len(k), tt.wantLen)
		}
		var sum float64
		for _, v := range k {
			sum += v
		}
		if math.Abs(sum-1) > 1e-12 {
			t.Errorf("sigma %.1f: kernel sums to %.15f", tt.sigma, sum)
		}
		for i := 0; i < len(k)/2; i++ {
			if k[i] != k[len(k)-1-i] {
				t.Errorf("sigma %.1f: kernel not symmetric at %d", tt.sigma, i)
			}
		}
	}
}

func TestGaussianBlur_UniformStaysUniform(t *testing.T) {
	width, height := 10, 7
	src := make([]float64, width*height)
	for i := range src {
		src[i] = 0.5
	}

	blurred := gaussianBlur(src, width, height, 2)

	// Border renormalization keeps even the corners at the input level.
	for i, v := range blurred {
		if math.Abs(v-0.5) > 1e-9 {
			t.Errorf("blurred[%d]: got %.12f, want 0.5", i, v)
		}
	}
}

func TestGaussianBlur_WithSpot(t *testing.T) {
	width, height := 11, 11
	src := make([]float64, width*height)
	src[5*width+5] = 1.0

	blurred := gaussianBlur(src, width, height, 1)

	if blurred[5*width+5] >= 1.0 {
		t.Error("bright spot should be reduced after blur")
	}
	for _, i := range []int{5*width + 4, 5*width + 6, 4*width + 5, 6*width + 5} {
		if blurred[i] <= 0 {
			t.Errorf("neighbor %d should receive some brightness from blur", i)
		}
	}
	if math.Abs(blurred[5*width+4]-blurred[5*width+6]) > 1e-15 {
		t.Error("blur should be symmetric")
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, lo, hi, want int
	}{
		{5, 0, 10, 5},   // within range
		{-1, 0, 10, 0},  // below min
		{15, 0, 10, 10}, // above max
		{0, 0, 10, 0},   // at min
		{10, 0, 10, 10}, // at max
	}

	for _, tt := range tests {
		got := clamp(tt.val, tt.lo, tt.hi)
		if got != tt.want {
			t.Errorf("clamp(%d, %d, %d): got %d, want %d",
				tt.val, tt.lo, tt.hi, got, tt.want)
		}
	}
}
