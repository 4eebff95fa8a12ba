package skeleton

import (
	"testing"

	"github.com/ironsheep/sketch-tools-mcp/internal/raster"
)

// squareOutline returns a size×size mask with a one-pixel outline drawn
// from (lo, lo) to (hi, hi).
func squareOutline(size, lo, hi int) *raster.Mask {
	return raster.NewMaskFunc(size, size, func(x, y int) bool {
		inside := x >= lo && x <= hi && y >= lo && y <= hi
		border := x == lo || x == hi || y == lo || y == hi
		return inside && border
	})
}

func neighbors(m *raster.Mask, x, y int) int {
	n := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if (dx != 0 || dy != 0) && m.At(x+dx, y+dy) {
				n++
			}
		}
	}
	return n
}

func assertSubset(t *testing.T, thin, orig *raster.Mask) {
	t.Helper()
	for y := 0; y < orig.Height(); y++ {
		for x := 0; x < orig.Width(); x++ {
			if thin.At(x, y) && !orig.At(x, y) {
				t.Fatalf("skeleton pixel (%d,%d) not in input", x, y)
			}
		}
	}
}

func TestSkeletonize_SquareOutlineStaysLoop(t *testing.T) {
	orig := squareOutline(10, 1, 8)

	thin := Skeletonize(orig)
	assertSubset(t, thin, orig)

	if thin.Count() == 0 {
		t.Fatal("outline vanished")
	}
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if thin.At(x, y) && neighbors(thin, x, y) != 2 {
				t.Errorf("pixel (%d,%d) has %d neighbors, want 2 on a closed loop",
					x, y, neighbors(thin, x, y))
			}
		}
	}
	// Only the four corners are cut.
	if want := orig.Count() - 4; thin.Count() != want {
		t.Errorf("Count: got %d, want %d", thin.Count(), want)
	}
}

func TestSkeletonize_ThickBar(t *testing.T) {
	// 5 rows by 20 columns, rows 2..6.
	orig := raster.NewMaskFunc(26, 9, func(x, y int) bool {
		return x >= 3 && x < 23 && y >= 2 && y <= 6
	})

	thin := Skeletonize(orig)
	assertSubset(t, thin, orig)

	for y := 0; y < 8; y++ {
		for x := 0; x < 25; x++ {
			if thin.At(x, y) && thin.At(x+1, y) && thin.At(x, y+1) && thin.At(x+1, y+1) {
				t.Fatalf("2x2 block remains at (%d,%d)", x, y)
			}
		}
	}

	col := 0
	for y := 0; y < 9; y++ {
		if thin.At(12, y) {
			col++
			if y != 4 {
				t.Errorf("middle column pixel at y=%d, want 4", y)
			}
		}
	}
	if col != 1 {
		t.Errorf("middle column: got %d pixels, want 1", col)
	}
}

func TestSkeletonize_ThinLineUnchanged(t *testing.T) {
	orig := raster.NewMaskFunc(12, 5, func(x, y int) bool {
		return y == 2 && x >= 2 && x <= 9
	})

	thin := Skeletonize(orig)
	for y := 0; y < 5; y++ {
		for x := 0; x < 12; x++ {
			if thin.At(x, y) != orig.At(x, y) {
				t.Fatalf("pixel (%d,%d): got %v, want %v", x, y, thin.At(x, y), orig.At(x, y))
			}
		}
	}
}

func TestSkeletonize_Empty(t *testing.T) {
	orig := raster.NewMaskFunc(8, 8, func(int, int) bool { return false })

	thin := Skeletonize(orig)
	if thin.Width() != 8 || thin.Height() != 8 {
		t.Errorf("dimensions: got %dx%d, want 8x8", thin.Width(), thin.Height())
	}
	if thin.Count() != 0 {
		t.Errorf("Count: got %d, want 0", thin.Count())
	}
}

func TestSkeletonize_InputUntouched(t *testing.T) {
	orig := raster.NewMaskFunc(10, 10, func(x, y int) bool {
		return x >= 2 && x <= 7 && y >= 2 && y <= 7
	})
	before := orig.Count()

	Skeletonize(orig)
	if orig.Count() != before {
		t.Errorf("input mask changed: %d pixels, want %d", orig.Count(), before)
	}
}

// components counts the 8-connected components of m.
func components(m *raster.Mask) int {
	w, h := m.Width(), m.Height()
	seen := make([]bool, w*h)
	count := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !m.At(x, y) || seen[y*w+x] {
				continue
			}
			count++
			seen[y*w+x] = true
			stack := [][2]int{{x, y}}
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						nx, ny := p[0]+dx, p[1]+dy
						if m.At(nx, ny) && !seen[ny*w+nx] {
							seen[ny*w+nx] = true
							stack = append(stack, [2]int{nx, ny})
						}
					}
				}
			}
		}
	}
	return count
}

func TestSkeletonize_SmallBlobsKeepOnePixel(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
		in     func(x, y int) bool
	}{
		{"2x2 block", 8, 8, func(x, y int) bool { return x >= 3 && x <= 4 && y >= 3 && y <= 4 }},
		{"3x3 block", 8, 8, func(x, y int) bool { return x >= 2 && x <= 4 && y >= 2 && y <= 4 }},
		{"2x2 in image corner", 4, 4, func(x, y int) bool { return x <= 1 && y <= 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := raster.NewMaskFunc(tt.width, tt.height, tt.in)
			thin := Skeletonize(orig)
			assertSubset(t, thin, orig)
			if thin.Count() != 1 {
				t.Errorf("Count: got %d, want 1", thin.Count())
			}
		})
	}
}

func TestSkeletonize_SeparateBlobsStaySeparate(t *testing.T) {
	orig := raster.NewMaskFunc(12, 6, func(x, y int) bool {
		return (x >= 1 && x <= 2 || x >= 6 && x <= 7) && y >= 2 && y <= 3
	})

	thin := Skeletonize(orig)
	if got := components(thin); got != 2 {
		t.Errorf("components: got %d, want 2", got)
	}
}

func TestSkeletonize_TwoThickDiagonal(t *testing.T) {
	// A band two pixels wide running from (1,1) to (11,10).
	orig := raster.NewMaskFunc(12, 12, func(x, y int) bool {
		return x-y >= 0 && x-y <= 1 && y >= 1 && y <= 10
	})

	thin := Skeletonize(orig)
	assertSubset(t, thin, orig)

	if got := components(thin); got != 1 {
		t.Fatalf("components: got %d, want 1 connected line", got)
	}
	for y := 1; y <= 10; y++ {
		row := 0
		for x := 0; x < 12; x++ {
			if thin.At(x, y) {
				row++
			}
		}
		if row == 0 {
			t.Errorf("row %d lost its pixels", y)
		}
	}
	for y := 0; y < 11; y++ {
		for x := 0; x < 11; x++ {
			if thin.At(x, y) && thin.At(x+1, y) && thin.At(x, y+1) && thin.At(x+1, y+1) {
				t.Fatalf("2x2 block remains at (%d,%d)", x, y)
			}
		}
	}
}
