// Package skeleton reduces edge masks to one-pixel-wide curves.
//
// Thinning uses the Guo–Hall parallel algorithm: two alternating
// sub-iterations peel boundary pixels whose removal keeps the 8-connected
// topology intact, until a full pass removes nothing. Right-angle corners of
// a one-pixel outline are cut, so the outline thins to a loop where every
// pixel has exactly two neighbors. Small blobs keep one pixel and
// two-pixel-thick diagonals keep a connected line. The input mask is never
// modified.
package skeleton

import (
	"github.com/ironsheep/sketch-tools-mcp/internal/raster"
)

// Skeletonize returns the thinned copy of m.
//
// Pixels outside the mask count as background, so shapes touching the image
// border thin the same way as interior ones.
func Skeletonize(m *raster.Mask) *raster.Mask {
	width, height := m.Width(), m.Height()
	pix := make([]bool, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pix[y*width+x] = m.At(x, y)
		}
	}

	t := &thinner{width: width, height: height, pix: pix}
	for {
		removed := t.pass(0)
		removed += t.pass(1)
		if removed == 0 {
			break
		}
	}

	return raster.NewMaskFunc(width, height, func(x, y int) bool {
		return pix[y*width+x]
	})
}

type thinner struct {
	width  int
	height int
	pix    []bool
	marked []int
}

func (t *thinner) at(x, y int) uint8 {
	if x < 0 || y < 0 || x >= t.width || y >= t.height {
		return 0
	}
	if t.pix[y*t.width+x] {
		return 1
	}
	return 0
}

// pass runs one sub-iteration and returns the number of pixels removed.
// Candidates are judged against the mask as it was at the start of the pass.
func (t *thinner) pass(step int) int {
	t.marked = t.marked[:0]
	for y := 0; y < t.height; y++ {
		for x := 0; x < t.width; x++ {
			if t.pix[y*t.width+x] && t.removable(x, y, step) {
				t.marked = append(t.marked, y*t.width+x)
			}
		}
	}
	for _, i := range t.marked {
		t.pix[i] = false
	}
	return len(t.marked)
}

// removable applies the Guo–Hall deletion test to the pixel at (x, y).
// Neighbors x1..x8 run counterclockwise starting east; step 0 prefers the
// south-east boundary, step 1 the north-west one.
func (t *thinner) removable(x, y, step int) bool {
	n := [10]uint8{
		0,
		t.at(x+1, y),   // x1 E
		t.at(x+1, y-1), // x2 NE
		t.at(x, y-1),   // x3 N
		t.at(x-1, y-1), // x4 NW
		t.at(x-1, y),   // x5 W
		t.at(x-1, y+1), // x6 SW
		t.at(x, y+1),   // x7 S
		t.at(x+1, y+1), // x8 SE
		t.at(x+1, y),   // x9 = x1
	}

	// The pixel joins exactly one 8-connected run of neighbors.
	crossings := 0
	for i := 1; i <= 7; i += 2 {
		if n[i] == 0 && (n[i+1] == 1 || n[i+2] == 1) {
			crossings++
		}
	}
	if crossings != 1 {
		return false
	}

	// Endpoints (one neighbor) and interior pixels stay.
	var n1, n2 uint8
	for k := 1; k <= 4; k++ {
		n1 += n[2*k-1] | n[2*k]
		n2 += n[2*k] | n[2*k+1]
	}
	if m := min(n1, n2); m < 2 || m > 3 {
		return false
	}

	if step == 0 {
		return (n[2]|n[3]|(1-n[8]))&n[1] == 0
	}
	return (n[6]|n[7]|(1-n[4]))&n[5] == 0
}
