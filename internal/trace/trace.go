// Package trace turns a thinned edge mask into ordered pixel paths.
//
// Tracing is a greedy walk: scanning rows top to bottom, every unvisited edge
// pixel starts a path that repeatedly steps to the first unvisited edge
// neighbor in a fixed order. The walk never backtracks, so at a junction only
// one branch is followed; the others are picked up later by the scan as
// separate paths.
package trace

import (
	"github.com/ironsheep/sketch-tools-mcp/internal/raster"
)

// Point is a pixel coordinate in mask space.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Path is an ordered sequence of 8-adjacent pixels.
type Path []Point

// neighborOrder is the fixed scan order: dy outer, dx inner, center skipped.
var neighborOrder = [8]Point{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// tracer holds the state of one tracing pass over a mask.
type tracer struct {
	mask    *raster.Mask
	visited []bool
	width   int
	height  int
}

func newTracer(mask *raster.Mask) *tracer {
	return &tracer{
		mask:    mask,
		visited: make([]bool, mask.Width()*mask.Height()),
		width:   mask.Width(),
		height:  mask.Height(),
	}
}

// Trace returns every path of two or more pixels found in mask.
//
// Each edge pixel belongs to exactly one traced sequence; sequences of a
// single pixel are dropped from the result. The output depends only on the
// mask, and the mask is not modified.
func Trace(mask *raster.Mask) []Path {
	t := newTracer(mask)
	var paths []Path
	for y := 0; y < t.height; y++ {
		for x := 0; x < t.width; x++ {
			if !t.mask.At(x, y) || t.isVisited(x, y) {
				continue
			}
			p := t.follow(Point{X: x, Y: y})
			if len(p) > 1 {
				paths = append(paths, p)
			}
		}
	}
	return paths
}

func (t *tracer) isVisited(x, y int) bool {
	return t.visited[y*t.width+x]
}

func (t *tracer) markVisited(p Point) {
	t.visited[p.Y*t.width+p.X] = true
}

// follow walks from start until no unvisited edge neighbor remains.
func (t *tracer) follow(start Point) Path {
	path := Path{start}
	t.markVisited(start)
	cur := start
	for {
		next, ok := t.nextNeighbor(cur)
		if !ok {
			return path
		}
		path = append(path, next)
		t.markVisited(next)
		cur = next
	}
}

// nextNeighbor returns the first unvisited edge neighbor of p.
func (t *tracer) nextNeighbor(p Point) (Point, bool) {
	for _, d := range neighborOrder {
		x, y := p.X+d.X, p.Y+d.Y
		if t.mask.At(x, y) && !t.isVisited(x, y) {
			return Point{X: x, Y: y}, true
		}
	}
	return Point{}, false
}
