package smooth

import (
	"errors"
	"fmt"
	"math"

	"github.com/ironsheep/sketch-tools-mcp/internal/trace"
)

// MinPoints is the shortest path that gets a fitted curve.
const MinPoints = 4

// DefaultSmoothing is the default residual budget in squared pixels.
const DefaultSmoothing = 1.0

var (
	// ErrTooShort is returned for paths with fewer than MinPoints points.
	ErrTooShort = errors.New("path too short to fit")

	// ErrDegenerate is returned when consecutive points coincide or the
	// system matrix is not positive definite.
	ErrDegenerate = errors.New("degenerate path")

	// ErrNotFinite is returned when the input or the fitted curve contains
	// NaN or infinite coordinates.
	ErrNotFinite = errors.New("non-finite coordinates")
)

// Stiffness search range, as powers of ten.
const (
	minLogStiffness = -20.0
	maxLogStiffness = 10.0
	searchSteps     = 64
)

// Vec is a point in continuous mask coordinates.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FromPath converts a traced pixel path to float coordinates.
func FromPath(p trace.Path) []Vec {
	out := make([]Vec, len(p))
	for i, pt := range p {
		out[i] = Vec{X: float64(pt.X), Y: float64(pt.Y)}
	}
	return out
}

// Result is the outcome of smoothing one path.
type Result struct {
	// Points holds the curve samples, or the unchanged input for short
	// paths. It is nil when Err is set.
	Points []Vec

	// Err is set when the fit failed and the caller should fall back to the
	// original points.
	Err error
}

// Smooth fits points with smoothing factor s. Paths shorter than MinPoints
// come back as they are.
func Smooth(points []Vec, s float64) Result {
	if len(points) < MinPoints {
		return Result{Points: points}
	}
	out, err := Fit(points, s)
	if err != nil {
		return Result{Err: err}
	}
	return Result{Points: out}
}

// Fit returns 2n samples of the smoothing spline through points.
func Fit(points []Vec, s float64) ([]Vec, error) {
	sp, _, err := fitSpline(points, s)
	if err != nil {
		return nil, err
	}

	n := len(points)
	out := make([]Vec, 2*n)
	seg := 0
	for k := range out {
		t := float64(k) / float64(2*n-1)
		for seg < n-2 && t > sp.u[seg+1] {
			seg++
		}
		out[k] = Vec{
			X: sp.eval(sp.gx, sp.mx, seg, t),
			Y: sp.eval(sp.gy, sp.my, seg, t),
		}
		if !finite(out[k].X) || !finite(out[k].Y) {
			return nil, fmt.Errorf("sample %d: %w", k, ErrNotFinite)
		}
	}
	return out, nil
}

// spline is a natural cubic spline in value/second-derivative form.
type spline struct {
	u      []float64
	gx, gy []float64
	mx, my []float64
}

// eval evaluates one coordinate on segment i at parameter t.
func (sp *spline) eval(g, m []float64, i int, t float64) float64 {
	h := sp.u[i+1] - sp.u[i]
	a := (sp.u[i+1] - t) / h
	b := (t - sp.u[i]) / h
	return a*g[i] + b*g[i+1] - (sp.u[i+1]-t)*(t-sp.u[i])/6*((1+b)*m[i+1]+(1+a)*m[i])
}

// fitSpline computes the smoothing spline and its residual sum of squares.
func fitSpline(points []Vec, s float64) (*spline, float64, error) {
	n := len(points)
	if n < MinPoints {
		return nil, 0, fmt.Errorf("%d points: %w", n, ErrTooShort)
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, p := range points {
		if !finite(p.X) || !finite(p.Y) {
			return nil, 0, fmt.Errorf("point %d: %w", i, ErrNotFinite)
		}
		xs[i], ys[i] = p.X, p.Y
	}

	u := make([]float64, n)
	for i := 1; i < n; i++ {
		d := math.Hypot(xs[i]-xs[i-1], ys[i]-ys[i-1])
		if d <= 0 {
			return nil, 0, fmt.Errorf("points %d and %d coincide: %w", i-1, i, ErrDegenerate)
		}
		u[i] = u[i-1] + d
	}
	total := u[n-1]
	for i := range u {
		u[i] /= total
	}
	u[n-1] = 1

	sys := newBandSystem(u)
	qx := sys.qt(xs)
	qy := sys.qt(ys)

	solveAt := func(alpha float64) (gammaX, gammaY []float64, rss float64, err error) {
		f, err := sys.factor(alpha)
		if err != nil {
			return nil, nil, 0, err
		}
		gammaX = f.solve(qx)
		gammaY = f.solve(qy)
		rx := sys.q(gammaX)
		ry := sys.q(gammaY)
		for i := range rx {
			rss += rx[i]*rx[i] + ry[i]*ry[i]
		}
		return gammaX, gammaY, alpha * alpha * rss, nil
	}

	alpha := 0.0
	if s > 0 {
		_, _, stiff, err := solveAt(math.Pow(10, maxLogStiffness))
		if err != nil {
			return nil, 0, err
		}
		if stiff <= s {
			alpha = math.Pow(10, maxLogStiffness)
		} else {
			lo, hi := minLogStiffness, maxLogStiffness
			for i := 0; i < searchSteps; i++ {
				mid := (lo + hi) / 2
				_, _, r, err := solveAt(math.Pow(10, mid))
				if err != nil {
					return nil, 0, err
				}
				if r > s {
					hi = mid
				} else {
					lo = mid
				}
			}
			alpha = math.Pow(10, lo)
		}
	}

	gammaX, gammaY, rss, err := solveAt(alpha)
	if err != nil {
		return nil, 0, err
	}

	sp := &spline{
		u:  u,
		gx: sys.fitted(xs, gammaX, alpha),
		gy: sys.fitted(ys, gammaY, alpha),
		mx: naturalEnds(gammaX),
		my: naturalEnds(gammaY),
	}
	for i := range sp.gx {
		if !finite(sp.gx[i]) || !finite(sp.gy[i]) {
			return nil, 0, fmt.Errorf("knot %d: %w", i, ErrNotFinite)
		}
	}
	return sp, rss, nil
}

// naturalEnds pads interior second derivatives with the zero end conditions.
func naturalEnds(gamma []float64) []float64 {
	m := make([]float64, len(gamma)+2)
	copy(m[1:], gamma)
	return m
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
