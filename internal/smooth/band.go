package smooth

import "fmt"

// bandSystem holds the banded matrices of the smoothing problem for a fixed
// parameterization u with n knots and m = n-2 interior knots.
//
// Q is n×m tridiagonal by columns: column j touches rows j, j+1, j+2 with
// weights a[j], b[j], c[j]. R is the m×m symmetric tridiagonal matrix with
// diagonal rd and off-diagonal re. The stiffness alpha enters through
// (R + alpha·QᵀQ)·gamma = Qᵀy.
type bandSystem struct {
	a, b, c []float64
	rd, re  []float64
}

func newBandSystem(u []float64) *bandSystem {
	n := len(u)
	m := n - 2
	h := make([]float64, n-1)
	for i := range h {
		h[i] = u[i+1] - u[i]
	}

	sys := &bandSystem{
		a:  make([]float64, m),
		b:  make([]float64, m),
		c:  make([]float64, m),
		rd: make([]float64, m),
		re: make([]float64, m),
	}
	for j := 0; j < m; j++ {
		sys.a[j] = 1 / h[j]
		sys.c[j] = 1 / h[j+1]
		sys.b[j] = -(sys.a[j] + sys.c[j])
		sys.rd[j] = (h[j] + h[j+1]) / 3
		sys.re[j] = h[j+1] / 6
	}
	return sys
}

// qt returns Qᵀy.
func (s *bandSystem) qt(y []float64) []float64 {
	out := make([]float64, len(s.a))
	for j := range out {
		out[j] = s.a[j]*y[j] + s.b[j]*y[j+1] + s.c[j]*y[j+2]
	}
	return out
}

// q returns Q·gamma.
func (s *bandSystem) q(gamma []float64) []float64 {
	out := make([]float64, len(gamma)+2)
	for j, g := range gamma {
		out[j] += s.a[j] * g
		out[j+1] += s.b[j] * g
		out[j+2] += s.c[j] * g
	}
	return out
}

// fitted returns y - alpha·Q·gamma, the spline values at the knots.
func (s *bandSystem) fitted(y, gamma []float64, alpha float64) []float64 {
	qg := s.q(gamma)
	out := make([]float64, len(y))
	for i := range y {
		out[i] = y[i] - alpha*qg[i]
	}
	return out
}

// ldl is an LDLᵀ factorization of a symmetric pentadiagonal matrix.
type ldl struct {
	d      []float64
	l1, l2 []float64
}

// factor builds and factors R + alpha·QᵀQ.
func (s *bandSystem) factor(alpha float64) (*ldl, error) {
	m := len(s.a)
	f := &ldl{
		d:  make([]float64, m),
		l1: make([]float64, m),
		l2: make([]float64, m),
	}
	for i := 0; i < m; i++ {
		diag := s.rd[i] + alpha*(s.a[i]*s.a[i]+s.b[i]*s.b[i]+s.c[i]*s.c[i])
		if i >= 1 {
			diag -= f.l1[i-1] * f.l1[i-1] * f.d[i-1]
		}
		if i >= 2 {
			diag -= f.l2[i-2] * f.l2[i-2] * f.d[i-2]
		}
		if !(diag > 0) {
			return nil, fmt.Errorf("pivot %d is %g: %w", i, diag, ErrDegenerate)
		}
		f.d[i] = diag

		if i+1 < m {
			e := s.re[i] + alpha*(s.b[i]*s.a[i+1]+s.c[i]*s.b[i+1])
			if i >= 1 {
				e -= f.l2[i-1] * f.l1[i-1] * f.d[i-1]
			}
			f.l1[i] = e / diag
		}
		if i+2 < m {
			f.l2[i] = alpha * s.c[i] * s.a[i+2] / diag
		}
	}
	return f, nil
}

// solve returns x with (L·D·Lᵀ)·x = rhs.
func (f *ldl) solve(rhs []float64) []float64 {
	m := len(f.d)
	x := make([]float64, m)
	for i := 0; i < m; i++ {
		v := rhs[i]
		if i >= 1 {
			v -= f.l1[i-1] * x[i-1]
		}
		if i >= 2 {
			v -= f.l2[i-2] * x[i-2]
		}
		x[i] = v
	}
	for i := range x {
		x[i] /= f.d[i]
	}
	for i := m - 1; i >= 0; i-- {
		if i+1 < m {
			x[i] -= f.l1[i] * x[i+1]
		}
		if i+2 < m {
			x[i] -= f.l2[i] * x[i+2]
		}
	}
	return x
}
