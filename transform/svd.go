package transform

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrSVDNoConvergence is returned by SVD when the one-sided Jacobi
// iteration fails to reduce off-diagonal energy below threshold within the
// cycle budget; the perspective solver treats this as "perspective
// correction unavailable" and logs a warning rather than aborting the
// pipeline.
var ErrSVDNoConvergence = errors.New("svd: no convergence")

// SVD computes a thin singular value decomposition of the m x n matrix a
// (m >= n) using one-sided Hestenes-Jacobi column rotations: it iteratively
// rotates pairs of columns of a working copy of A to make them orthogonal,
// accumulating the rotations into V, until the matrix is "effectively"
// orthogonal (W = U.diag(S), A = W.V^T). The column norms of the result are
// the singular values; the normalized columns are U.
//
// This is a hand-rolled routine, not delegated to a general-purpose LAPACK-
// style SVD, because the exact convergence threshold and iteration-cap
// constants below are part of the perspective solver's observable numeric
// behavior (see DESIGN.md): a different algorithm would not reproduce the
// same floating point path.
func SVD(a *mat.Dense) (u *mat.Dense, s []float64, v *mat.Dense, err error) {
	m, n := a.Dims()
	if m < n {
		return nil, nil, nil, errors.New("svd: requires m >= n")
	}

	w := mat.DenseCopyOf(a)
	vMat := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		vMat.Set(i, i, 1)
	}

	const eps = 2.220446049250313e-16
	threshold := svdJacobiThresholdFactor * eps
	maxCycles := svdSmallNCycles
	if n >= svdSmallN {
		maxCycles = n / 2
	}

	col := func(mx *mat.Dense, j int) []float64 {
		rows, _ := mx.Dims()
		out := make([]float64, rows)
		for r := 0; r < rows; r++ {
			out[r] = mx.At(r, j)
		}
		return out
	}
	dot := func(a, b []float64) float64 {
		s := 0.0
		for i := range a {
			s += a[i] * b[i]
		}
		return s
	}

	converged := false
	for cycle := 0; cycle < maxCycles; cycle++ {
		offDiag := 0.0
		for p := 0; p < n-1; p++ {
			for q := p + 1; q < n; q++ {
				cp := col(w, p)
				cq := col(w, q)
				alpha := dot(cp, cp)
				beta := dot(cq, cq)
				gamma := dot(cp, cq)
				offDiag += gamma * gamma

				if alpha == 0 || beta == 0 {
					continue
				}
				if gamma*gamma/(alpha*beta) < threshold {
					continue
				}

				zeta := (beta - alpha) / (2 * gamma)
				t := 1.0 / (math.Abs(zeta) + math.Sqrt(1+zeta*zeta))
				if zeta < 0 {
					t = -t
				}
				c := 1.0 / math.Sqrt(1+t*t)
				sRot := c * t

				for r := 0; r < m; r++ {
					wp := w.At(r, p)
					wq := w.At(r, q)
					w.Set(r, p, c*wp-sRot*wq)
					w.Set(r, q, sRot*wp+c*wq)
				}
				for r := 0; r < n; r++ {
					vp := vMat.At(r, p)
					vq := vMat.At(r, q)
					vMat.Set(r, p, c*vp-sRot*vq)
					vMat.Set(r, q, sRot*vp+c*vq)
				}
			}
		}
		if offDiag < threshold {
			converged = true
			break
		}
	}
	if !converged {
		return nil, nil, nil, ErrSVDNoConvergence
	}

	s = make([]float64, n)
	uMat := mat.NewDense(m, n, nil)
	for j := 0; j < n; j++ {
		norm := 0.0
		for r := 0; r < m; r++ {
			v := w.At(r, j)
			norm += v * v
		}
		norm = math.Sqrt(norm)
		s[j] = norm
		if norm > 0 {
			for r := 0; r < m; r++ {
				uMat.Set(r, j, w.At(r, j)/norm)
			}
		}
	}

	return uMat, s, vMat, nil
}
