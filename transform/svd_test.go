package transform

import (
	"math"
	"testing"

	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"
)

func TestSVDReconstructsInputMatrix(t *testing.T) {
	a := mat.NewDense(6, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
		1, 1, 0,
		0, 1, 1,
		1, 0, 1,
	})
	u, s, v, err := SVD(a)
	test.That(t, err, test.ShouldBeNil)

	// Reconstruct A' = U . diag(S) . V^T and compare against A.
	m, n := a.Dims()
	recon := mat.NewDense(m, n, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			sum := 0.0
			for k := 0; k < n; k++ {
				sum += u.At(i, k) * s[k] * v.At(j, k)
			}
			recon.Set(i, j, sum)
		}
	}
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			test.That(t, math.Abs(recon.At(i, j)-a.At(i, j)), test.ShouldBeLessThan, 1e-9)
		}
	}
}

func TestSVDRejectsTallSkinnyViolation(t *testing.T) {
	a := mat.NewDense(2, 3, make([]float64, 6))
	_, _, _, err := SVD(a)
	test.That(t, err, test.ShouldNotBeNil)
}
