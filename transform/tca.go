package transform

import "math"

// TCAModel identifies which lateral chromatic aberration formula a set of
// coefficients was fit against.
type TCAModel int

const (
	TCANone TCAModel = iota
	TCALinear
	TCAPoly3
	TCAACM
)

// TCACoefficients holds the red- and blue-channel coefficients for one TCA
// model; green is always the identity transform. The slice lengths that
// matter per model are: Linear 1, Poly3 3, ACM 6.
type TCACoefficients struct {
	Red  [6]float64
	Blue [6]float64
}

// radialTCA scales x, y by the channel's radial correction factor.
func radialTCA(model TCAModel, c [6]float64, x, y float64) (float64, float64) {
	switch model {
	case TCALinear:
		k := c[0]
		return x * k, y * k
	case TCAPoly3:
		// c = [c0 (constant term, near 1), c1 (coefficient of r), c2
		// (coefficient of r^2)]; when c1 == 0 the sqrt is skipped as an
		// optimization the original also takes.
		r2 := x*x + y*y
		if c[1] == 0 {
			k := c[0] + c[2]*r2
			return x * k, y * k
		}
		r := math.Sqrt(r2)
		k := c[0] + c[1]*r + c[2]*r2
		return x * k, y * k
	case TCAACM:
		// ACM TCA: full quadratic per channel, grounded on the same
		// decentering-term shape as ACM distortion but with independent
		// coefficients per channel.
		k1, k2, p1, p2, k3, k4 := c[0], c[1], c[2], c[3], c[4], c[5]
		r2 := x*x + y*y
		r4 := r2 * r2
		radial := 1 + k1*r2 + k2*r4 + k4*r4*r2
		ox := x*radial + 2*p1*x*y + p2*(r2+2*x*x)
		oy := y*radial + p1*(r2+2*y*y) + 2*p2*x*y
		_ = k3
		return ox, oy
	default:
		return x, y
	}
}

// ApplyTCA computes the three (R, G, B) positions a single green-channel
// sample position maps to under the lateral chromatic aberration model.
// Green passes through unchanged; red and blue are each radially rescaled
// by their own coefficients.
func ApplyTCA(model TCAModel, coeffs TCACoefficients, x, y float64) (rx, ry, gx, gy, bx, by float64) {
	if model == TCANone {
		return x, y, x, y, x, y
	}
	rx, ry = radialTCA(model, coeffs.Red, x, y)
	bx, by = radialTCA(model, coeffs.Blue, x, y)
	return rx, ry, x, y, bx, by
}

// acmTCAExponent returns the extra focal-power exponent used when
// pre-rescaling ACM TCA coefficients during calibration interpolation.
func acmTCAExponent(index int) float64 {
	if index > 1 && index < 8 {
		return float64((index / 2) * 2)
	}
	return 1
}

// ACMTCAExponent exports acmTCAExponent for the calib package.
func ACMTCAExponent(index int) float64 { return acmTCAExponent(index) }
