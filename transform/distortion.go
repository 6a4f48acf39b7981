// Package transform implements the closed-form optical models the lensfun
// pipeline evaluates per pixel: radial distortion, lateral chromatic
// aberration, vignetting falloff, projection conversion, autoscale, and the
// SVD-based perspective correction solver. Each model is grounded on the
// corresponding ModifyCoord_*/ModifyColor_* routine in the original
// implementation; see DESIGN.md for the full ledger.
package transform

import "math"

// DistortionModel identifies which radial distortion formula a set of
// coefficients was fit against.
type DistortionModel int

const (
	DistortionNone DistortionModel = iota
	DistortionPoly3
	DistortionPoly5
	DistortionPTLens
	DistortionACM
)

// radialPoly evaluates the model's "inflation factor" at normalized radius
// ru, i.e. rd = ru * radialPoly(ru). ACM is excluded: its distortion is not
// purely radial.
func radialPoly(model DistortionModel, c [5]float64, ru float64) float64 {
	ru2 := ru * ru
	switch model {
	case DistortionPoly3:
		// Rd = Ru . (1 - k1 + k1.Ru^2)
		return 1 - c[0] + c[0]*ru2
	case DistortionPoly5:
		// Rd = Ru . (1 + k1.Ru^2 + k2.Ru^4)
		return 1 + c[0]*ru2 + c[1]*ru2*ru2
	case DistortionPTLens:
		// Rd = Ru . (a.Ru^3 + b.Ru^2 + c.Ru + (1-a-b-c))
		a, b, cc := c[0], c[1], c[2]
		return a*ru2*ru + b*ru2 + cc*ru + (1 - a - b - cc)
	default:
		return 1
	}
}

// radialPolyDeriv returns d/dRu [Ru * radialPoly(Ru)], used by the Newton
// undistort solver.
func radialPolyDeriv(model DistortionModel, c [5]float64, ru float64) float64 {
	ru2 := ru * ru
	switch model {
	case DistortionPoly3:
		return (1 - c[0]) + 3*c[0]*ru2
	case DistortionPoly5:
		return 1 + 3*c[0]*ru2 + 5*c[1]*ru2*ru2
	case DistortionPTLens:
		a, b, cc := c[0], c[1], c[2]
		return 4*a*ru2*ru + 3*b*ru2 + 2*cc*ru + (1 - a - b - cc)
	default:
		return 1
	}
}

// DistortRadial applies the forward (distort) transform: given undistorted
// normalized coordinates, returns the distorted coordinates. Valid for
// Poly3, Poly5, and PTLens; for DistortionNone it is the identity.
func DistortRadial(model DistortionModel, c [5]float64, x, y float64) (float64, float64) {
	if model == DistortionNone {
		return x, y
	}
	ru := math.Hypot(x, y)
	if ru == 0 {
		return 0, 0
	}
	factor := radialPoly(model, c, ru)
	return x * factor, y * factor
}

// UndistortRadial applies the reverse (undistort) transform via Newton
// iteration on the scalar radial equation Rd = Ru . poly(Ru). It returns
// ok=false when the solver fails to converge within newtonMaxSteps or the
// resulting radius would be negative; per the error handling design, the
// caller should leave such a point's coordinates unchanged.
func UndistortRadial(model DistortionModel, c [5]float64, x, y float64) (ox, oy float64, ok bool) {
	if model == DistortionNone {
		return x, y, true
	}
	rd := math.Hypot(x, y)
	if rd == 0 {
		return 0, 0, true
	}

	ru := rd
	for step := 0; ; step++ {
		if step > newtonMaxSteps-1 {
			return x, y, false
		}
		f := ru*radialPoly(model, c, ru) - rd
		if math.Abs(f) < newtonEps {
			break
		}
		df := radialPolyDeriv(model, c, ru)
		if df == 0 {
			return x, y, false
		}
		ru -= f / df
		if ru < 0 {
			return x, y, false
		}
	}

	factor := ru / rd
	return x * factor, y * factor, true
}

// acmDistortionExponent returns the extra focal-power exponent applied to
// ACM distortion coefficient index during calibration interpolation (see
// calib.RescaleForInterpolation); kept here so the distortion and interpolation
// packages agree on ACM's coordinate convention without duplicating the
// rule in two places.
func acmDistortionExponent(index int) float64 {
	if index < 3 {
		return float64(2 * (index + 1))
	}
	return 1
}

// ACMDistortionExponent exports acmDistortionExponent for use by the calib
// package's parameter pre-rescaling.
func ACMDistortionExponent(index int) float64 { return acmDistortionExponent(index) }

// DistortACM applies the Adobe Camera Model's forward distortion. ACM
// operates in coordinates scaled by the real focal length, so the caller is
// expected to pass x, y already divided by the real focal length and to
// rescale the result back by multiplying by the real focal length.
func DistortACM(c [5]float64, x, y float64) (float64, float64) {
	// ACM: x' = x(1 + k1.r^2 + k2.r^4 + k3.r^6) + 2.p1.x.y + p2(r^2+2x^2)
	//      y' = y(1 + k1.r^2 + k2.r^4 + k3.r^6) + p1(r^2+2y^2) + 2.p2.x.y
	k1, k2, k3, p1, p2 := c[0], c[1], c[2], c[3], c[4]
	r2 := x*x + y*y
	r4 := r2 * r2
	r6 := r4 * r2
	radial := 1 + k1*r2 + k2*r4 + k3*r6
	ox := x*radial + 2*p1*x*y + p2*(r2+2*x*x)
	oy := y*radial + p1*(r2+2*y*y) + 2*p2*x*y
	return ox, oy
}

// UndistortACM inverts DistortACM via 2D Newton iteration (the ACM model is
// not purely radial, so the scalar shortcut above does not apply).
func UndistortACM(c [5]float64, x, y float64) (ox, oy float64, ok bool) {
	// Start from the identity guess, matching the small-distortion
	// assumption used by the original's iterative inverse for non-radial
	// models.
	ux, uy := x, y
	const h = 1e-6
	for step := 0; ; step++ {
		if step > newtonMaxSteps-1 {
			return x, y, false
		}
		fx, fy := DistortACM(c, ux, uy)
		ex, ey := fx-x, fy-y
		if math.Abs(ex) < newtonEps && math.Abs(ey) < newtonEps {
			return ux, uy, true
		}
		// Numeric 2x2 Jacobian via central differences.
		fx1, fy1 := DistortACM(c, ux+h, uy)
		fx2, fy2 := DistortACM(c, ux-h, uy)
		fx3, fy3 := DistortACM(c, ux, uy+h)
		fx4, fy4 := DistortACM(c, ux, uy-h)
		j11 := (fx1 - fx2) / (2 * h)
		j21 := (fy1 - fy2) / (2 * h)
		j12 := (fx3 - fx4) / (2 * h)
		j22 := (fy3 - fy4) / (2 * h)
		det := j11*j22 - j12*j21
		if det == 0 {
			return x, y, false
		}
		dux := (j22*ex - j12*ey) / det
		duy := (j11*ey - j21*ex) / det
		ux -= dux
		uy -= duy
	}
}
