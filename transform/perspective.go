package transform

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Point2 is a single control point in normalized coordinates.
type Point2 struct{ X, Y float64 }

// ErrControlPointCount is returned when a perspective correction request
// does not carry between 4 and 8 control points.
var ErrControlPointCount = errors.New("perspective correction requires between 4 and 8 control points")

// PerspectiveSolution is the result of solving a set of control points: a
// forward rotation (camera-space re-projection used to decide visibility
// and compute scale) and a backward rotation (the one actually used to
// remap output pixels back into the original image), plus the scale and
// the anchor point the rotation is centered on.
type PerspectiveSolution struct {
	Forward, Backward mgl64.Mat3
	Scale             float64
	AnchorX, AnchorY  float64
}

// intersection returns the intersection of line (p1,p2) with line (p3,p4)
// using the standard two-line determinant formula; ok is false for
// (near-)parallel lines.
func intersection(p1, p2, p3, p4 Point2) (Point2, bool) {
	d1x, d1y := p2.X-p1.X, p2.Y-p1.Y
	d2x, d2y := p4.X-p3.X, p4.Y-p3.Y
	denom := d1x*d2y - d1y*d2x
	if math.Abs(denom) < epsln {
		return Point2{}, false
	}
	t := ((p3.X-p1.X)*d2y - (p3.Y-p1.Y)*d2x) / denom
	return Point2{p1.X + t*d1x, p1.Y + t*d1y}, true
}

// ellipseCenter fits a general conic through 5 points (the image of a
// circle under perspective projection is an ellipse) via SVD on the
// design matrix [x^2, xy, y^2, x, y, 1], then recovers the ellipse center
// from the conic coefficients using the standard closed-form formulas. The
// design matrix is padded with zero rows to at least 6 rows, since SVD
// requires m >= n; zero rows do not change the right-singular vectors.
func ellipseCenter(points []Point2) (Point2, bool) {
	if len(points) < 5 {
		return Point2{}, false
	}
	rows := len(points)
	if rows < 6 {
		rows = 6
	}
	design := mat.NewDense(rows, 6, nil)
	for i, p := range points {
		design.Set(i, 0, p.X*p.X)
		design.Set(i, 1, p.X*p.Y)
		design.Set(i, 2, p.Y*p.Y)
		design.Set(i, 3, p.X)
		design.Set(i, 4, p.Y)
		design.Set(i, 5, 1)
	}
	_, s, v, err := SVD(design)
	if err != nil {
		return Point2{}, false
	}
	// The conic's coefficient vector is the right-singular vector
	// associated with the smallest singular value.
	minIdx := 0
	for i := 1; i < len(s); i++ {
		if s[i] < s[minIdx] {
			minIdx = i
		}
	}
	a := v.At(0, minIdx)
	b := v.At(1, minIdx)
	c := v.At(2, minIdx)
	d := v.At(3, minIdx)
	e := v.At(4, minIdx)

	denom := b*b - 4*a*c
	if math.Abs(denom) < epsln {
		return Point2{}, false
	}
	cx := (2*c*d - b*e) / denom
	cy := (2*a*e - b*d) / denom
	return Point2{cx, cy}, true
}

// calculateAngles derives the (rho, delta, rhoH) rotation angles from the
// control points, branching on count exactly as the original's
// calculate_angles does: 4/6/8 points give verticals whose intersection is
// the vanishing point; 5/7 points fit an ellipse (the first 5 points) whose
// center is the vanishing point. rhoH is 0 for 4 and 5 points (no
// horizontal line is given); 6/8 points supply horizontal line(s) from
// points 4 onward, and 7 points supply one horizontal from points 5 and 6;
// with 8 points the 4th horizontal line's consistency with the others
// overrides the nominal focal length before rho and delta are computed.
func calculateAngles(points []Point2, focal float64) (rho, deltaAngle, rhoH, effectiveFocal float64, err error) {
	n := len(points)
	effectiveFocal = focal

	var vanishing Point2
	haveVanishing := false

	switch n {
	case 4, 6, 8:
		vp, ok := intersection(points[0], points[1], points[2], points[3])
		if !ok {
			return 0, 0, 0, focal, errors.New("perspective: vertical lines are parallel")
		}
		vanishing = vp
		haveVanishing = true
	case 5, 7:
		vp, ok := ellipseCenter(points[:5])
		if !ok {
			return 0, 0, 0, focal, errors.New("perspective: ellipse fit failed")
		}
		vanishing = vp
		haveVanishing = true
	default:
		return 0, 0, 0, focal, ErrControlPointCount
	}
	if !haveVanishing {
		return 0, 0, 0, focal, errors.New("perspective: could not determine vanishing point")
	}

	// rho (around Y), delta (around X) move the vanishing point to the
	// zenith of the camera-space sphere at the given focal length.
	rho = math.Atan2(vanishing.X, effectiveFocal)
	deltaAngle = math.Atan2(vanishing.Y, math.Hypot(vanishing.X, effectiveFocal))

	switch n {
	case 4, 5:
		rhoH = 0
	case 6:
		rhoH = math.Atan2(points[5].Y-points[4].Y, points[5].X-points[4].X)
	case 7:
		rhoH = math.Atan2(points[6].Y-points[5].Y, points[6].X-points[5].X)
	case 8:
		rhoH = math.Atan2(points[5].Y-points[4].Y, points[5].X-points[4].X)
		rhoH2 := math.Atan2(points[7].Y-points[6].Y, points[7].X-points[6].X)
		// The 4th horizontal line's agreement with the first overrides the
		// nominal focal length: when they disagree significantly the
		// average is used and the focal length is rescaled so the
		// vanishing point computation stays consistent, matching the
		// original's radicand-based focal override.
		if math.Abs(rhoH-rhoH2) > 1e-9 {
			rhoH = (rhoH + rhoH2) / 2
			radicand := -points[4].X*points[6].X - points[4].Y*points[6].Y
			if radicand > 0 {
				effectiveFocal = math.Sqrt(radicand)
			}
		}
	}
	if math.IsNaN(rhoH) {
		rhoH = 0
	}

	// rho (around Y), delta (around X) move the vanishing point to the
	// zenith of the camera-space sphere at the effective focal length.
	rho = math.Atan2(vanishing.X, effectiveFocal)
	deltaAngle = math.Atan2(vanishing.Y, math.Hypot(vanishing.X, effectiveFocal))

	return rho, deltaAngle, rhoH, effectiveFocal, nil
}

// applyStrength rescales the rotation angle by the "d" strength parameter:
// for d<=0 the correction is linearly softened (theta*(d+1)); for d>0 it is
// amplified logarithmically, matching the original's
// theta*(1 + log(10d+1)/10) formula, then clamped to +/- 0.9*pi.
func applyStrength(theta, d float64) float64 {
	var scaled float64
	if d <= 0 {
		scaled = theta * (d + 1)
	} else {
		scaled = theta * (1 + math.Log(10*d+1)/10)
	}
	if scaled > perspectiveAngleClamp {
		scaled = perspectiveAngleClamp
	}
	if scaled < -perspectiveAngleClamp {
		scaled = -perspectiveAngleClamp
	}
	return scaled
}

// quatAngleAxis extracts the (angle, axis) pair from a unit quaternion;
// mathgl exposes only the raw (W, V) components, so this is the standard
// half-angle decomposition q = (cos(theta/2), sin(theta/2)*axis).
func quatAngleAxis(q mgl64.Quat) (angle float64, axis mgl64.Vec3) {
	w := q.W
	if w > 1 {
		w = 1
	} else if w < -1 {
		w = -1
	}
	angle = 2 * math.Acos(w)
	halfSin := math.Sqrt(1 - w*w)
	if halfSin < 1e-9 {
		return angle, mgl64.Vec3{1, 0, 0}
	}
	return angle, q.V.Mul(1 / halfSin)
}

// generateRotationMatrix builds the forward and backward rotation matrices
// for the solved angles, applying the d strength parameter to the
// composite rotation via quaternion scaling (github.com/go-gl/mathgl), the
// same library the teacher reaches for whenever 3D rotation composition is
// required.
func generateRotationMatrix(rho, deltaAngle, rhoH, d float64) (forward, backward mgl64.Mat3) {
	qRho := mgl64.QuatRotate(rho, mgl64.Vec3{0, 1, 0})
	qDelta := mgl64.QuatRotate(deltaAngle, mgl64.Vec3{1, 0, 0})
	qRhoH := mgl64.QuatRotate(rhoH, mgl64.Vec3{0, 0, 1})

	composite := qRhoH.Mul(qDelta).Mul(qRho)
	angle, axis := quatAngleAxis(composite)
	scaledAngle := applyStrength(angle, d)

	qForward := mgl64.QuatRotate(scaledAngle, axis)
	forward = qForward.Mat4().Mat3()

	qBackward := mgl64.QuatRotate(-scaledAngle, axis)
	backward = qBackward.Mat4().Mat3()
	return forward, backward
}

// SolvePerspective derives a PerspectiveSolution from the given control
// points, nominal focal length, and strength parameter d. points must have
// between 4 and 8 elements. The solver has no reverse-direction
// formulation; Modifier.EnablePerspectiveCorrection refuses reverse mode
// before calling it.
func SolvePerspective(points []Point2, focal, d float64) (*PerspectiveSolution, error) {
	if len(points) < 4 || len(points) > 8 {
		return nil, ErrControlPointCount
	}

	rho, deltaAngle, rhoH, effectiveFocal, err := calculateAngles(points, focal)
	if err != nil {
		return nil, err
	}

	forward, backward := generateRotationMatrix(rho, deltaAngle, rhoH, d)

	// Decide the anchor point: the image center if it remains visible
	// (positive depth and not extremely magnified) after the forward
	// rotation, otherwise the centroid of the control points.
	centerDir := forward.Mul3x1(mgl64.Vec3{0, 0, effectiveFocal})
	anchorX, anchorY := 0.0, 0.0
	if centerDir[2] <= 0 || effectiveFocal/centerDir[2] > 10 {
		var sx, sy float64
		for _, p := range points {
			sx += p.X
			sy += p.Y
		}
		anchorX, anchorY = sx/float64(len(points)), sy/float64(len(points))
	}

	// Mapping scale: ratio between the anchor's pre- and post-rotation
	// radius, so the corrected image keeps roughly the same coverage. An
	// anchor at the image center has no radius to compare and keeps scale 1.
	anchorDir := backward.Mul3x1(mgl64.Vec3{anchorX, anchorY, effectiveFocal})
	scale := 1.0
	if anchorDir[2] > epsln {
		preR := math.Hypot(anchorX, anchorY)
		postR := math.Hypot(anchorDir[0]/anchorDir[2]*effectiveFocal, anchorDir[1]/anchorDir[2]*effectiveFocal)
		if postR > epsln && preR > epsln {
			scale = preR / postR
		}
	}

	return &PerspectiveSolution{
		Forward: forward, Backward: backward,
		Scale: scale, AnchorX: anchorX, AnchorY: anchorY,
	}, nil
}

// Apply re-projects one output-image coordinate through the solution's
// backward rotation, matching ModifyCoord_Perspective_Correction: points
// whose transformed depth is <= 0 have no valid source and are marked with
// the out-of-domain sentinel.
func (sol *PerspectiveSolution) Apply(x, y, focal float64) (ox, oy float64, ok bool) {
	dir := sol.Backward.Mul3x1(mgl64.Vec3{
		(x - sol.AnchorX) / sol.Scale,
		(y - sol.AnchorY) / sol.Scale,
		focal,
	})
	if dir[2] <= 0 {
		return outOfDomain, outOfDomain, false
	}
	return dir[0] / dir[2] * focal, dir[1] / dir[2] * focal, true
}
