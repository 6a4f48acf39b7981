package transform

import "math"

// Projection identifies one of the eight supported lens projections. Values
// match the root package's ProjectionType enum; it is duplicated here (as a
// distinct, package-local type) to keep transform free of a dependency on
// the root package, matching the layering the teacher's rimage/transform
// subpackage uses relative to rimage itself.
type Projection int

const (
	Rectilinear Projection = iota
	Fisheye
	Panoramic
	Equirectangular
	Orthographic
	Stereographic
	Equisolid
	Thoby
)

// toDirection maps a projection's 2D normalized-and-focal-scaled coordinate
// to a unit direction vector in camera space (z forward along the optical
// axis). This, together with fromDirection, is the pivot every A->B
// projection conversion composes through: rather than hand-duplicating the
// 20 pairwise conversion routines the original implements (an optimization
// from an era that needed to avoid redundant trig calls on SIMD paths),
// Convert composes toDirection(src) . fromDirection(dst), which is
// mathematically equivalent for every pair and does not require a separate
// equirectangular special case (see DESIGN.md).
func toDirection(p Projection, x, y float64) (dx, dy, dz float64, ok bool) {
	r := math.Hypot(x, y)
	switch p {
	case Rectilinear:
		n := math.Sqrt(x*x + y*y + 1)
		return x / n, y / n, 1 / n, true
	case Fisheye:
		theta := r
		if theta > math.Pi {
			return 0, 0, 0, false
		}
		if r == 0 {
			return 0, 0, 1, true
		}
		s := math.Sin(theta) / r
		return x * s, y * s, math.Cos(theta), true
	case Panoramic:
		a := x
		e := math.Atan(y)
		horiz := math.Cos(e)
		return horiz * math.Sin(a), math.Sin(e), horiz * math.Cos(a), true
	case Equirectangular:
		a := x
		e := y
		horiz := math.Cos(e)
		return horiz * math.Sin(a), math.Sin(e), horiz * math.Cos(a), true
	case Orthographic:
		if r > 1 {
			return 0, 0, 0, false
		}
		return x, y, math.Sqrt(1-r*r), true
	case Stereographic:
		theta := 2 * math.Atan(r/2)
		if r == 0 {
			return 0, 0, 1, true
		}
		s := math.Sin(theta) / r
		return x * s, y * s, math.Cos(theta), true
	case Equisolid:
		if r > 2 {
			return 0, 0, 0, false
		}
		theta := 2 * math.Asin(r/2)
		if r == 0 {
			return 0, 0, 1, true
		}
		s := math.Sin(theta) / r
		return x * s, y * s, math.Cos(theta), true
	case Thoby:
		ratio := r / thobyK1
		if ratio > 1 || ratio < -1 {
			return 0, 0, 0, false
		}
		theta := math.Asin(ratio) / thobyK2
		if r == 0 {
			return 0, 0, 1, true
		}
		s := math.Sin(theta) / r
		return x * s, y * s, math.Cos(theta), true
	default:
		return 0, 0, 0, false
	}
}

// fromDirection is the inverse of toDirection: given a unit direction, it
// returns the projection's 2D coordinate.
func fromDirection(p Projection, dx, dy, dz float64) (x, y float64, ok bool) {
	switch p {
	case Rectilinear:
		if dz <= epsln {
			return 0, 0, false
		}
		return dx / dz, dy / dz, true
	case Fisheye:
		theta := math.Acos(clamp(dz, -1, 1))
		horiz := math.Hypot(dx, dy)
		if horiz < epsln {
			return 0, 0, true
		}
		s := theta / horiz
		return dx * s, dy * s, true
	case Panoramic:
		if math.Abs(dx) < epsln && dz < 0 {
			return 0, 0, false
		}
		a := math.Atan2(dx, dz)
		horiz := math.Hypot(dx, dz)
		if horiz < epsln {
			return 0, 0, false
		}
		e := math.Atan2(dy, horiz)
		return a, math.Tan(e), true
	case Equirectangular:
		a := math.Atan2(dx, dz)
		e := math.Asin(clamp(dy, -1, 1))
		return a, e, true
	case Orthographic:
		if dz < 0 {
			return 0, 0, false
		}
		return dx, dy, true
	case Stereographic:
		theta := math.Acos(clamp(dz, -1, 1))
		horiz := math.Hypot(dx, dy)
		if horiz < epsln {
			return 0, 0, true
		}
		r := 2 * math.Tan(theta/2)
		s := r / horiz
		return dx * s, dy * s, true
	case Equisolid:
		theta := math.Acos(clamp(dz, -1, 1))
		horiz := math.Hypot(dx, dy)
		if horiz < epsln {
			return 0, 0, true
		}
		r := 2 * math.Sin(theta/2)
		s := r / horiz
		return dx * s, dy * s, true
	case Thoby:
		theta := math.Acos(clamp(dz, -1, 1))
		horiz := math.Hypot(dx, dy)
		if horiz < epsln {
			return 0, 0, true
		}
		r := thobyK1 * math.Sin(thobyK2*theta)
		s := r / horiz
		return dx * s, dy * s, true
	default:
		return 0, 0, false
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Convert re-projects a point between any two of the eight supported
// projections by going through a unit direction vector. Coordinates are
// assumed already scaled by the real focal length on both sides. Points
// with no valid direction (outside the projection's domain, e.g. beyond a
// fisheye's field of view) or no valid inverse (behind the camera for a
// rectilinear target) return ok=false and the original's sentinel
// coordinate.
func Convert(src, dst Projection, x, y float64) (ox, oy float64, ok bool) {
	if src == dst {
		return x, y, true
	}
	dx, dy, dz, valid := toDirection(src, x, y)
	if !valid {
		return outOfDomain, outOfDomain, false
	}
	ox, oy, valid = fromDirection(dst, dx, dy, dz)
	if !valid {
		return outOfDomain, outOfDomain, false
	}
	return ox, oy, true
}
