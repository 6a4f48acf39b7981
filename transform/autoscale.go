package transform

import "math"

// GeometryFunc maps a normalized coordinate through whatever
// distortion/projection callbacks are currently enabled on a Modifier; it
// is the same shape the coord chain callbacks use, so autoscale can probe
// it without knowing anything about distortion models or projections.
type GeometryFunc func(x, y float64) (ox, oy float64, ok bool)

// residualDistance returns the signed distance from a transformed boundary
// point to the nearest of the four image edges (half-width hw, half-height
// hh from the image center); negative means the point has crossed outside
// the frame. AutoscaleResidualDistance takes the *max* of the four signed
// edge distances so the search generalizes to non-square images and
// diagonal corner rays.
func residualDistance(x, y, hw, hh float64) float64 {
	d := math.Max(x-hw, -x-hw)
	d = math.Max(d, y-hh)
	d = math.Max(d, -y-hh)
	return -d // positive while inside the frame
}

// transformedDistance runs geom on (cosTheta, sinTheta)*ru and reports the
// signed residual distance of the result to the image boundary.
func transformedDistance(geom GeometryFunc, cosTheta, sinTheta, ru, hw, hh float64) (float64, bool) {
	x, y, ok := geom(cosTheta*ru, sinTheta*ru)
	if !ok {
		return 0, false
	}
	return residualDistance(x, y, hw, hh), true
}

// solveBoundaryRadius finds, via Newton iteration with adaptive forward
// finite differences, the radius ru along direction (cosTheta, sinTheta)
// such that geom(ru) lands exactly on the image boundary (residual
// distance 0). It returns ok=false if the ray never reaches the boundary
// within autoscaleNewtonMaxSteps (this happens for ultrawide fisheye
// corners that map to infinity), in which case the caller should exclude
// this direction from the scale computation.
func solveBoundaryRadius(geom GeometryFunc, cosTheta, sinTheta, hw, hh float64) (float64, bool) {
	ru := math.Max(hw, hh)
	step := autoscaleFiniteDiffStep
	for i := 0; i < autoscaleNewtonMaxSteps; i++ {
		f, ok := transformedDistance(geom, cosTheta, sinTheta, ru, hw, hh)
		if !ok {
			return 0, false
		}
		if math.Abs(f) < 1e-6 {
			return ru, true
		}
		fPlus, ok := transformedDistance(geom, cosTheta, sinTheta, ru+step, hw, hh)
		if !ok {
			return 0, false
		}
		delta := fPlus - f
		for math.Abs(delta) < autoscaleFiniteDiffMinDelta && step < 1 {
			step *= 2
			fPlus, ok = transformedDistance(geom, cosTheta, sinTheta, ru+step, hw, hh)
			if !ok {
				return 0, false
			}
			delta = fPlus - f
		}
		deriv := delta / step
		if deriv == 0 {
			return 0, false
		}
		ru -= f / deriv
		if ru <= 0 {
			return 0, false
		}
	}
	return 0, false
}

// GetAutoScale computes the smallest uniform scale factor >= 1 that leaves
// no uncovered border after geom is applied, by probing the 8 boundary
// reference points (edge midpoints and corners) and taking the worst-case
// ratio, inflated by the fixed safety factors. subpixelEnabled adds the
// extra inflation the original applies when TCA is also active, since red
// and blue can reach slightly further than green.
func GetAutoScale(geom GeometryFunc, halfWidth, halfHeight float64, subpixelEnabled bool) float64 {
	type probe struct{ x, y float64 }
	probes := []probe{
		{halfWidth, 0}, {-halfWidth, 0},
		{0, halfHeight}, {0, -halfHeight},
		{halfWidth, halfHeight}, {-halfWidth, halfHeight},
		{halfWidth, -halfHeight}, {-halfWidth, -halfHeight},
	}

	best := 1.0
	for _, p := range probes {
		r := math.Hypot(p.x, p.y)
		if r == 0 {
			continue
		}
		cosTheta, sinTheta := p.x/r, p.y/r
		ru, ok := solveBoundaryRadius(geom, cosTheta, sinTheta, halfWidth, halfHeight)
		if !ok || ru <= 0 {
			continue
		}
		// ru is the pre-transform radius that geom maps exactly onto the
		// frame boundary; the needed pre-scale is how much farther that is
		// than the probe's own (already-at-the-edge) radius r.
		scale := ru / r
		if scale > best {
			best = scale
		}
	}

	best *= autoscaleSafetyFactor
	if subpixelEnabled {
		best *= autoscaleSubpixelFactor
	}
	return best
}
