// Package calib combines a lens's sparse calibration samples into the
// effective coefficients a transform.* model needs for a specific
// (focal, aperture, distance) request. It is grounded on the original
// implementation's lens.cpp (InterpolateDistortion, InterpolateTCA,
// InterpolateVignetting) and auxfun.cpp's _lf_interpolate spline.
package calib

import "sort"

// FocalSample is any calibration sample indexed by focal length; it is the
// minimal shape Bracket needs to find the best four samples around a
// requested focal length.
type FocalSample interface {
	Focal() float64
}

// spline evaluates the piecewise-cubic Hermite interpolation the original
// implements in _lf_interpolate. y1 and y4 are the optional outer samples
// used only to estimate tangents at y2, y3; pass hasY1/hasY4=false when
// they are absent (the bracket only had two inner samples), matching the
// original's FLT_MAX sentinel for "no such sample".
func spline(y1, y2, y3, y4 float64, hasY1, hasY4 bool, t float64) float64 {
	var tg2, tg3 float64
	if hasY1 {
		tg2 = (y3 - y1) * 0.5
	} else {
		tg2 = y3 - y2
	}
	if hasY4 {
		tg3 = (y4 - y2) * 0.5
	} else {
		tg3 = y3 - y2
	}
	t2 := t * t
	t3 := t2 * t
	return (2*t3-3*t2+1)*y2 + (t3-2*t2+t)*tg2 + (-2*t3+3*t2)*y3 + (t3-t2)*tg3
}

// bracket holds up to two samples below and two above the requested focal
// length, sorted by ascending distance (nearest first).
type bracket struct {
	below []int // indices into the original slice, nearest first
	above []int
}

// findBracket scans samples (assumed already filtered to one consistent
// model) for up to two entries below and two above targetFocal, matching
// the original's 4-slot nearest-neighbor maintenance (__insert_spline).
func findBracket(focals []float64, targetFocal float64) bracket {
	var below, above []int
	for i, f := range focals {
		if f <= targetFocal {
			below = append(below, i)
		} else {
			above = append(above, i)
		}
	}
	sort.Slice(below, func(a, b int) bool { return focals[below[a]] > focals[below[b]] })
	sort.Slice(above, func(a, b int) bool { return focals[above[a]] < focals[above[b]] })
	if len(below) > 2 {
		below = below[:2]
	}
	if len(above) > 2 {
		above = above[:2]
	}
	return bracket{below: below, above: above}
}

// InterpolateCoefficient interpolates one scaled coefficient value given
// its per-sample values (already focal-rescaled by the caller, see
// RescaleForInterpolation) and their focal lengths, using the exact-match
// short-circuit, linear two-point, or Hermite four-point paths the original
// selects depending on how many bracketing samples are available. ok is
// false when there are no usable samples on either side.
func InterpolateCoefficient(focals []float64, values []float64, targetFocal float64) (float64, bool) {
	if len(focals) == 0 {
		return 0, false
	}
	for i, f := range focals {
		if f == targetFocal {
			return values[i], true
		}
	}

	br := findBracket(focals, targetFocal)
	switch {
	case len(br.below) == 0 && len(br.above) == 0:
		return 0, false
	case len(br.below) == 0:
		return values[br.above[0]], true
	case len(br.above) == 0:
		return values[br.below[0]], true
	case len(br.below) == 1 && len(br.above) == 1:
		f2, f3 := focals[br.below[0]], focals[br.above[0]]
		y2, y3 := values[br.below[0]], values[br.above[0]]
		t := (targetFocal - f2) / (f3 - f2)
		return y2 + t*(y3-y2), true
	default:
		// Full 4-point bracket (or a 3-point bracket missing one outer
		// sample); spline() degrades gracefully via hasY1/hasY4.
		i2, i3 := br.below[0], br.above[0]
		f2, f3 := focals[i2], focals[i3]
		y2, y3 := values[i2], values[i3]

		var y1, y4 float64
		hasY1, hasY4 := false, false
		if len(br.below) > 1 {
			y1 = values[br.below[1]]
			hasY1 = true
		}
		if len(br.above) > 1 {
			y4 = values[br.above[1]]
			hasY4 = true
		}
		t := (targetFocal - f2) / (f3 - f2)
		return spline(y1, y2, y3, y4, hasY1, hasY4, t), true
	}
}

// RescaleForInterpolation applies the per-model 1/focal pre-rescaling the
// original performs before interpolating distortion/TCA coefficients (most
// coefficients obey an approximate 1/f law, so rescaling linearizes the
// interpolation axis): each sample's raw value is multiplied by
// sampleFocal^exponent before interpolation, and the interpolated result
// must be divided by targetFocal^exponent by the caller. exponent is 1 for
// plain Hugin-normalized models (0 for the zeroth-order TCA term, which is
// interpolated directly); ACM models pass a per-coefficient exponent from
// transform.ACMDistortionExponent/ACMTCAExponent.
func RescaleForInterpolation(rawValues, focals []float64, exponent float64) []float64 {
	out := make([]float64, len(rawValues))
	for i, v := range rawValues {
		out[i] = v * pow(focals[i], exponent)
	}
	return out
}

// UnscaleInterpolated divides an interpolated coefficient back down by
// targetFocal^exponent, the second half of RescaleForInterpolation's pair.
func UnscaleInterpolated(value, targetFocal, exponent float64) float64 {
	return value / pow(targetFocal, exponent)
}

func pow(base, exp float64) float64 {
	if exp == 1 {
		return base
	}
	result := 1.0
	// Exponents used here are always small non-negative integers (0,1,2,4,6)
	// from the ACM exponent tables, so a simple repeated-multiply loop
	// avoids pulling in math.Pow's more general (and slower) path.
	n := int(exp)
	for i := 0; i < n; i++ {
		result *= base
	}
	return result
}
