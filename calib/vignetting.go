package calib

import "math"

// VignettingPoint is one calibration sample's (focal, aperture, distance)
// coordinate, already normalized: focal in [0,1] relative to the lens's
// focal range, aperture and distance still in their natural units (the
// linearizing a<-4/aperture, d<-0.1/distance mapping happens inside
// vignettingDistance).
type VignettingPoint struct {
	Focal, Aperture, Distance float64
}

// vignettingDistance is the 3D distance metric __vignetting_dist uses to
// weight calibration samples: aperture and distance are first mapped
// through 4/aperture and 0.1/distance to linearize their effect on
// exposure before computing a plain Euclidean distance against the
// (already normalized) focal axis.
func vignettingDistance(a, b VignettingPoint) float64 {
	df := a.Focal - b.Focal
	da := 4/a.Aperture - 4/b.Aperture
	dd := 0.1/a.Distance - 0.1/b.Distance
	return math.Sqrt(df*df + da*da + dd*dd)
}

// InterpolateVignetting combines calibration coefficient triples via
// inverse-distance weighting (power 3.5) in the normalized (focal,
// aperture, distance) space. samples and coeffs must be parallel slices.
// The interpolated coefficients are divided by focalScale, matching the
// original's final division by target_focal_scale; pass 1 to leave them
// unscaled.
//
// ok is false when the nearest sample is farther than
// vignettingFailThreshold, in which case no vignetting correction should be
// applied.
func InterpolateVignetting(samples []VignettingPoint, coeffs [][3]float64, target VignettingPoint, focalScale float64) ([3]float64, bool) {
	if len(samples) == 0 {
		return [3]float64{}, false
	}

	smallestDistance := math.Inf(1)
	var nearest [3]float64
	for i, s := range samples {
		d := vignettingDistance(s, target)
		if d < smallestDistance {
			smallestDistance = d
			nearest = coeffs[i]
		}
		if d < vignettingExactThreshold {
			return coeffs[i], true
		}
	}
	if smallestDistance > vignettingFailThreshold {
		return [3]float64{}, false
	}

	var sum [3]float64
	var totalWeight float64
	for i, s := range samples {
		d := vignettingDistance(s, target)
		w := 1 / math.Pow(d, vignettingIDWPower)
		totalWeight += w
		for k := 0; k < 3; k++ {
			sum[k] += coeffs[i][k] * w
		}
	}
	if totalWeight == 0 {
		return nearest, true
	}
	var out [3]float64
	for k := 0; k < 3; k++ {
		out[k] = sum[k] / (totalWeight * focalScale)
	}
	return out, true
}

const (
	vignettingIDWPower      = 3.5
	vignettingExactThreshold = 1e-4
	vignettingFailThreshold  = 1.0
)
