package calib

import (
	"testing"

	"go.viam.com/test"
)

func TestInterpolateVignettingExactMatchShortCircuits(t *testing.T) {
	target := VignettingPoint{Focal: 0.5, Aperture: 2, Distance: 1}
	samples := []VignettingPoint{
		{Focal: 0.1, Aperture: 2, Distance: 1},
		target, // identical to the query point: distance 0
	}
	coeffs := [][3]float64{{9, 9, 9}, {1, 2, 3}}

	got, ok := InterpolateVignetting(samples, coeffs, target, 1)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, got, test.ShouldResemble, [3]float64{1, 2, 3})
}

func TestInterpolateVignettingNoSamplesFails(t *testing.T) {
	_, ok := InterpolateVignetting(nil, nil, VignettingPoint{}, 1)
	test.That(t, ok, test.ShouldBeFalse)
}

func TestInterpolateVignettingFarFromEverySampleFails(t *testing.T) {
	samples := []VignettingPoint{{Focal: 0, Aperture: 100000, Distance: 100000}}
	coeffs := [][3]float64{{1, 1, 1}}
	target := VignettingPoint{Focal: 10, Aperture: 100000, Distance: 100000}

	_, ok := InterpolateVignetting(samples, coeffs, target, 1)
	test.That(t, ok, test.ShouldBeFalse)
}

func TestInterpolateVignettingEquidistantSamplesAverage(t *testing.T) {
	// Two samples placed symmetrically around the target focal length, with
	// aperture and distance held identical to the target so only the focal
	// axis contributes to the distance metric. Equal distances mean equal
	// IDW weights, so the result collapses to a plain average of the two
	// coefficient triples.
	target := VignettingPoint{Focal: 0.5, Aperture: 2, Distance: 1}
	samples := []VignettingPoint{
		{Focal: 0.3, Aperture: 2, Distance: 1},
		{Focal: 0.7, Aperture: 2, Distance: 1},
	}
	coeffs := [][3]float64{{1, 2, 3}, {5, 6, 7}}

	got, ok := InterpolateVignetting(samples, coeffs, target, 1)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, got[0], test.ShouldAlmostEqual, 3.0, 1e-9)
	test.That(t, got[1], test.ShouldAlmostEqual, 4.0, 1e-9)
	test.That(t, got[2], test.ShouldAlmostEqual, 5.0, 1e-9)
}

func TestInterpolateVignettingFocalScaleDividesResult(t *testing.T) {
	target := VignettingPoint{Focal: 0.5, Aperture: 2, Distance: 1}
	samples := []VignettingPoint{
		{Focal: 0.3, Aperture: 2, Distance: 1},
		{Focal: 0.7, Aperture: 2, Distance: 1},
	}
	coeffs := [][3]float64{{1, 2, 3}, {5, 6, 7}}

	got, ok := InterpolateVignetting(samples, coeffs, target, 2)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, got[0], test.ShouldAlmostEqual, 1.5, 1e-9)
}
