package transform

import (
	"testing"

	"go.viam.com/test"
)

func TestDistortRadialIdentityWhenNone(t *testing.T) {
	x, y := DistortRadial(DistortionNone, [5]float64{}, 0.3, 0.4)
	test.That(t, x, test.ShouldEqual, 0.3)
	test.That(t, y, test.ShouldEqual, 0.4)
}

func TestDistortRadialZeroRadius(t *testing.T) {
	x, y := DistortRadial(DistortionPoly3, [5]float64{0.1}, 0, 0)
	test.That(t, x, test.ShouldEqual, 0)
	test.That(t, y, test.ShouldEqual, 0)
}

func TestUndistortRoundTripPoly3(t *testing.T) {
	c := [5]float64{0.1}
	x, y := DistortRadial(DistortionPoly3, c, 0.3, 0.2)
	ux, uy, ok := UndistortRadial(DistortionPoly3, c, x, y)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, ux, test.ShouldAlmostEqual, 0.3, 1e-3)
	test.That(t, uy, test.ShouldAlmostEqual, 0.2, 1e-3)
}

func TestUndistortRoundTripPoly5(t *testing.T) {
	c := [5]float64{0.05, 0.01}
	x, y := DistortRadial(DistortionPoly5, c, 0.25, -0.15)
	ux, uy, ok := UndistortRadial(DistortionPoly5, c, x, y)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, ux, test.ShouldAlmostEqual, 0.25, 1e-3)
	test.That(t, uy, test.ShouldAlmostEqual, -0.15, 1e-3)
}

func TestUndistortRoundTripPTLens(t *testing.T) {
	c := [5]float64{0.01, 0.02, 0.03}
	x, y := DistortRadial(DistortionPTLens, c, 0.4, 0.1)
	ux, uy, ok := UndistortRadial(DistortionPTLens, c, x, y)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, ux, test.ShouldAlmostEqual, 0.4, 1e-3)
	test.That(t, uy, test.ShouldAlmostEqual, 0.1, 1e-3)
}

func TestUndistortACMRoundTrip(t *testing.T) {
	c := [5]float64{0.01, 0.001, 0.0001, 0.002, 0.003}
	x, y := DistortACM(c, 0.3, 0.2)
	ux, uy, ok := UndistortACM(c, x, y)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, ux, test.ShouldAlmostEqual, 0.3, 1e-3)
	test.That(t, uy, test.ShouldAlmostEqual, 0.2, 1e-3)
}

func TestACMDistortionExponent(t *testing.T) {
	test.That(t, ACMDistortionExponent(0), test.ShouldEqual, 2.0)
	test.That(t, ACMDistortionExponent(1), test.ShouldEqual, 4.0)
	test.That(t, ACMDistortionExponent(2), test.ShouldEqual, 6.0)
	test.That(t, ACMDistortionExponent(3), test.ShouldEqual, 1.0)
}
