package transform

import (
	"testing"

	"go.viam.com/test"
)

func TestGetAutoScaleIdentityGeometryIsOne(t *testing.T) {
	identity := func(x, y float64) (float64, float64, bool) { return x, y, true }
	scale := GetAutoScale(identity, 10, 5, false)
	test.That(t, scale, test.ShouldAlmostEqual, 1.0, 1e-3)
}

func TestGetAutoScaleShrinkingGeometryNeedsScaleUp(t *testing.T) {
	// A geometry that shrinks every point towards the center needs the
	// image scaled up to still cover the original frame.
	shrink := func(x, y float64) (float64, float64, bool) { return x * 0.5, y * 0.5, true }
	scale := GetAutoScale(shrink, 10, 5, false)
	test.That(t, scale, test.ShouldBeGreaterThan, 1.9)
}

func TestGetAutoScaleSubpixelAddsExtraMargin(t *testing.T) {
	identity := func(x, y float64) (float64, float64, bool) { return x, y, true }
	without := GetAutoScale(identity, 10, 5, false)
	with := GetAutoScale(identity, 10, 5, true)
	test.That(t, with, test.ShouldBeGreaterThan, without)
}
