package lensfun

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func testLens() *Lens {
	return &Lens{
		Maker:      "Acme",
		Model:      "50mm f/1.8",
		MinFocalMM: 50,
		MaxFocalMM: 50,
		Calibrations: []CalibrationSet{
			{CropFactor: 1.5},
		},
	}
}

func TestNewModifierRejectsInvalidLens(t *testing.T) {
	_, err := NewModifier(nil, 50, 1.5, 100, 100, PixelFormatU8, false)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewModifier(&Lens{Maker: "Acme"}, 50, 1.5, 100, 100, PixelFormatU8, false)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestNewModifierRejectsNonPositiveFocalOrCrop(t *testing.T) {
	_, err := NewModifier(testLens(), 0, 1.5, 100, 100, PixelFormatU8, false)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewModifier(testLens(), 50, 0, 100, 100, PixelFormatU8, false)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestNewModifierFallsBackToFirstCalibrationSetWhenNoneQualify(t *testing.T) {
	lens := &Lens{
		Maker:        "Acme",
		MinFocalMM:   50,
		MaxFocalMM:   50,
		Calibrations: []CalibrationSet{{CropFactor: 4.0}},
	}
	m, err := NewModifier(lens, 50, 1.0, 100, 100, PixelFormatU8, false)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.calibSet, test.ShouldNotBeNil)
	test.That(t, m.calibSet.CropFactor, test.ShouldEqual, 4.0)
}

func TestNewModifierCenterPixelMapsToNormalizedOrigin(t *testing.T) {
	// With no optical-axis offset, the pixel-centre convention means the
	// exact geometric center of the effective (width-1, height-1) span maps
	// to the normalized frame's origin.
	lens := testLens()
	m, err := NewModifier(lens, 50, 1.5, 101, 51, PixelFormatU8, false)
	test.That(t, err, test.ShouldBeNil)

	nx, ny := m.toNormalized(50, 25)
	test.That(t, nx, test.ShouldAlmostEqual, 0.0, 1e-9)
	test.That(t, ny, test.ShouldAlmostEqual, 0.0, 1e-9)
}

func TestModifierToPixelIsInverseOfToNormalized(t *testing.T) {
	m, err := NewModifier(testLens(), 50, 1.5, 640, 480, PixelFormatU8, false)
	test.That(t, err, test.ShouldBeNil)

	px, py := 123.0, 77.0
	nx, ny := m.toNormalized(px, py)
	bx, by := m.toPixel(nx, ny)
	test.That(t, bx, test.ShouldAlmostEqual, px, 1e-6)
	test.That(t, by, test.ShouldAlmostEqual, py, 1e-6)
}

func TestResolveRealFocalFallsBackWithoutMeasuredSamples(t *testing.T) {
	lens := testLens()
	lens.Calibrations[0].Distortion = []DistortionSample{
		{Model: DistortionModelPoly3, FocalMM: 50}, // RealFocalMM left at 0
	}
	m, err := NewModifier(lens, 50, 1.5, 100, 100, PixelFormatU8, false)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.RealFocalSource(), test.ShouldEqual, RealFocalFallback)
	test.That(t, m.realFocalMM, test.ShouldEqual, 50.0)
}

func TestResolveRealFocalUsesMeasuredSampleOnExactFocalMatch(t *testing.T) {
	lens := testLens()
	lens.Calibrations[0].Distortion = []DistortionSample{
		{Model: DistortionModelPoly3, FocalMM: 50, RealFocalMM: 48.5},
	}
	m, err := NewModifier(lens, 50, 1.5, 100, 100, PixelFormatU8, false)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.RealFocalSource(), test.ShouldEqual, RealFocalMeasured)
	test.That(t, m.realFocalMM, test.ShouldEqual, 48.5)
}

func TestGetModFlagsStartsEmptyAndAccumulates(t *testing.T) {
	m, err := NewModifier(testLens(), 50, 1.5, 100, 100, PixelFormatU8, false)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.GetModFlags(), test.ShouldEqual, ModFlags(0))

	test.That(t, m.EnableScaling(2.0), test.ShouldBeNil)
	test.That(t, m.GetModFlags()&ModScale, test.ShouldNotEqual, ModFlags(0))
}

func TestEnableScalingFactorOneIsNoOp(t *testing.T) {
	m, err := NewModifier(testLens(), 50, 1.5, 100, 100, PixelFormatU8, false)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.EnableScaling(1.0), test.ShouldBeNil)
	test.That(t, m.GetModFlags(), test.ShouldEqual, ModFlags(0))
}

func TestEnableDistortionCorrectionNoSamplesIsSilentNoOp(t *testing.T) {
	m, err := NewModifier(testLens(), 50, 1.5, 100, 100, PixelFormatU8, false)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.EnableDistortionCorrection(), test.ShouldBeNil)
	test.That(t, m.GetModFlags()&ModDistortion, test.ShouldEqual, ModFlags(0))
}

func TestEnableDistortionCorrectionReportsConflictButStillApplies(t *testing.T) {
	lens := testLens()
	lens.Calibrations[0].Distortion = []DistortionSample{
		{Model: DistortionModelPoly3, FocalMM: 50, Coefficients: [5]float64{0.01}},
		{Model: DistortionModelPTLens, FocalMM: 50, Coefficients: [5]float64{0.02}},
	}
	m, err := NewModifier(lens, 50, 1.5, 100, 100, PixelFormatU8, false)
	test.That(t, err, test.ShouldBeNil)

	err = m.EnableDistortionCorrection()
	test.That(t, err, test.ShouldNotBeNil)
	// The first model's samples still get applied despite the conflict.
	test.That(t, m.GetModFlags()&ModDistortion, test.ShouldNotEqual, ModFlags(0))
}

func TestEnablePerspectiveCorrectionRejectsReverseMode(t *testing.T) {
	m, err := NewModifier(testLens(), 50, 1.5, 100, 100, PixelFormatU8, true)
	test.That(t, err, test.ShouldBeNil)

	err = m.EnablePerspectiveCorrection([]float64{1, 2, 3, 4}, []float64{1, 2, 3, 4}, 0)
	test.That(t, err, test.ShouldEqual, ErrUnsupportedReverse)
}

func TestEnableProjectionTransformLooksUpSourceFromOutputCoordinate(t *testing.T) {
	// A panoramic (cylindrical) lens corrected to rectilinear: along the
	// horizontal axis the exact closed form is
	// Convert(Rectilinear, Panoramic, x, 0) = (atan(x), 0), since the coord
	// chain runs output (rectilinear) to source (panoramic).
	lens := testLens()
	lens.Type = ProjectionPanoramic
	m, err := NewModifier(lens, 50, 1.5, 100, 100, PixelFormatU8, false)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.EnableProjectionTransform(ProjectionRectilinear), test.ShouldBeNil)

	nx := 0.2
	rx, ry, ok := m.chains.runCoord(nx, 0)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, ry, test.ShouldAlmostEqual, 0, 1e-9)

	scaleIn := m.normalizedInMM / m.realFocalMM
	scaleOut := m.realFocalMM / m.normalizedInMM
	want := math.Atan(nx*scaleIn) * scaleOut
	test.That(t, rx, test.ShouldAlmostEqual, want, 1e-9)
}

func TestEnablePerspectiveCorrectionRejectsMismatchedPointArrays(t *testing.T) {
	m, err := NewModifier(testLens(), 50, 1.5, 100, 100, PixelFormatU8, false)
	test.That(t, err, test.ShouldBeNil)

	err = m.EnablePerspectiveCorrection([]float64{1, 2, 3}, []float64{1, 2}, 0)
	test.That(t, err, test.ShouldNotBeNil)
}
