package lensfun

import (
	"testing"

	"go.viam.com/test"
)

func TestInterpolateCropExactFocalMatch(t *testing.T) {
	lens := &Lens{Calibrations: []CalibrationSet{
		{
			CropFactor: 1.5,
			Crop: []CropSample{
				{FocalMM: 50, CropLeft: 0.01, CropRight: 0.02, CropTop: 0.03, CropBottom: 0.04},
				{FocalMM: 100, CropLeft: 0.05, CropRight: 0.06, CropTop: 0.07, CropBottom: 0.08},
			},
		},
	}}

	got, ok := lens.InterpolateCrop(1.5, 50)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, got.CropLeft, test.ShouldEqual, 0.01)
	test.That(t, got.CropRight, test.ShouldEqual, 0.02)
	test.That(t, got.CropTop, test.ShouldEqual, 0.03)
	test.That(t, got.CropBottom, test.ShouldEqual, 0.04)
}

func TestInterpolateCropLinearBetweenTwoSamples(t *testing.T) {
	lens := &Lens{Calibrations: []CalibrationSet{
		{
			CropFactor: 1.5,
			Crop: []CropSample{
				{FocalMM: 10, CropLeft: 0.0},
				{FocalMM: 30, CropLeft: 0.2},
			},
		},
	}}

	got, ok := lens.InterpolateCrop(1.5, 20)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, got.CropLeft, test.ShouldAlmostEqual, 0.1, 1e-9)
}

func TestInterpolateCropFailsWithoutQualifyingCalibrationSet(t *testing.T) {
	lens := &Lens{Calibrations: []CalibrationSet{{CropFactor: 4.0, Crop: []CropSample{{FocalMM: 50}}}}}
	_, ok := lens.InterpolateCrop(1.0, 50)
	test.That(t, ok, test.ShouldBeFalse)
}

func TestInterpolateCropFailsWithoutCropSamples(t *testing.T) {
	lens := &Lens{Calibrations: []CalibrationSet{{CropFactor: 1.5}}}
	_, ok := lens.InterpolateCrop(1.5, 50)
	test.That(t, ok, test.ShouldBeFalse)
}
