package lensfun

import "github.com/lensfun-go/lensfun/calib"

// InterpolateCrop looks up the lens's calibrated image crop (the border
// trimmed by the camera's in-body correction, expressed as left/right/top/
// bottom fractions) at the given focal length, interpolating between the
// nearest CropSample entries the same way distortion/TCA coefficients are
// interpolated. Like the original's InterpolateCrop, this is a standalone
// database query: no part of the Modifier pipeline consumes it, since crop
// samples describe sensor cropping metadata an application may want to
// report or apply itself, not a per-pixel correction this package performs.
// ok is false when imageCrop matches no CalibrationSet or that set carries
// no crop samples.
func (l *Lens) InterpolateCrop(imageCrop, focalMM float64) (CropSample, bool) {
	set, ok := l.bestCalibrationSet(imageCrop)
	if !ok || len(set.Crop) == 0 {
		return CropSample{}, false
	}

	focals := make([]float64, len(set.Crop))
	left := make([]float64, len(set.Crop))
	right := make([]float64, len(set.Crop))
	top := make([]float64, len(set.Crop))
	bottom := make([]float64, len(set.Crop))
	for i, c := range set.Crop {
		focals[i] = c.FocalMM
		left[i] = c.CropLeft
		right[i] = c.CropRight
		top[i] = c.CropTop
		bottom[i] = c.CropBottom
	}

	l1, ok1 := calib.InterpolateCoefficient(focals, left, focalMM)
	r1, ok2 := calib.InterpolateCoefficient(focals, right, focalMM)
	t1, ok3 := calib.InterpolateCoefficient(focals, top, focalMM)
	b1, ok4 := calib.InterpolateCoefficient(focals, bottom, focalMM)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return CropSample{}, false
	}

	return CropSample{FocalMM: focalMM, CropLeft: l1, CropRight: r1, CropTop: t1, CropBottom: b1}, true
}
