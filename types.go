// Package lensfun corrects optical defects — geometric distortion, lateral
// chromatic aberration, vignetting, and projection — in digital photographs
// using a calibrated lens/camera model. It implements the image-modifier
// pipeline: given a selected lens calibration and image geometry, it builds
// an ordered chain of per-pixel transforms and evaluates them over an image.
//
// The calibration database itself (XML loading, lens/camera fuzzy search)
// and image I/O are external collaborators; this package consumes already
// resolved Lens records and produces coordinate/color transforms only.
package lensfun

import (
	"github.com/pkg/errors"
)

// DistortionModel identifies the radial distortion formula a calibration
// sample was measured against.
type DistortionModel int

const (
	DistortionModelNone DistortionModel = iota
	DistortionModelPoly3
	DistortionModelPoly5
	DistortionModelPTLens
	DistortionModelACM
)

// TCAModel identifies the lateral chromatic aberration formula.
type TCAModel int

const (
	TCAModelNone TCAModel = iota
	TCAModelLinear
	TCAModelPoly3
	TCAModelACM
)

// VignettingModel identifies the vignetting falloff formula.
type VignettingModel int

const (
	VignettingModelNone VignettingModel = iota
	VignettingModelPA
	VignettingModelACM
)

// ProjectionType identifies one of the eight supported lens projections.
type ProjectionType int

const (
	ProjectionRectilinear ProjectionType = iota
	ProjectionFisheye
	ProjectionPanoramic
	ProjectionEquirectangular
	ProjectionOrthographic
	ProjectionStereographic
	ProjectionEquisolid
	ProjectionThoby
)

// DistortionSample is one calibration measurement of the distortion model
// for a lens at a particular focal length.
type DistortionSample struct {
	Model        DistortionModel
	FocalMM      float64
	RealFocalMM  float64 // 0 means "not measured", falls back to FocalMM
	Coefficients [5]float64
}

// TCASample is one calibration measurement of lateral chromatic aberration.
// Coefficients are packed per channel: [0:6] is red, [6:12] is blue; only
// the first k entries of each block are used, where k depends on Model (1
// for Linear, 3 for Poly3, 6 for ACM).
type TCASample struct {
	Model        TCAModel
	FocalMM      float64
	Coefficients [12]float64
}

// VignettingSample is one calibration measurement of vignetting falloff at a
// particular (focal, aperture, distance) triple.
type VignettingSample struct {
	Model        VignettingModel
	FocalMM      float64
	Aperture     float64
	DistanceM    float64
	Coefficients [3]float64
}

// CropSample records the real image crop (left/right/top/bottom, as
// fractions of the image size) measured at a particular focal length.
type CropSample struct {
	FocalMM             float64
	CropLeft, CropRight float64
	CropTop, CropBottom float64
}

// CalibrationSet groups calibration samples gathered on a single sensor
// geometry (crop factor, aspect ratio). A Lens may carry several sets, one
// per camera body or sensor crop used during calibration.
type CalibrationSet struct {
	CropFactor  float64
	AspectRatio float64

	Distortion []DistortionSample
	TCA        []TCASample
	Vignetting []VignettingSample
	Crop       []CropSample
}

// Lens describes a calibrated lens: its identity, optical-axis offset, and
// one or more CalibrationSets gathered at different sensor crop factors.
type Lens struct {
	Maker string
	Model string
	Mount []string

	MinFocalMM, MaxFocalMM float64
	MinAperture            float64

	// CenterX, CenterY describe the optical axis offset from the image
	// center, in units where 1.0 is half the shorter image side (see
	// NewModifier).
	CenterX, CenterY float64

	Type ProjectionType

	Calibrations []CalibrationSet
}

// RealFocalSource records whether a Modifier's effective focal length came
// from a measured calibration sample or from a fallback to the nominal
// focal length the caller requested.
type RealFocalSource int

const (
	RealFocalFallback RealFocalSource = iota
	RealFocalMeasured
)

// ErrUnsupportedReverse is returned by EnablePerspectiveCorrection when the
// Modifier was constructed in reverse mode; the original solver has no
// reverse-direction formulation.
var ErrUnsupportedReverse = errors.New("perspective correction is not supported in reverse mode")

// CheckValid reports whether the Lens has at least one usable
// CalibrationSet. A nil receiver is treated as invalid, matching the
// nil-safe CheckValid idiom used throughout this codebase's model types.
func (l *Lens) CheckValid() error {
	if l == nil {
		return errors.New("Lens not provided: invalid lens")
	}
	if len(l.Calibrations) == 0 {
		return errors.New("Lens has no calibration data: invalid lens")
	}
	return nil
}

// bestCalibrationSet picks, among l.Calibrations, the set whose crop factor
// best matches imageCrop, using the original's ratio test: a set qualifies
// when imageCrop/set.CropFactor >= cropFactorMatchRatio, and among qualifying
// sets the one with the largest ratio (the smallest crop factor) wins. It
// returns false if no set qualifies.
func (l *Lens) bestCalibrationSet(imageCrop float64) (*CalibrationSet, bool) {
	bestIdx := -1
	bestRatio := 0.0
	for i := range l.Calibrations {
		c := &l.Calibrations[i]
		if c.CropFactor <= 0 {
			continue
		}
		r := imageCrop / c.CropFactor
		if r >= cropFactorMatchRatio && r > bestRatio {
			bestRatio = r
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return nil, false
	}
	return &l.Calibrations[bestIdx], true
}
