package lensfun

import (
	"math"

	"github.com/lensfun-go/lensfun/calib"
	"github.com/lensfun-go/lensfun/internal/logging"
	"github.com/lensfun-go/lensfun/transform"
	"github.com/pkg/errors"
)

// ModFlags is a bitmask of which corrections are currently enabled on a
// Modifier.
type ModFlags uint32

const (
	ModDistortion ModFlags = 1 << iota
	ModTCA
	ModVignetting
	ModGeometry
	ModScale
	ModPerspective
)

// Modifier builds and evaluates the per-pixel transform chain for one
// (lens, focal, aperture, distance, image geometry) combination. A
// Modifier is immutable once its Enable* calls have finished; per-row
// Apply* methods may then be invoked concurrently from multiple goroutines
// provided each goroutine writes to a disjoint output range (see
// SPEC_FULL.md §5 and the RunRows helper in rows.go for a ready-made
// worker-pool wrapper around that contract).
type Modifier struct {
	lens     *Lens
	calibSet *CalibrationSet

	imageFocalMM float64
	imageCrop    float64
	width        int
	height       int
	pixelFormat  PixelFormat
	reverse      bool

	realFocalMM     float64
	realFocalSource RealFocalSource

	normScale        float64
	normUnscale      float64
	normalizedInMM   float64
	centerX, centerY float64

	chains      callbackChains
	enabledMods ModFlags

	logger logging.Logger
}

// NewModifier constructs a Modifier for lens, at the given nominal focal
// length and image sensor crop factor, for an image of the given pixel
// dimensions and format. reverse selects whether the pipeline corrects a
// defective image (false) or simulates defects on a clean one (true).
//
// Width/height follow the pixel-centre convention: an N-pixel span covers
// coordinates [0, N-1], so the effective span used in the normalized-frame
// derivation is max(width-1, 1) / max(height-1, 1).
func NewModifier(lens *Lens, imageFocalMM, imageCrop float64, width, height int, format PixelFormat, reverse bool) (*Modifier, error) {
	if err := lens.CheckValid(); err != nil {
		return nil, errors.Wrap(err, "lensfun: cannot create modifier")
	}
	if imageFocalMM <= 0 {
		return nil, errors.New("lensfun: image focal length must be positive")
	}
	if imageCrop <= 0 {
		return nil, errors.New("lensfun: image crop factor must be positive")
	}

	m := &Modifier{
		lens:         lens,
		imageFocalMM: imageFocalMM,
		imageCrop:    imageCrop,
		width:        width,
		height:       height,
		pixelFormat:  format,
		reverse:      reverse,
		logger:       logging.New("lensfun.modifier"),
	}

	effW := float64(width)
	if width >= 2 {
		effW = float64(width - 1)
	} else {
		effW = 1
	}
	effH := float64(height)
	if height >= 2 {
		effH = float64(height - 1)
	} else {
		effH = 1
	}

	set, ok := lens.bestCalibrationSet(imageCrop)
	if !ok && len(lens.Calibrations) > 0 {
		set = &lens.Calibrations[0]
		ok = true
	}
	if ok {
		m.calibSet = set
	}

	m.realFocalMM, m.realFocalSource = m.resolveRealFocal(imageFocalMM)

	diag := math.Hypot(referenceFrameWidthMM, referenceFrameHeightMM)
	// effW/effH are measured at the pixel centres; the sensor size is given
	// for the outer rim of the pixel array, so the diagonal used for the
	// scale factor adds 1 pixel back to each dimension.
	m.normScale = diag / imageCrop / math.Hypot(effW+1, effH+1) / m.realFocalMM
	m.normUnscale = 1 / m.normScale

	calibCrop := imageCrop
	aspectCorrection := 1.0
	if m.calibSet != nil && m.calibSet.CropFactor > 0 {
		calibCrop = m.calibSet.CropFactor
		if m.calibSet.AspectRatio > 0 {
			aspectCorrection = m.calibSet.AspectRatio
		}
	}
	m.normalizedInMM = diag / 2 / aspectCorrection / calibCrop

	minSide := math.Min(effW, effH)
	m.centerX = (effW/2 + minSide/2*lens.CenterX) * m.normScale
	m.centerY = (effH/2 + minSide/2*lens.CenterY) * m.normScale

	return m, nil
}

// resolveRealFocal interpolates RealFocalMM across the distortion samples
// around imageFocalMM (a sample without a measured value contributes its
// nominal FocalMM); when no sample carries a measured value it falls back to
// the nominal focal length (the "Open question" silent-fallback decision
// recorded in DESIGN.md).
func (m *Modifier) resolveRealFocal(imageFocalMM float64) (float64, RealFocalSource) {
	if m.calibSet == nil || len(m.calibSet.Distortion) == 0 {
		return imageFocalMM, RealFocalFallback
	}
	focals := make([]float64, len(m.calibSet.Distortion))
	reals := make([]float64, len(m.calibSet.Distortion))
	anyMeasured := false
	for i, s := range m.calibSet.Distortion {
		focals[i] = s.FocalMM
		if s.RealFocalMM > 0 {
			reals[i] = s.RealFocalMM
			anyMeasured = true
		} else {
			reals[i] = s.FocalMM
		}
	}
	if !anyMeasured {
		return imageFocalMM, RealFocalFallback
	}
	if v, ok := calib.InterpolateCoefficient(focals, reals, imageFocalMM); ok {
		return v, RealFocalMeasured
	}
	return imageFocalMM, RealFocalFallback
}

// RealFocalSource reports whether the Modifier's effective focal length for
// geometry transforms came from measured calibration data or a fallback to
// the nominal value.
func (m *Modifier) RealFocalSource() RealFocalSource { return m.realFocalSource }

// GetModFlags returns the bitmask of currently enabled corrections.
func (m *Modifier) GetModFlags() ModFlags { return m.enabledMods }

// toNormalized converts a pixel coordinate to the modifier's internal
// normalized, center-relative frame.
func (m *Modifier) toNormalized(px, py float64) (float64, float64) {
	return px*m.normScale - m.centerX, py*m.normScale - m.centerY
}

// toPixel is the inverse of toNormalized.
func (m *Modifier) toPixel(nx, ny float64) (float64, float64) {
	return (nx + m.centerX) * m.normUnscale, (ny + m.centerY) * m.normUnscale
}
