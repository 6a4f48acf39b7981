package lensfun

import (
	"math"

	"github.com/lensfun-go/lensfun/calib"
	"github.com/lensfun-go/lensfun/transform"
	"github.com/pkg/errors"
)

func toTransformDistortionModel(m DistortionModel) transform.DistortionModel {
	switch m {
	case DistortionModelPoly3:
		return transform.DistortionPoly3
	case DistortionModelPoly5:
		return transform.DistortionPoly5
	case DistortionModelPTLens:
		return transform.DistortionPTLens
	case DistortionModelACM:
		return transform.DistortionACM
	default:
		return transform.DistortionNone
	}
}

func toTransformTCAModel(m TCAModel) transform.TCAModel {
	switch m {
	case TCAModelLinear:
		return transform.TCALinear
	case TCAModelPoly3:
		return transform.TCAPoly3
	case TCAModelACM:
		return transform.TCAACM
	default:
		return transform.TCANone
	}
}

func toTransformVignettingModel(m VignettingModel) transform.VignettingModel {
	switch m {
	case VignettingModelPA:
		return transform.VignettingPA
	case VignettingModelACM:
		return transform.VignettingACM
	default:
		return transform.VignettingNone
	}
}

// filterDistortionByModel returns the samples matching the first model tag
// encountered, logging a warning (and returning a ConflictingModelError)
// when later samples disagree, matching the original's silent-ignore
// policy for conflicting calibration tags.
func (m *Modifier) filterDistortionByModel() ([]DistortionSample, DistortionModel, error) {
	if m.calibSet == nil {
		return nil, DistortionModelNone, nil
	}
	var out []DistortionSample
	model := DistortionModelNone
	var conflict error
	for _, s := range m.calibSet.Distortion {
		if model == DistortionModelNone {
			model = s.Model
		}
		if s.Model != model {
			if conflict == nil {
				conflict = &ConflictingModelError{Defect: "distortion"}
				m.logger.Warnw("conflicting distortion models in calibration set", "lens", m.lens.Model)
			}
			continue
		}
		out = append(out, s)
	}
	return out, model, conflict
}

// distortionExponent returns the pre-rescaling exponent for coefficient
// index under model, matching lens.cpp's __parameter_scales.
func distortionExponent(model DistortionModel, index int) float64 {
	if model == DistortionModelACM {
		return transform.ACMDistortionExponent(index)
	}
	return 1
}

// EnableDistortionCorrection interpolates the lens's distortion
// calibration at the Modifier's focal length and registers the
// corresponding coord-chain callback (undistort at priority 250 when
// correcting, distort at priority 750 in reverse/simulate mode).
func (m *Modifier) EnableDistortionCorrection() error {
	samples, model, conflict := m.filterDistortionByModel()
	if len(samples) == 0 {
		return wrapConfig("distortion", conflict)
	}

	var coeffs [5]float64
	focals := make([]float64, len(samples))
	for i, s := range samples {
		focals[i] = s.FocalMM
	}
	for k := 0; k < 5; k++ {
		raw := make([]float64, len(samples))
		for i, s := range samples {
			raw[i] = s.Coefficients[k]
		}
		exp := distortionExponent(model, k)
		scaled := calib.RescaleForInterpolation(raw, focals, exp)
		v, ok := calib.InterpolateCoefficient(focals, scaled, m.imageFocalMM)
		if !ok {
			continue
		}
		coeffs[k] = calib.UnscaleInterpolated(v, m.imageFocalMM, exp)
	}

	tModel := toTransformDistortionModel(model)
	undistort := !m.reverse

	m.chains.addCoord(distortionPriority(undistort), func(x, y float64) (float64, float64, bool) {
		if tModel == transform.DistortionACM {
			if undistort {
				ox, oy, ok := transform.UndistortACM(coeffs, x, y)
				return ox, oy, ok
			}
			ox, oy := transform.DistortACM(coeffs, x, y)
			return ox, oy, true
		}
		if undistort {
			return transform.UndistortRadial(tModel, coeffs, x, y)
		}
		ox, oy := transform.DistortRadial(tModel, coeffs, x, y)
		return ox, oy, true
	})

	m.enabledMods |= ModDistortion
	return wrapConfig("distortion", conflict)
}

func distortionPriority(undistort bool) int {
	if undistort {
		return PriorityDistortionForward
	}
	return PriorityDistortionReverse
}

// EnableTCACorrection interpolates the lens's TCA calibration and registers
// the subpixel-chain callback at priority 500.
func (m *Modifier) EnableTCACorrection() error {
	if m.calibSet == nil || len(m.calibSet.TCA) == 0 {
		return nil
	}
	var model TCAModel
	var samples []TCASample
	var conflict error
	for _, s := range m.calibSet.TCA {
		if model == TCAModelNone {
			model = s.Model
		}
		if s.Model != model {
			if conflict == nil {
				conflict = &ConflictingModelError{Defect: "TCA"}
				m.logger.Warnw("conflicting TCA models in calibration set", "lens", m.lens.Model)
			}
			continue
		}
		samples = append(samples, s)
	}
	if len(samples) == 0 {
		return wrapConfig("tca", conflict)
	}

	focals := make([]float64, len(samples))
	for i, s := range samples {
		focals[i] = s.FocalMM
	}
	var coeffs [12]float64
	for k := 0; k < 12; k++ {
		raw := make([]float64, len(samples))
		for i, s := range samples {
			raw[i] = s.Coefficients[k]
		}
		exp := 1.0
		if model == TCAModelACM {
			exp = transform.ACMTCAExponent(k)
		} else if k == 0 || k == 6 {
			// The zeroth-order ("scale near 1") red/blue term is
			// interpolated directly, without focal rescaling.
			exp = 0
		}
		scaled := calib.RescaleForInterpolation(raw, focals, exp)
		v, ok := calib.InterpolateCoefficient(focals, scaled, m.imageFocalMM)
		if !ok {
			continue
		}
		coeffs[k] = calib.UnscaleInterpolated(v, m.imageFocalMM, exp)
	}

	tModel := toTransformTCAModel(model)
	tcaCoeffs := transform.TCACoefficients{}
	copy(tcaCoeffs.Red[:], coeffs[0:6])
	copy(tcaCoeffs.Blue[:], coeffs[6:12])

	m.chains.addSubpixel(PriorityTCA, func(x, y float64) (rx, ry, gx, gy, bx, by float64) {
		return transform.ApplyTCA(tModel, tcaCoeffs, x, y)
	})

	m.enabledMods |= ModTCA
	return wrapConfig("tca", conflict)
}

// EnableVignettingCorrection interpolates the lens's vignetting calibration
// for the given aperture and subject distance, and registers the
// color-chain callback (devignette at priority 250 when correcting,
// vignette at 750 in reverse/simulate mode).
func (m *Modifier) EnableVignettingCorrection(aperture, distanceM float64) error {
	if m.calibSet == nil || len(m.calibSet.Vignetting) == 0 {
		return nil
	}
	var model VignettingModel
	var conflict error
	points := make([]calib.VignettingPoint, 0, len(m.calibSet.Vignetting))
	coeffs := make([][3]float64, 0, len(m.calibSet.Vignetting))

	minFocal, maxFocal := m.lens.MinFocalMM, m.lens.MaxFocalMM
	if maxFocal <= minFocal {
		maxFocal = minFocal + 1
	}
	normFocal := func(f float64) float64 {
		return (f - minFocal) / (maxFocal - minFocal)
	}

	for _, s := range m.calibSet.Vignetting {
		if model == VignettingModelNone {
			model = s.Model
		}
		if s.Model != model {
			if conflict == nil {
				conflict = &ConflictingModelError{Defect: "vignetting"}
				m.logger.Warnw("conflicting vignetting models in calibration set", "lens", m.lens.Model)
			}
			continue
		}
		points = append(points, calib.VignettingPoint{
			Focal: normFocal(s.FocalMM), Aperture: s.Aperture, Distance: s.DistanceM,
		})
		coeffs = append(coeffs, s.Coefficients)
	}
	if len(points) == 0 {
		return wrapConfig("vignetting", conflict)
	}

	target := calib.VignettingPoint{Focal: normFocal(m.imageFocalMM), Aperture: aperture, Distance: distanceM}
	c, ok := calib.InterpolateVignetting(points, coeffs, target, 1.0)
	if !ok {
		m.logger.Warnw("vignetting interpolation failed: nearest calibration point too far", "lens", m.lens.Model)
		return wrapConfig("vignetting", conflict)
	}

	// The color callback receives coordinates already in the
	// distortion-normalized frame (scaled by m.normScale, see
	// Modifier.toNormalized); the PA radius is defined in the
	// corner-normalized frame (r=1 at the image corner), so the conversion
	// factor is ns/NormScale, matching mod-color.cpp's
	// "x = x*NormScale - CenterX; ... x *= param[4]" with param[4] =
	// ns/NormScale, not ns alone.
	halfDiag := 2 / math.Hypot(float64(m.width), float64(m.height))
	radiusFactor := halfDiag / m.normScale
	devignette := !m.reverse
	priority := PriorityVignettingReverse
	if devignette {
		priority = PriorityDevignetting
	}

	m.chains.addColor(priority, func(x, y float64, channels []float64, format PixelFormat) {
		r2 := transform.VignettingRadiusSquared(x, y, radiusFactor)
		mul := transform.VignettingMultiplierFloat(c, r2, devignette)
		// Integer pixel formats go through the original's fixed-point
		// multiplier application so saturation matches at the integer
		// boundary (SPEC_FULL.md §4.1); floating point formats apply the
		// multiplier directly with a type-max clamp.
		switch format {
		case PixelFormatU8:
			for i := range channels {
				channels[i] = float64(transform.ApplyVignettingU8(uint8(channels[i]+0.5), mul))
			}
		case PixelFormatU16:
			for i := range channels {
				channels[i] = float64(transform.ApplyVignettingU16(uint16(channels[i]+0.5), mul))
			}
		default:
			typeMax := format.typeMax()
			for i := range channels {
				channels[i] = transform.ApplyVignettingFloat(channels[i], mul, typeMax)
			}
		}
	})

	m.enabledMods |= ModVignetting
	return wrapConfig("vignetting", conflict)
}

// EnableProjectionTransform registers a coord-chain callback (priority 500)
// that re-projects coordinates from target back to the lens's native
// projection, composing through the equirectangular pivot when no direct
// formula exists (see transform.Convert). The coord chain runs output to
// source, so correcting a fisheye image to rectilinear must look up, for
// a rectilinear output coordinate, the corresponding fisheye source
// coordinate -- the reverse of the nominal from-to direction.
func (m *Modifier) EnableProjectionTransform(target ProjectionType) error {
	src := toTransformProjection(m.lens.Type)
	dst := toTransformProjection(target)

	// AddCoordCallbackGeometry scales the common normalized frame into the
	// focal-length-natural frame the projection formulas expect by
	// focal/NormalizedInMillimeters, and back by its reciprocal.
	scaleIn := m.normalizedInMM / m.realFocalMM
	scaleOut := m.realFocalMM / m.normalizedInMM

	m.chains.addCoord(PriorityGeometry, func(x, y float64) (float64, float64, bool) {
		ox, oy, ok := transform.Convert(dst, src, x*scaleIn, y*scaleIn)
		if !ok {
			return x, y, false
		}
		return ox * scaleOut, oy * scaleOut, true
	})

	m.enabledMods |= ModGeometry
	return nil
}

func toTransformProjection(p ProjectionType) transform.Projection {
	switch p {
	case ProjectionFisheye:
		return transform.Fisheye
	case ProjectionPanoramic:
		return transform.Panoramic
	case ProjectionEquirectangular:
		return transform.Equirectangular
	case ProjectionOrthographic:
		return transform.Orthographic
	case ProjectionStereographic:
		return transform.Stereographic
	case ProjectionEquisolid:
		return transform.Equisolid
	case ProjectionThoby:
		return transform.Thoby
	default:
		return transform.Rectilinear
	}
}

// EnableScaling registers the uniform-scale coord callback. A factor of
// exactly 1.0 is a no-op (nothing is registered, matching the original's
// optimization); a factor of 0 triggers auto-scale via GetAutoScale.
func (m *Modifier) EnableScaling(factor float64) error {
	if factor == 1.0 {
		return nil
	}
	if factor == 0 {
		factor = m.GetAutoScale(m.reverse)
	}

	priority := PriorityScaleForward
	apply := func(x, y float64) (float64, float64, bool) { return x * factor, y * factor, true }
	if m.reverse {
		priority = PriorityScaleReverse
		apply = func(x, y float64) (float64, float64, bool) { return x / factor, y / factor, true }
	}
	m.chains.addCoord(priority, apply)

	m.enabledMods |= ModScale
	return nil
}

// GetAutoScale computes the smallest scale factor that leaves no
// uncovered border, probing the current coord chain (without the scale
// stage itself) at the image's boundary reference points.
func (m *Modifier) GetAutoScale(reverse bool) float64 {
	halfW := float64(m.width) / 2 * m.normScale
	halfH := float64(m.height) / 2 * m.normScale

	geom := func(x, y float64) (float64, float64, bool) {
		return m.chains.runCoord(x, y)
	}
	return transform.GetAutoScale(geom, halfW, halfH, m.enabledMods&ModTCA != 0)
}

// EnablePerspectiveCorrection solves for the rotation implied by the given
// control points and registers the coord-chain callback at priority 300.
// It returns ErrUnsupportedReverse immediately if the Modifier was
// constructed with reverse=true, since the original solver has no
// reverse-direction formulation.
func (m *Modifier) EnablePerspectiveCorrection(xs, ys []float64, d float64) error {
	if m.reverse {
		return ErrUnsupportedReverse
	}
	if len(xs) != len(ys) {
		return errors.New("lensfun: perspective correction control point arrays must be equal length")
	}
	points := make([]transform.Point2, len(xs))
	for i := range xs {
		nx, ny := m.toNormalized(xs[i], ys[i])
		points[i] = transform.Point2{X: nx, Y: ny}
	}

	sol, err := transform.SolvePerspective(points, m.realFocalMM, d)
	if err != nil {
		m.logger.Warnw("perspective correction unavailable", "error", err.Error())
		return wrapConfig("perspective", err)
	}

	m.chains.addCoord(PriorityPerspectiveCorrection, func(x, y float64) (float64, float64, bool) {
		return sol.Apply(x, y, m.realFocalMM)
	})

	m.enabledMods |= ModPerspective
	return nil
}
