package lensfun

// Numeric constants mirrored from the original C++ implementation
// (libs/lensfun/mod-coord.cpp, mod-pc.cpp, auxfun.cpp). Keep these exact:
// numeric results depend on the same iteration caps and thresholds as the
// original.
const (
	// newtonEps is the convergence tolerance for the distortion/TCA inverse
	// (undistort) Newton solver, expressed in normalized-radius units.
	newtonEps = 1e-5

	// newtonMaxSteps caps the undistort Newton iteration; step indices 0..5
	// are tried, step 6 aborts.
	newtonMaxSteps = 6

	// autoscaleNewtonMaxSteps caps the boundary-residual Newton solver used
	// by GetAutoScale.
	autoscaleNewtonMaxSteps = 50

	// autoscaleFiniteDiffStep is the initial forward-difference step for the
	// autoscale residual derivative estimate; it is doubled whenever the
	// resulting derivative underflows autoscaleFiniteDiffMinDelta.
	autoscaleFiniteDiffStep     = 1e-4
	autoscaleFiniteDiffMinDelta = 1e-5

	// autoscaleSafetyFactor inflates the computed scale slightly so no
	// uncovered border remains after floating point rounding.
	autoscaleSafetyFactor = 1.001
	// autoscaleSubpixelFactor is an additional inflation applied when
	// subpixel (TCA) distortion is also enabled, since the red/blue
	// channels can reach slightly further than green.
	autoscaleSubpixelFactor = 1.001

	// vignettingIDWPower is the inverse-distance-weighting exponent used to
	// interpolate vignetting samples across (focal, aperture, distance).
	vignettingIDWPower = 3.5
	// vignettingExactThreshold: a sample closer than this is used verbatim.
	vignettingExactThreshold = 1e-4
	// vignettingFailThreshold: if the nearest sample is farther than this,
	// interpolation fails outright (no vignetting correction is applied).
	vignettingFailThreshold = 1.0

	// cropFactorMatchRatio is the minimum crop_factor ratio (image/calib)
	// considered a usable CalibrationSet match (original: r >= 0.96).
	cropFactorMatchRatio = 0.96

	// svdJacobiThresholdFactor and the cycle-count rule below reproduce the
	// original Hestenes-Jacobi SVD exactly (mod-pc.cpp's svd()).
	svdJacobiThresholdFactor = 0.2
	svdSmallN                = 120
	svdSmallNCycles          = 60

	// perspectiveAngleClamp bounds the final composite rotation angle.
	perspectiveAngleClamp = 0.9 * 3.141592653589793

	// thobyK1, thobyK2 are the two empirical constants of Thoby's fisheye
	// projection model.
	thobyK1 = 1.47
	thobyK2 = 0.713

	// epsln is a small epsilon used to guard near-zero denominators in the
	// projection conversion formulas.
	epsln = 1.0e-10

	// outOfDomain is the sentinel coordinate value used to mark a pixel
	// whose inverse projection has no solution (matches the original's
	// 1.6e16 marker).
	outOfDomain = 1.6e16

	// referenceFrameWidthMM and referenceFrameHeightMM are the dimensions,
	// in millimetres, of the 36x24mm reference (full-frame 35mm) sensor whose
	// diagonal crop factors are defined against.
	referenceFrameWidthMM  = 36.0
	referenceFrameHeightMM = 24.0
)
