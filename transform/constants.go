package transform

// Numeric constants mirrored from the original implementation's
// mod-coord.cpp, mod-pc.cpp, and auxfun.cpp. See the root package's
// constants.go for the pipeline-level counterparts (autoscale, vignetting
// interpolation, crop-factor matching) and DESIGN.md for why the exact
// values matter.
const (
	newtonEps      = 1e-5
	newtonMaxSteps = 6

	autoscaleNewtonMaxSteps     = 50
	autoscaleFiniteDiffStep     = 1e-4
	autoscaleFiniteDiffMinDelta = 1e-5
	autoscaleSafetyFactor       = 1.001
	autoscaleSubpixelFactor     = 1.001

	svdJacobiThresholdFactor = 0.2
	svdSmallN                = 120
	svdSmallNCycles          = 60

	perspectiveAngleClamp = 0.9 * 3.141592653589793

	thobyK1 = 1.47
	thobyK2 = 0.713
	epsln   = 1.0e-10

	outOfDomain = 1.6e16
)
