package lensfun

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// ConflictingModelError is returned when a CalibrationSet's samples for one
// defect family disagree on which model they were measured against; the
// original silently ignores the conflicting samples and logs a warning,
// which this module preserves via the Modifier's logger, returning this
// error from the Enable* call as well so callers who check errors are not
// left in the dark.
type ConflictingModelError struct {
	Defect string
}

func (e *ConflictingModelError) Error() string {
	return "conflicting " + e.Defect + " calibration models within one calibration set"
}

// wrapConfig wraps a configuration-time error with the stage name that
// produced it, and aggregates multiple independent problems via multierr so
// a single Enable* call can report everything wrong at once.
func wrapConfig(stage string, errs ...error) error {
	var agg error
	for _, e := range errs {
		if e != nil {
			agg = multierr.Append(agg, e)
		}
	}
	if agg == nil {
		return nil
	}
	return errors.Wrapf(agg, "lensfun: %s configuration failed", stage)
}
