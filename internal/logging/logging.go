// Package logging wraps github.com/edaniels/golog so call sites in the
// lensfun module never import the concrete logger directly, mirroring how
// go.viam.com/rdk/logging sits in front of golog in the teacher codebase.
package logging

import (
	"testing"

	"github.com/edaniels/golog"
)

// Logger is the structured logger interface used throughout this module.
type Logger interface {
	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
}

// New returns the package-wide default logger.
func New(name string) Logger {
	return golog.NewLogger(name)
}

// NewTest returns a logger suitable for use inside tests.
func NewTest(t testing.TB) Logger {
	return golog.NewTestLogger(t)
}
