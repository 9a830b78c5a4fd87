// Package stats provides the diagnostics behind order selection: sample
// autocorrelations, unit-root and stationarity tests, residual whiteness
// checks and seasonal-strength measurement.
package stats

import "errors"

var (
	// ErrTooShort is returned when a series has too few observations for
	// the requested statistic.
	ErrTooShort = errors.New("stats: series too short")

	// ErrConstant is returned when a statistic is undefined because the
	// series has zero variance.
	ErrConstant = errors.New("stats: constant series")
)

// minObs is the smallest sample the regression-based tests accept.
const minObs = 10
