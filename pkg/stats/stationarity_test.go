package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func meanReverting(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = 100 + 2*math.Sin(float64(i)) + float64(i%7-3)
	}
	return values
}

func trending(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = 0.5*float64(i) + float64(i%7-3)
	}
	return values
}

func TestADFStationary(t *testing.T) {
	result, err := ADF(meanReverting(200), 0)
	require.NoError(t, err)

	assert.Equal(t, "adf", result.Test)
	assert.Less(t, result.Statistic, 0.0, "mean-reverting series should pull the statistic negative")
	assert.True(t, result.Stationary,
		"mean-reverting series not flagged stationary (stat=%f p=%f)", result.Statistic, result.PValue)
}

func TestADFTrending(t *testing.T) {
	result, err := ADF(trending(200), 0)
	require.NoError(t, err)

	assert.False(t, result.Stationary,
		"trending series flagged stationary (stat=%f p=%f)", result.Statistic, result.PValue)
	assert.GreaterOrEqual(t, result.PValue, 0.0)
	assert.LessOrEqual(t, result.PValue, 1.0)
}

func TestADFTooShort(t *testing.T) {
	_, err := ADF([]float64{1, 2, 3}, 0)
	assert.ErrorIs(t, err, ErrTooShort)
}

func TestKPSSStationary(t *testing.T) {
	result, err := KPSS(meanReverting(200), false, 0)
	require.NoError(t, err)

	assert.Equal(t, "kpss", result.Test)
	assert.True(t, result.Stationary,
		"mean-reverting series not flagged stationary (stat=%f p=%f)", result.Statistic, result.PValue)
}

func TestKPSSTrending(t *testing.T) {
	result, err := KPSS(trending(200), false, 0)
	require.NoError(t, err)

	assert.False(t, result.Stationary,
		"trending series flagged stationary (stat=%f p=%f)", result.Statistic, result.PValue)
	assert.GreaterOrEqual(t, result.Statistic, result.Critical["1%"],
		"trend statistic should clear the strictest critical value")
}

func TestKPSSTrendRegression(t *testing.T) {
	// Fitting the trend should absorb most of what the level test sees as
	// non-stationarity.
	values := make([]float64, 200)
	for i := range values {
		values[i] = 3 + 0.5*float64(i) + float64(i%7-3)
	}
	level, err := KPSS(values, false, 0)
	require.NoError(t, err)
	detrended, err := KPSS(values, true, 0)
	require.NoError(t, err)

	assert.Less(t, detrended.Statistic, level.Statistic,
		"trend regression did not reduce the statistic")
}

func TestKPSSTooShort(t *testing.T) {
	_, err := KPSS([]float64{1, 2}, false, 0)
	assert.ErrorIs(t, err, ErrTooShort)
}

func TestPValueInterpolation(t *testing.T) {
	// Table nodes map to themselves, midpoints fall between.
	assert.InDelta(t, 0.01, interpolatePValue(adfStats, adfPs, -3.43), 1e-12)

	mid := interpolatePValue(adfStats, adfPs, (-3.43-2.86)/2)
	assert.Greater(t, mid, 0.01)
	assert.Less(t, mid, 0.05)

	assert.Equal(t, 0.001, interpolatePValue(adfStats, adfPs, -99), "left clamp")
	assert.Equal(t, 0.01, interpolatePValue(kpssLevelStats, kpssPs, 99), "right clamp")
}
