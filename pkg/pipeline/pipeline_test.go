package pipeline

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forecastlab/demandcast/pkg/selection"
	"github.com/forecastlab/demandcast/pkg/timeseries"
)

// demandSeries is a multiplicative trend+seasonal series, the shape the log
// transform is meant for.
func demandSeries(n int) *timeseries.Series {
	gen := timeseries.NewGenerator(timeseries.SyntheticConfig{
		Name:      "demand",
		Base:      4.6,
		Trend:     0.004,
		Amplitude: 0.15,
		Period:    12,
		Noise:     0.01,
		Seed:      11,
	})
	return gen.Multiplicative(n)
}

func smallBounds() selection.Bounds {
	return selection.Bounds{MaxP: 1, MaxQ: 1, MaxSP: 1, MaxSQ: 1, MaxD: 1, MaxSD: 1}
}

func TestRunEndToEnd(t *testing.T) {
	runner, err := NewRunner(Config{
		Horizon: 24,
		Holdout: 12,
		Period:  12,
		Levels:  []float64{0.80, 0.95},
		Bounds:  smallBounds(),
	})
	require.NoError(t, err)

	res, err := runner.Run(demandSeries(132))
	require.NoError(t, err)

	assert.True(t, res.Model.Fitted(), "final model not fitted")
	assert.Equal(t, 24, res.Forecast.Horizon())
	assert.Equal(t, res.Selection.Order(), res.Order)
	assert.NotNil(t, res.Summary, "missing model summary")
	require.NotNil(t, res.Validation)
	assert.Equal(t, 12, res.Validation.N)
	assert.GreaterOrEqual(t, res.Validation.MAPE, 0.0, "holdout MAPE not finite")
	assert.NotNil(t, res.Baseline, "missing seasonal naive benchmark")

	for i := range res.Forecast.Mean {
		want := math.Exp(res.LogForecast.Mean[i])
		require.InDelta(t, want, res.Forecast.Mean[i], 1e-9,
			"back-transform mismatch at step %d", i)
		require.Greater(t, res.Forecast.Mean[i], 0.0,
			"back-transformed forecast not positive at step %d", i)
	}

	for _, level := range []float64{0.80, 0.95} {
		widths, err := res.LogForecast.Widths(level)
		require.NoError(t, err)
		for i := 1; i < len(widths); i++ {
			if !assert.GreaterOrEqual(t, widths[i], widths[i-1]-1e-9,
				"interval width at level %.2f shrinks at step %d", level, i) {
				break
			}
		}
	}
}

func TestRunRejectsNonPositive(t *testing.T) {
	runner, err := NewRunner(DefaultConfig())
	require.NoError(t, err)
	start := time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC)
	series := timeseries.New("bad", start, 12, []float64{100, 105, 0, 110, 96})

	_, err = runner.Run(series)
	assert.ErrorIs(t, err, timeseries.ErrNonPositive,
		"zero observation should fail the transform stage")
}

func TestRunShortSeries(t *testing.T) {
	runner, err := NewRunner(Config{Horizon: 12, Holdout: 12, Period: 12, Bounds: smallBounds()})
	require.NoError(t, err)

	_, err = runner.Run(demandSeries(30))
	require.Error(t, err, "30 observations with a 12-point holdout accepted")
	assert.Contains(t, err.Error(), "selection stage", "error should name the failing stage")
}

func TestNewRunnerValidation(t *testing.T) {
	_, err := NewRunner(Config{Horizon: 0, Holdout: 12})
	assert.Error(t, err, "zero horizon accepted")
	_, err = NewRunner(Config{Horizon: 12, Holdout: -1})
	assert.Error(t, err, "negative holdout accepted")
	_, err = NewRunner(Config{Horizon: 12, Holdout: 12, Levels: []float64{1.5}})
	assert.Error(t, err, "confidence level above 1 accepted")
}

func TestNewRunnerDefaults(t *testing.T) {
	runner, err := NewRunner(Config{Horizon: 12, Holdout: 12})
	require.NoError(t, err)

	assert.Len(t, runner.cfg.Levels, 2, "levels not defaulted")
	assert.NotEqual(t, selection.Bounds{}, runner.cfg.Bounds, "bounds not defaulted")
}

func TestDiagnose(t *testing.T) {
	runner, err := NewRunner(DefaultConfig())
	require.NoError(t, err)
	logSeries, err := demandSeries(120).Log()
	require.NoError(t, err)

	diag := runner.diagnose(logSeries, 12)
	require.NotNil(t, diag.ADF, "level tests missing from diagnostics")
	require.NotNil(t, diag.KPSS)
	require.NotNil(t, diag.ADFDiff, "differenced tests missing from diagnostics")
	require.NotNil(t, diag.KPSSDiff)
	assert.GreaterOrEqual(t, diag.SeasonalStrength, 0.0)
	assert.LessOrEqual(t, diag.SeasonalStrength, 1.0)
}
