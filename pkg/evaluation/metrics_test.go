package evaluation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forecastlab/demandcast/pkg/forecast"
	"github.com/forecastlab/demandcast/pkg/timeseries"
)

func monthly(values []float64) *timeseries.Series {
	return timeseries.New("sales", time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC), 12, values)
}

func TestEvaluateKnownValues(t *testing.T) {
	report, err := Evaluate([]float64{100, 200}, []float64{110, 190})
	require.NoError(t, err)

	assert.InDelta(t, 10.0, report.MAE, 1e-12)
	assert.InDelta(t, 100.0, report.MSE, 1e-12)
	assert.InDelta(t, 10.0, report.RMSE, 1e-12)
	assert.InDelta(t, 7.5, report.MAPE, 1e-12)
	assert.InDelta(t, 0.0, report.ME, 1e-12, "errors -10 and +10 should cancel")
	assert.Equal(t, 2, report.N)
}

func TestEvaluatePerfect(t *testing.T) {
	values := []float64{112, 118, 132, 129, 121}
	report, err := Evaluate(values, values)
	require.NoError(t, err)

	assert.Zero(t, report.MAE)
	assert.Zero(t, report.RMSE)
	assert.Zero(t, report.MAPE)
}

func TestEvaluateNearPerfectMAPE(t *testing.T) {
	actual := make([]float64, 24)
	predicted := make([]float64, 24)
	for i := range actual {
		actual[i] = 100 + float64(i)
		predicted[i] = actual[i] + 1e-9
	}
	report, err := Evaluate(actual, predicted)
	require.NoError(t, err)
	assert.LessOrEqual(t, report.MAPE, 1e-8, "MAPE on a near-perfect forecast should be ~0")
}

func TestEvaluateLengthMismatch(t *testing.T) {
	actual := make([]float64, 23)
	predicted := make([]float64, 24)
	_, err := Evaluate(actual, predicted)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestEvaluateEmpty(t *testing.T) {
	_, err := Evaluate(nil, nil)
	assert.Error(t, err, "empty input accepted")
}

func TestEvaluateSkipsZeroActuals(t *testing.T) {
	report, err := Evaluate([]float64{0, 100}, []float64{5, 110})
	require.NoError(t, err)

	assert.InDelta(t, 10.0, report.MAPE, 1e-12, "MAPE should only count nonzero actuals")
	assert.InDelta(t, 7.5, report.MAE, 1e-12)
	assert.InDelta(t, -7.5, report.ME, 1e-12, "consistent over-forecast should be negative")
}

func TestEvaluateForecast(t *testing.T) {
	fc := &forecast.Forecast{Mean: []float64{110, 190}}

	_, err := EvaluateForecast(fc, monthly([]float64{100}))
	assert.ErrorIs(t, err, ErrLengthMismatch, "horizon 2 against 1 actual")

	report, err := EvaluateForecast(fc, monthly([]float64{100, 200}))
	require.NoError(t, err)
	assert.InDelta(t, 7.5, report.MAPE, 1e-12)
}
