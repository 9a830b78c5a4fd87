// Package evaluation scores forecasts against held-out actuals and provides
// naive benchmark forecasters to compare them with.
package evaluation

import (
	"errors"
	"fmt"
	"math"

	"github.com/forecastlab/demandcast/pkg/forecast"
	"github.com/forecastlab/demandcast/pkg/timeseries"
)

// ErrLengthMismatch is returned when a forecast and the actuals it is scored
// against have different lengths.
var ErrLengthMismatch = errors.New("evaluation: forecast and actual lengths differ")

// Report holds accuracy metrics. Metrics are only meaningful on the original
// measurement scale, so back-transform the forecast before scoring it. ME
// keeps its sign: positive means the forecast runs low.
type Report struct {
	MAE  float64 `json:"mae"`
	ME   float64 `json:"me"`
	MSE  float64 `json:"mse"`
	RMSE float64 `json:"rmse"`
	MAPE float64 `json:"mape"` // percent
	N    int     `json:"n"`
}

func (r *Report) String() string {
	return fmt.Sprintf("MAPE=%.2f%% RMSE=%.4f MAE=%.4f over %d observations",
		r.MAPE, r.RMSE, r.MAE, r.N)
}

// Evaluate scores predictions against actuals of the same length. Zero
// actuals are excluded from MAPE, which is otherwise undefined.
func Evaluate(actual, predicted []float64) (*Report, error) {
	if len(actual) != len(predicted) {
		return nil, fmt.Errorf("%w: %d actual, %d predicted",
			ErrLengthMismatch, len(actual), len(predicted))
	}
	if len(actual) == 0 {
		return nil, errors.New("evaluation: no observations to score")
	}

	var mae, me, mse, mape float64
	counted := 0
	for i := range actual {
		diff := actual[i] - predicted[i]
		mae += math.Abs(diff)
		me += diff
		mse += diff * diff
		if actual[i] != 0 {
			mape += math.Abs(diff / actual[i])
			counted++
		}
	}

	n := float64(len(actual))
	mae /= n
	me /= n
	mse /= n
	if counted > 0 {
		mape = mape / float64(counted) * 100
	}

	return &Report{
		MAE:  mae,
		ME:   me,
		MSE:  mse,
		RMSE: math.Sqrt(mse),
		MAPE: mape,
		N:    len(actual),
	}, nil
}

// EvaluateForecast scores a forecast's point predictions against a holdout
// series. The horizon must equal the holdout length.
func EvaluateForecast(fc *forecast.Forecast, actual *timeseries.Series) (*Report, error) {
	if fc.Horizon() != actual.Len() {
		return nil, fmt.Errorf("%w: horizon %d, holdout %d",
			ErrLengthMismatch, fc.Horizon(), actual.Len())
	}
	return Evaluate(actual.Values, fc.Mean)
}
