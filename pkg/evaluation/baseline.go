package evaluation

import (
	"fmt"

	"github.com/forecastlab/demandcast/pkg/timeseries"
)

// EWMA is an exponentially weighted moving average smoother used as a
// flat-line benchmark forecaster.
type EWMA struct {
	alpha   float64
	current float64
	primed  bool
	count   int
}

// NewEWMA creates a smoother. An alpha outside (0, 1] falls back to 0.2.
func NewEWMA(alpha float64) *EWMA {
	if alpha <= 0 || alpha > 1 {
		alpha = 0.2
	}
	return &EWMA{alpha: alpha}
}

// Update folds one observation into the smoothed level and returns it. The
// first observation primes the level directly.
func (e *EWMA) Update(value float64) float64 {
	e.count++
	if !e.primed {
		e.current = value
		e.primed = true
		return e.current
	}
	e.current = e.alpha*value + (1-e.alpha)*e.current
	return e.current
}

// Level returns the current smoothed level, zero before any update.
func (e *EWMA) Level() float64 {
	if !e.primed {
		return 0
	}
	return e.current
}

// Count returns the number of observations folded in.
func (e *EWMA) Count() int { return e.count }

// Forecast projects the current level flat over the horizon.
func (e *EWMA) Forecast(horizon int) []float64 {
	out := make([]float64, horizon)
	for i := range out {
		out[i] = e.Level()
	}
	return out
}

// EWMAForecast smooths the training series and projects the final level over
// the horizon.
func EWMAForecast(train *timeseries.Series, alpha float64, horizon int) []float64 {
	e := NewEWMA(alpha)
	for _, v := range train.Values {
		e.Update(v)
	}
	return e.Forecast(horizon)
}

// Naive repeats the last observation, the random-walk benchmark.
func Naive(train *timeseries.Series, horizon int) ([]float64, error) {
	if train.Len() == 0 {
		return nil, fmt.Errorf("evaluation: naive forecast needs at least one observation")
	}
	last := train.Values[train.Len()-1]
	out := make([]float64, horizon)
	for i := range out {
		out[i] = last
	}
	return out, nil
}

// SeasonalNaive repeats the last full seasonal cycle over the horizon, the
// standard benchmark any seasonal model has to beat.
func SeasonalNaive(train *timeseries.Series, period, horizon int) ([]float64, error) {
	if period < 1 {
		return nil, fmt.Errorf("evaluation: seasonal naive needs a positive period, got %d", period)
	}
	if train.Len() < period {
		return nil, fmt.Errorf("evaluation: seasonal naive needs %d observations, have %d",
			period, train.Len())
	}
	base := train.Len() - period
	out := make([]float64, horizon)
	for h := range out {
		out[h] = train.Values[base+h%period]
	}
	return out, nil
}
