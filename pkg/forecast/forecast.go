// Package forecast defines the forecast value object shared by the model,
// the evaluation layer and the API.
package forecast

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"time"
)

// Interval holds the lower and upper bounds of one confidence level.
type Interval struct {
	Level float64   `json:"level"`
	Lower []float64 `json:"lower"`
	Upper []float64 `json:"upper"`
}

// Forecast is a set of point predictions with prediction intervals at one or
// more confidence levels. SE is the per-step standard error on the scale the
// forecast was produced on. Fitted holds the model's one-step in-sample
// predictions for the training observations that survive differencing, and
// Origin is the length of the series the forecast extends.
type Forecast struct {
	Method    string      `json:"method"`
	Times     []time.Time `json:"times"`
	Mean      []float64   `json:"mean"`
	SE        []float64   `json:"se"`
	Intervals []Interval  `json:"intervals"`
	Fitted    []float64   `json:"fitted,omitempty"`
	Origin    int         `json:"origin"`
}

// Horizon returns the number of forecast steps.
func (f *Forecast) Horizon() int { return len(f.Mean) }

// Interval returns the bounds for the given confidence level.
func (f *Forecast) Interval(level float64) (*Interval, error) {
	for i := range f.Intervals {
		if math.Abs(f.Intervals[i].Level-level) < 1e-9 {
			return &f.Intervals[i], nil
		}
	}
	return nil, fmt.Errorf("forecast: no interval at level %.2f", level)
}

// Levels returns the available confidence levels in ascending order.
func (f *Forecast) Levels() []float64 {
	levels := make([]float64, len(f.Intervals))
	for i := range f.Intervals {
		levels[i] = f.Intervals[i].Level
	}
	sort.Float64s(levels)
	return levels
}

// BackTransform returns a copy with the inverse transform applied to the
// point forecasts, every interval bound and the fitted values, mapping a
// transformed-scale forecast back to the original scale. SE is carried over
// unchanged and stays on the scale the forecast was produced on.
func (f *Forecast) BackTransform(inverse func(float64) float64) *Forecast {
	out := &Forecast{
		Method:    f.Method,
		Times:     append([]time.Time(nil), f.Times...),
		Mean:      applyInverse(f.Mean, inverse),
		SE:        append([]float64(nil), f.SE...),
		Intervals: make([]Interval, len(f.Intervals)),
		Fitted:    applyInverse(f.Fitted, inverse),
		Origin:    f.Origin,
	}
	for i, iv := range f.Intervals {
		out.Intervals[i] = Interval{
			Level: iv.Level,
			Lower: applyInverse(iv.Lower, inverse),
			Upper: applyInverse(iv.Upper, inverse),
		}
	}
	return out
}

// Exp is the inverse of the log transform.
func Exp(v float64) float64 { return math.Exp(v) }

// Widths returns the interval widths at the given level, one per step.
func (f *Forecast) Widths(level float64) ([]float64, error) {
	iv, err := f.Interval(level)
	if err != nil {
		return nil, err
	}
	widths := make([]float64, len(iv.Upper))
	for i := range widths {
		widths[i] = iv.Upper[i] - iv.Lower[i]
	}
	return widths, nil
}

// WriteCSV writes the forecast as one row per step with a header, interval
// bounds ordered by ascending confidence level.
func (f *Forecast) WriteCSV(w io.Writer) error {
	levels := f.Levels()

	header := []string{"step", "date", "mean", "se"}
	for _, level := range levels {
		pct := strconv.FormatFloat(level*100, 'f', -1, 64)
		header = append(header, "lower_"+pct, "upper_"+pct)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := range f.Mean {
		row := []string{
			strconv.Itoa(i + 1),
			f.Times[i].Format("2006-01-02"),
			strconv.FormatFloat(f.Mean[i], 'f', 6, 64),
			strconv.FormatFloat(f.SE[i], 'f', 6, 64),
		}
		for _, level := range levels {
			iv, err := f.Interval(level)
			if err != nil {
				return err
			}
			row = append(row,
				strconv.FormatFloat(iv.Lower[i], 'f', 6, 64),
				strconv.FormatFloat(iv.Upper[i], 'f', 6, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func applyInverse(values []float64, inverse func(float64) float64) []float64 {
	if values == nil {
		return nil
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = inverse(v)
	}
	return out
}
