package timeseries

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

var (
	// ErrNonPositive is returned when a transform needs strictly positive
	// values and the series contains a zero or negative observation.
	ErrNonPositive = errors.New("timeseries: non-positive value")

	// ErrEmpty is returned when an operation needs at least one observation.
	ErrEmpty = errors.New("timeseries: empty series")
)

// Series is a regularly spaced univariate time series. Start is the time of
// the first observation and Freq the number of observations per year
// (12 for monthly data).
type Series struct {
	Name   string
	Start  time.Time
	Freq   int
	Values []float64
}

// New builds a series over values. A non-positive freq defaults to monthly.
func New(name string, start time.Time, freq int, values []float64) *Series {
	if freq <= 0 {
		freq = 12
	}
	return &Series{Name: name, Start: start, Freq: freq, Values: values}
}

// Len returns the number of observations.
func (s *Series) Len() int { return len(s.Values) }

// At returns the i-th observation.
func (s *Series) At(i int) float64 { return s.Values[i] }

// stepMonths is the calendar distance between consecutive observations.
// Frequencies that do not divide a year fall back to one month.
func (s *Series) stepMonths() int {
	if s.Freq > 0 && 12%s.Freq == 0 {
		return 12 / s.Freq
	}
	return 1
}

// TimeAt returns the timestamp of the i-th observation.
func (s *Series) TimeAt(i int) time.Time {
	return s.Start.AddDate(0, i*s.stepMonths(), 0)
}

// End returns the timestamp of the last observation.
func (s *Series) End() time.Time {
	if s.Len() == 0 {
		return s.Start
	}
	return s.TimeAt(s.Len() - 1)
}

// Copy returns a deep copy of the series.
func (s *Series) Copy() *Series {
	values := make([]float64, len(s.Values))
	copy(values, s.Values)
	return &Series{Name: s.Name, Start: s.Start, Freq: s.Freq, Values: values}
}

// Log returns a new series with the natural log applied to every
// observation. All observations must be strictly positive.
func (s *Series) Log() (*Series, error) {
	out := s.Copy()
	for i, v := range s.Values {
		if v <= 0 {
			return nil, fmt.Errorf("%w: %.6g at index %d", ErrNonPositive, v, i)
		}
		out.Values[i] = math.Log(v)
	}
	out.Name = s.Name + "_log"
	return out, nil
}

// Exp returns a new series with every observation exponentiated. It is the
// inverse of Log.
func (s *Series) Exp() *Series {
	out := s.Copy()
	for i, v := range s.Values {
		out.Values[i] = math.Exp(v)
	}
	return out
}

// Diff returns the lag-differenced series x[t] - x[t-lag]. The result is lag
// observations shorter and starts lag periods later.
func (s *Series) Diff(lag int) (*Series, error) {
	if lag <= 0 {
		return nil, fmt.Errorf("timeseries: diff lag must be positive, got %d", lag)
	}
	if s.Len() <= lag {
		return nil, fmt.Errorf("timeseries: need more than %d observations to diff at lag %d, have %d",
			lag, lag, s.Len())
	}
	values := make([]float64, s.Len()-lag)
	for i := range values {
		values[i] = s.Values[i+lag] - s.Values[i]
	}
	return &Series{
		Name:   fmt.Sprintf("%s_d%d", s.Name, lag),
		Start:  s.TimeAt(lag),
		Freq:   s.Freq,
		Values: values,
	}, nil
}

// Integrate undoes a lag difference. seed holds the first lag observations of
// the original series, so Integrate(lag, orig[:lag]) applied to
// orig.Diff(lag) reconstructs orig exactly.
func (s *Series) Integrate(lag int, seed []float64) (*Series, error) {
	if lag <= 0 {
		return nil, fmt.Errorf("timeseries: integrate lag must be positive, got %d", lag)
	}
	if len(seed) != lag {
		return nil, fmt.Errorf("timeseries: integrate at lag %d needs %d seed values, got %d",
			lag, lag, len(seed))
	}
	values := make([]float64, lag+s.Len())
	copy(values, seed)
	for i := lag; i < len(values); i++ {
		values[i] = values[i-lag] + s.Values[i-lag]
	}
	return &Series{
		Name:   s.Name + "_int",
		Start:  s.Start.AddDate(0, -lag*s.stepMonths(), 0),
		Freq:   s.Freq,
		Values: values,
	}, nil
}

// Split partitions the series into a training head and a holdout tail of the
// given length.
func (s *Series) Split(holdout int) (train, test *Series, err error) {
	if holdout <= 0 || holdout >= s.Len() {
		return nil, nil, fmt.Errorf("timeseries: holdout %d out of range for %d observations",
			holdout, s.Len())
	}
	cut := s.Len() - holdout
	train = &Series{Name: s.Name + "_train", Start: s.Start, Freq: s.Freq, Values: s.Values[:cut]}
	test = &Series{Name: s.Name + "_test", Start: s.TimeAt(cut), Freq: s.Freq, Values: s.Values[cut:]}
	return train, test, nil
}

// Slice returns the observations in [i, j) as a new series.
func (s *Series) Slice(i, j int) (*Series, error) {
	if i < 0 || j > s.Len() || i >= j {
		return nil, fmt.Errorf("timeseries: slice [%d, %d) out of range for %d observations",
			i, j, s.Len())
	}
	values := make([]float64, j-i)
	copy(values, s.Values[i:j])
	return &Series{Name: s.Name, Start: s.TimeAt(i), Freq: s.Freq, Values: values}, nil
}

// Mean returns the sample mean.
func (s *Series) Mean() float64 {
	if s.Len() == 0 {
		return 0
	}
	return stat.Mean(s.Values, nil)
}

// Std returns the sample standard deviation.
func (s *Series) Std() float64 {
	if s.Len() < 2 {
		return 0
	}
	return stat.StdDev(s.Values, nil)
}

// Min returns the smallest observation.
func (s *Series) Min() float64 {
	if s.Len() == 0 {
		return math.NaN()
	}
	min := s.Values[0]
	for _, v := range s.Values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// Max returns the largest observation.
func (s *Series) Max() float64 {
	if s.Len() == 0 {
		return math.NaN()
	}
	max := s.Values[0]
	for _, v := range s.Values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}
