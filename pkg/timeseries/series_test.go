package timeseries

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStart() time.Time {
	return time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC)
}

func TestLogRejectsNonPositive(t *testing.T) {
	s := New("demand", testStart(), 12, []float64{10, 0, 12})
	_, err := s.Log()
	assert.ErrorIs(t, err, ErrNonPositive, "zero value")

	s = New("demand", testStart(), 12, []float64{10, -3, 12})
	_, err = s.Log()
	assert.ErrorIs(t, err, ErrNonPositive, "negative value")
}

func TestLogExpRoundTrip(t *testing.T) {
	s := New("demand", testStart(), 12, []float64{1, 10, 100, 42.5})
	logged, err := s.Log()
	require.NoError(t, err)

	back := logged.Exp()
	for i := range s.Values {
		assert.InDelta(t, s.Values[i], back.Values[i], 1e-9, "round trip at %d", i)
	}
}

func TestDiffIntegrateRoundTrip(t *testing.T) {
	n := 48
	values := make([]float64, n)
	for i := range values {
		values[i] = 100 + 0.8*float64(i) + 5*math.Sin(2*math.Pi*float64(i)/12)
	}
	s := New("demand", testStart(), 12, values)

	for _, lag := range []int{1, 12} {
		diffed, err := s.Diff(lag)
		require.NoError(t, err, "Diff(%d)", lag)
		require.Equal(t, n-lag, diffed.Len(), "Diff(%d) length", lag)

		back, err := diffed.Integrate(lag, s.Values[:lag])
		require.NoError(t, err, "Integrate(%d)", lag)
		require.Equal(t, n, back.Len(), "Integrate(%d) length", lag)

		for i := range values {
			assert.InDelta(t, values[i], back.Values[i], 1e-9, "lag %d round trip at %d", lag, i)
		}
		assert.True(t, back.Start.Equal(s.Start), "lag %d round trip start", lag)
	}
}

func TestDiffShiftsStart(t *testing.T) {
	s := New("demand", testStart(), 12, []float64{1, 2, 3, 4, 5})
	diffed, err := s.Diff(2)
	require.NoError(t, err)

	want := time.Date(2015, time.March, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, diffed.Start.Equal(want), "start: got %v, want %v", diffed.Start, want)
}

func TestDiffLagValidation(t *testing.T) {
	s := New("demand", testStart(), 12, []float64{1, 2, 3})

	_, err := s.Diff(0)
	assert.Error(t, err, "lag 0")
	_, err = s.Diff(-1)
	assert.Error(t, err, "negative lag")
	_, err = s.Diff(3)
	assert.Error(t, err, "lag >= length")
}

func TestIntegrateSeedLength(t *testing.T) {
	s := New("demand", testStart(), 12, []float64{1, 1, 1})
	_, err := s.Integrate(2, []float64{5})
	assert.Error(t, err, "short seed should be rejected")
}

func TestSplit(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6}
	s := New("demand", testStart(), 12, values)

	train, test, err := s.Split(2)
	require.NoError(t, err)
	require.Equal(t, 4, train.Len())
	require.Equal(t, 2, test.Len())

	assert.Equal(t, []float64{5, 6}, test.Values)
	wantStart := time.Date(2015, time.May, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, test.Start.Equal(wantStart), "holdout start: got %v", test.Start)

	_, _, err = s.Split(0)
	assert.Error(t, err, "zero holdout")
	_, _, err = s.Split(6)
	assert.Error(t, err, "holdout covering the whole series")
}

func TestTimeAt(t *testing.T) {
	monthly := New("m", testStart(), 12, make([]float64, 3))
	assert.True(t, monthly.TimeAt(2).Equal(time.Date(2015, time.March, 1, 0, 0, 0, 0, time.UTC)))

	quarterly := New("q", testStart(), 4, make([]float64, 3))
	assert.True(t, quarterly.TimeAt(2).Equal(time.Date(2015, time.July, 1, 0, 0, 0, 0, time.UTC)))
}

func TestSlice(t *testing.T) {
	s := New("demand", testStart(), 12, []float64{1, 2, 3, 4, 5})
	mid, err := s.Slice(1, 4)
	require.NoError(t, err)

	assert.Equal(t, 3, mid.Len())
	assert.Equal(t, 2.0, mid.Values[0])

	_, err = s.Slice(3, 2)
	assert.Error(t, err, "inverted bounds")
}

func TestMeanStd(t *testing.T) {
	s := New("demand", testStart(), 12, []float64{2, 4, 6, 8})
	assert.InDelta(t, 5.0, s.Mean(), 1e-12)
	assert.InDelta(t, 2.5819888974716112, s.Std(), 1e-9)
}
