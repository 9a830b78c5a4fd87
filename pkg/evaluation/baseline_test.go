package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEWMAPrimesOnFirstValue(t *testing.T) {
	e := NewEWMA(0.5)
	assert.Equal(t, 10.0, e.Update(10), "first update should prime the level")
	assert.Equal(t, 10.0, e.Level())
	assert.Equal(t, 1, e.Count())
}

func TestEWMASmoothing(t *testing.T) {
	e := NewEWMA(0.5)
	e.Update(10)
	assert.InDelta(t, 15.0, e.Update(20), 1e-12)
	assert.InDelta(t, 22.5, e.Update(30), 1e-12)
}

func TestEWMADefaultAlpha(t *testing.T) {
	e := NewEWMA(0)
	e.Update(10)
	assert.InDelta(t, 12.0, e.Update(20), 1e-12, "default alpha should be 0.2")
}

func TestEWMAForecastFlat(t *testing.T) {
	series := monthly([]float64{10, 20, 30, 40})
	got := EWMAForecast(series, 0.5, 5)
	require.Len(t, got, 5)

	e := NewEWMA(0.5)
	for _, v := range series.Values {
		e.Update(v)
	}
	for i, v := range got {
		assert.InDelta(t, e.Level(), v, 1e-12, "step %d should repeat the final level", i)
	}
}

func TestNaive(t *testing.T) {
	got, err := Naive(monthly([]float64{5, 7, 9}), 4)
	require.NoError(t, err)
	for i, v := range got {
		assert.Equal(t, 9.0, v, "step %d", i)
	}

	_, err = Naive(monthly(nil), 4)
	assert.Error(t, err, "empty series accepted")
}

func TestSeasonalNaive(t *testing.T) {
	values := make([]float64, 24)
	for i := range values {
		values[i] = float64(i % 12)
	}
	got, err := SeasonalNaive(monthly(values), 12, 24)
	require.NoError(t, err)
	for h, v := range got {
		assert.Equal(t, float64(h%12), v, "step %d", h)
	}
}

func TestSeasonalNaiveValidation(t *testing.T) {
	series := monthly([]float64{1, 2, 3})

	_, err := SeasonalNaive(series, 0, 4)
	assert.Error(t, err, "period 0 accepted")
	_, err = SeasonalNaive(series, 12, 4)
	assert.Error(t, err, "period longer than the series accepted")
}
