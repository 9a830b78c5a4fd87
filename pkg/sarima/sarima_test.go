package sarima

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forecastlab/demandcast/pkg/timeseries"
)

func testSeries(values []float64) *timeseries.Series {
	return timeseries.New("test", time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC), 12, values)
}

// persistent builds a deterministic AR(1)-like path driven by a sawtooth
// disturbance.
func persistent(phi float64, n int) []float64 {
	values := make([]float64, n)
	for i := 1; i < n; i++ {
		values[i] = phi*values[i-1] + (float64(i%10)-5)/10
	}
	return values
}

func TestOrderValidate(t *testing.T) {
	assert.NoError(t, Order{P: 1, D: 1, Q: 1, Period: 12}.Validate())
	assert.Error(t, Order{P: -1}.Validate(), "negative component accepted")
	assert.Error(t, Order{D: 3}.Validate(), "third difference accepted")
	assert.Error(t, Order{SP: 1, Period: 0}.Validate(), "seasonal terms without period accepted")
}

func TestOrderString(t *testing.T) {
	got := Order{P: 1, D: 1, Q: 2, SP: 0, SD: 1, SQ: 1, Period: 12}.String()
	assert.Equal(t, "SARIMA(1,1,2)(0,1,1)[12]", got)
}

func TestOrderNumParams(t *testing.T) {
	o := Order{P: 2, D: 1, Q: 1, SP: 1, SD: 1, SQ: 1, Period: 12}
	assert.Equal(t, 5, o.NumParams())
	assert.Equal(t, 2, o.TotalDiff())
}

func TestFitAR1(t *testing.T) {
	m := New(Order{P: 1})
	require.NoError(t, m.Fit(testSeries(persistent(0.8, 200))))
	require.True(t, m.Fitted(), "model not marked fitted")

	assert.Greater(t, m.AR[0], 0.3, "AR coefficient for a persistent series")
	assert.Less(t, m.AR[0], 0.99)
	assert.Greater(t, m.Sigma2, 0.0, "residual variance")
	assert.False(t, math.IsInf(m.AICc, 0) || math.IsNaN(m.AICc), "AICc not finite: %f", m.AICc)
	assert.Greater(t, m.AICc, m.AIC, "AICc should exceed AIC on a finite sample")
	assert.Len(t, m.Residuals(), 200)
}

func TestFitExplainsPersistence(t *testing.T) {
	values := persistent(0.8, 200)
	s := testSeries(values)

	withAR := New(Order{P: 1})
	require.NoError(t, withAR.Fit(s))
	meanOnly := New(Order{})
	require.NoError(t, meanOnly.Fit(s))

	assert.Less(t, withAR.Sigma2, meanOnly.Sigma2,
		"AR term did not reduce residual variance")
}

func TestFitRandomWalkDriftExact(t *testing.T) {
	// A pure line has a constant first difference, so (0,1,0) with its
	// intercept reproduces the line exactly and forecasts continue it.
	n := 40
	values := make([]float64, n)
	for i := range values {
		values[i] = 5 + 2*float64(i)
	}
	m := New(Order{D: 1})
	require.NoError(t, m.Fit(testSeries(values)))
	assert.InDelta(t, 2.0, m.Intercept, 1e-12, "drift")

	fc, err := m.Forecast(6, nil)
	require.NoError(t, err)
	for h := 0; h < 6; h++ {
		want := 5 + 2*float64(n+h)
		assert.InDelta(t, want, fc.Mean[h], 1e-8, "forecast %d", h)
	}
}

func TestFitSeasonalPatternExact(t *testing.T) {
	// Trend plus an exact 12-cycle: after d=1 and D=1 nothing is left, so
	// the forecast must continue the pattern exactly through integration.
	n := 60
	values := make([]float64, n)
	for i := range values {
		values[i] = 100 + 2*float64(i) + 8*math.Sin(2*math.Pi*float64(i)/12)
	}
	m := New(Order{D: 1, SD: 1, Period: 12})
	require.NoError(t, m.Fit(testSeries(values)))

	fc, err := m.Forecast(24, nil)
	require.NoError(t, err)
	for h := 0; h < 24; h++ {
		i := n + h
		want := 100 + 2*float64(i) + 8*math.Sin(2*math.Pi*float64(i)/12)
		assert.InDelta(t, want, fc.Mean[h], 1e-6, "forecast %d", h)
	}
}

func TestFitRejectsShortSeries(t *testing.T) {
	m := New(Order{P: 1, D: 1})
	assert.Error(t, m.Fit(testSeries(persistent(0.5, 12))))
}

func TestFitRejectsInvalidOrder(t *testing.T) {
	m := New(Order{P: -1})
	assert.Error(t, m.Fit(testSeries(persistent(0.5, 100))))
}

func TestSummary(t *testing.T) {
	m := New(Order{P: 1, Q: 1})
	require.NoError(t, m.Fit(testSeries(persistent(0.7, 150))))

	sum := m.Summary()
	require.NotNil(t, sum)
	assert.Equal(t, 150, sum.NObs)
	assert.NotNil(t, sum.LjungBox, "summary missing Ljung-Box diagnostics")
	assert.Len(t, sum.AR, 1)
	assert.Len(t, sum.MA, 1)

	unfitted := New(Order{})
	assert.Nil(t, unfitted.Summary(), "unfitted model returned a summary")
}

func TestResidualsBeforeFit(t *testing.T) {
	m := New(Order{P: 1})
	assert.Nil(t, m.Residuals())
	assert.Nil(t, m.FittedValues())

	_, err := m.Forecast(5, nil)
	assert.ErrorIs(t, err, ErrNotFitted)
}
