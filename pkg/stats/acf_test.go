package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ar1 builds a deterministic AR(1)-like path driven by a sawtooth
// disturbance, so tests stay reproducible without seeding.
func ar1(phi float64, n int) []float64 {
	values := make([]float64, n)
	for i := 1; i < n; i++ {
		values[i] = phi*values[i-1] + (float64(i%10)-5)/10
	}
	return values
}

func TestACF(t *testing.T) {
	values := ar1(0.8, 200)
	acf, err := ACF(values, 10)
	require.NoError(t, err)
	require.Len(t, acf, 11)

	assert.InDelta(t, 1.0, acf[0], 1e-12, "lag 0 is always 1")
	assert.Greater(t, acf[1], 0.4, "persistent series should show strong lag-1 correlation")
	for k, v := range acf {
		assert.LessOrEqual(t, math.Abs(v), 1+1e-12, "acf[%d] outside [-1, 1]", k)
	}
}

func TestACFConstantSeries(t *testing.T) {
	values := []float64{5, 5, 5, 5, 5}
	_, err := ACF(values, 2)
	assert.ErrorIs(t, err, ErrConstant)
}

func TestACFCapsLag(t *testing.T) {
	values := []float64{1, 2, 1, 3, 1}
	acf, err := ACF(values, 50)
	require.NoError(t, err)
	assert.Len(t, acf, len(values), "lag should be capped at n-1")
}

func TestPACF(t *testing.T) {
	values := ar1(0.7, 200)
	acf, err := ACF(values, 10)
	require.NoError(t, err)
	pacf, err := PACF(values, 10)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, pacf[0], 1e-12)
	assert.InDelta(t, acf[1], pacf[1], 1e-12, "pacf[1] should equal acf[1]")
	assert.Greater(t, pacf[1], 0.4, "persistent series should show strong lag-1 partial correlation")
}

func TestYuleWalker(t *testing.T) {
	values := ar1(0.6, 300)

	coef, err := YuleWalker(values, 1)
	require.NoError(t, err)
	acf, err := ACF(values, 1)
	require.NoError(t, err)
	// The order-1 solution is exactly the lag-1 autocorrelation.
	assert.InDelta(t, acf[1], coef[0], 1e-12)

	coef2, err := YuleWalker(values, 3)
	require.NoError(t, err)
	require.Len(t, coef2, 3)
	for i, c := range coef2 {
		assert.False(t, math.IsNaN(c) || math.IsInf(c, 0), "coefficient %d not finite: %f", i, c)
	}
}

func TestYuleWalkerBadOrder(t *testing.T) {
	_, err := YuleWalker(ar1(0.5, 50), 0)
	assert.Error(t, err, "order 0 should be rejected")
}
