package timeseries

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorDeterministic(t *testing.T) {
	cfg := SyntheticConfig{Base: 100, Trend: 0.5, Amplitude: 10, Period: 12, Noise: 2, Seed: 42}

	a := NewGenerator(cfg).Additive(60)
	b := NewGenerator(cfg).Additive(60)
	assert.Equal(t, a.Values, b.Values, "same seed should reproduce the same path")
}

func TestGeneratorTrendAndSeason(t *testing.T) {
	cfg := SyntheticConfig{Base: 50, Trend: 1, Amplitude: 5, Period: 12, Noise: 0, Seed: 1}
	s := NewGenerator(cfg).Additive(36)

	// With zero noise the seasonal term cancels across whole cycles, leaving
	// the trend.
	assert.InDelta(t, 12.0, s.Values[12]-s.Values[0], 1e-9, "yearly growth")
	assert.InDelta(t, 50+3+5, s.Values[3], 1e-9, "peak month")
}

func TestMultiplicativeIsPositive(t *testing.T) {
	cfg := SyntheticConfig{Base: 4, Trend: 0.01, Amplitude: 0.2, Period: 12, Noise: 0.05, Seed: 7}
	s := NewGenerator(cfg).Multiplicative(120)

	for i, v := range s.Values {
		require.Greater(t, v, 0.0, "value %d not positive", i)
	}
	_, err := s.Log()
	assert.NoError(t, err, "multiplicative series should be log-safe")
}
