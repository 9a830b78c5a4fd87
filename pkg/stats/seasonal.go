package stats

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// SeasonalStrength measures how much of the detrended variation a repeating
// seasonal pattern explains, on [0, 1]. Values above roughly 0.6 indicate a
// cycle strong enough to be worth a seasonal difference.
func SeasonalStrength(values []float64, period int) (float64, error) {
	n := len(values)
	if period < 2 {
		return 0, fmt.Errorf("stats: seasonal period must be at least 2, got %d", period)
	}
	if n < 2*period {
		return 0, fmt.Errorf("%w: need two full cycles of %d, have %d observations", ErrTooShort, period, n)
	}

	trend, offset := centeredMA(values, period)

	detrended := make([]float64, len(trend))
	for i := range trend {
		detrended[i] = values[i+offset] - trend[i]
	}

	// Average the detrended values by position in the cycle to isolate the
	// seasonal component, then measure what is left over.
	sums := make([]float64, period)
	counts := make([]int, period)
	for i, v := range detrended {
		pos := (i + offset) % period
		sums[pos] += v
		counts[pos]++
	}
	seasonal := make([]float64, period)
	for i := range seasonal {
		if counts[i] > 0 {
			seasonal[i] = sums[i] / float64(counts[i])
		}
	}

	remainder := make([]float64, len(detrended))
	for i := range detrended {
		remainder[i] = detrended[i] - seasonal[(i+offset)%period]
	}

	varDetrended := stat.Variance(detrended, nil)
	if varDetrended == 0 {
		return 0, nil
	}
	strength := 1 - stat.Variance(remainder, nil)/varDetrended
	if strength < 0 {
		strength = 0
	}
	return strength, nil
}

// centeredMA returns the centered moving average of the given window and the
// index of its first valid point. Even windows use the standard 2xm average
// so the result stays aligned with the observations.
func centeredMA(values []float64, window int) (trend []float64, offset int) {
	n := len(values)
	half := window / 2

	if window%2 == 1 {
		trend = make([]float64, n-2*half)
		for i := range trend {
			sum := 0.0
			for j := -half; j <= half; j++ {
				sum += values[i+half+j]
			}
			trend[i] = sum / float64(window)
		}
		return trend, half
	}

	trend = make([]float64, n-2*half)
	for i := range trend {
		t := i + half
		sum := 0.5*values[t-half] + 0.5*values[t+half]
		for j := -half + 1; j <= half-1; j++ {
			sum += values[t+j]
		}
		trend[i] = sum / float64(window)
	}
	return trend, half
}
