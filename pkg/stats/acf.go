package stats

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// ACF returns the sample autocorrelation function for lags 0..maxLag. A
// maxLag at or beyond the sample length is capped at len(values)-1.
func ACF(values []float64, maxLag int) ([]float64, error) {
	n := len(values)
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 observations, have %d", ErrTooShort, n)
	}
	if maxLag < 1 {
		return nil, fmt.Errorf("stats: acf max lag must be positive, got %d", maxLag)
	}
	if maxLag >= n {
		maxLag = n - 1
	}

	mean := stat.Mean(values, nil)
	c0 := 0.0
	for _, v := range values {
		d := v - mean
		c0 += d * d
	}
	c0 /= float64(n)
	if c0 == 0 {
		return nil, ErrConstant
	}

	acf := make([]float64, maxLag+1)
	acf[0] = 1
	for k := 1; k <= maxLag; k++ {
		ck := 0.0
		for t := k; t < n; t++ {
			ck += (values[t] - mean) * (values[t-k] - mean)
		}
		ck /= float64(n)
		acf[k] = ck / c0
	}
	return acf, nil
}

// PACF returns the partial autocorrelation function for lags 0..maxLag using
// the Durbin-Levinson recursion.
func PACF(values []float64, maxLag int) ([]float64, error) {
	acf, err := ACF(values, maxLag)
	if err != nil {
		return nil, err
	}
	phi, err := levinson(acf)
	if err != nil {
		return nil, err
	}

	pacf := make([]float64, len(acf))
	pacf[0] = 1
	for k := 1; k < len(acf); k++ {
		pacf[k] = phi[k][k]
	}
	return pacf, nil
}

// YuleWalker estimates AR(p) coefficients by solving the Yule-Walker
// equations through the same recursion.
func YuleWalker(values []float64, p int) ([]float64, error) {
	if p < 1 {
		return nil, fmt.Errorf("stats: yule-walker order must be positive, got %d", p)
	}
	acf, err := ACF(values, p)
	if err != nil {
		return nil, err
	}
	if len(acf)-1 < p {
		return nil, fmt.Errorf("%w: need more than %d observations for AR(%d)", ErrTooShort, p, p)
	}
	phi, err := levinson(acf)
	if err != nil {
		return nil, err
	}

	coeffs := make([]float64, p)
	copy(coeffs, phi[p][1:p+1])
	return coeffs, nil
}

// levinson runs the Durbin-Levinson recursion over an autocorrelation
// sequence. phi[k][j] is the j-th coefficient of the order-k AR fit.
func levinson(acf []float64) ([][]float64, error) {
	maxLag := len(acf) - 1
	phi := make([][]float64, maxLag+1)
	for k := range phi {
		phi[k] = make([]float64, maxLag+1)
	}
	if maxLag == 0 {
		return phi, nil
	}

	phi[1][1] = acf[1]
	for k := 2; k <= maxLag; k++ {
		num := acf[k]
		den := 1.0
		for j := 1; j < k; j++ {
			num -= phi[k-1][j] * acf[k-j]
			den -= phi[k-1][j] * acf[j]
		}
		if den == 0 {
			return nil, fmt.Errorf("stats: degenerate autocorrelation at lag %d", k)
		}
		phi[k][k] = num / den
		for j := 1; j < k; j++ {
			phi[k][j] = phi[k-1][j] - phi[k][k]*phi[k-1][k-j]
		}
	}
	return phi, nil
}
