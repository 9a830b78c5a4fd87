package stats

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"
)

// LjungBoxResult reports a portmanteau test of residual autocorrelation. The
// null hypothesis is that the residuals are white noise, so a small p-value
// means the model left structure behind.
type LjungBoxResult struct {
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
	Lags      int     `json:"lags"`
	DOF       int     `json:"dof"`
}

// LjungBox computes the Ljung-Box Q statistic over the given number of lags.
// fitted is the count of estimated model parameters and reduces the degrees
// of freedom.
func LjungBox(residuals []float64, lags, fitted int) (*LjungBoxResult, error) {
	n := len(residuals)
	if n < minObs {
		return nil, fmt.Errorf("%w: ljung-box needs at least %d residuals, have %d", ErrTooShort, minObs, n)
	}
	if lags < 1 {
		return nil, fmt.Errorf("stats: ljung-box lags must be positive, got %d", lags)
	}
	if lags >= n {
		lags = n - 1
	}

	acf, err := ACF(residuals, lags)
	if err != nil {
		return nil, err
	}

	q := 0.0
	for k := 1; k <= lags; k++ {
		q += acf[k] * acf[k] / float64(n-k)
	}
	q *= float64(n) * float64(n+2)

	dof := lags - fitted
	if dof < 1 {
		dof = 1
	}
	chi := distuv.ChiSquared{K: float64(dof)}
	p := 1 - chi.CDF(q)

	return &LjungBoxResult{Statistic: q, PValue: p, Lags: lags, DOF: dof}, nil
}
