package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// StationarityResult is the outcome of a unit-root or stationarity test.
// Stationary reports the decision at the 5% level under each test's own
// null hypothesis.
type StationarityResult struct {
	Test       string             `json:"test"`
	Statistic  float64            `json:"statistic"`
	PValue     float64            `json:"p_value"`
	Lags       int                `json:"lags"`
	NObs       int                `json:"n_obs"`
	Critical   map[string]float64 `json:"critical"`
	Stationary bool               `json:"stationary"`
}

// ADF runs the augmented Dickey-Fuller test with a constant term. The null
// hypothesis is a unit root, so a small p-value indicates stationarity. A
// non-positive maxLag selects floor((n-1)^(1/3)).
func ADF(values []float64, maxLag int) (*StationarityResult, error) {
	n := len(values)
	if n < minObs {
		return nil, fmt.Errorf("%w: adf needs at least %d observations, have %d", ErrTooShort, minObs, n)
	}
	if maxLag <= 0 {
		maxLag = int(math.Floor(math.Cbrt(float64(n - 1))))
	}
	if maxLag >= n-1 {
		maxLag = n - 2
	}

	diff := make([]float64, n-1)
	for i := range diff {
		diff[i] = values[i+1] - values[i]
	}

	// Regress delta_y[t] on a constant, the lagged level y[t-1] and maxLag
	// lagged differences. The unit-root statistic is the t-ratio on the
	// lagged level.
	rows := n - maxLag - 1
	if rows < minObs {
		return nil, fmt.Errorf("%w: adf regression has only %d usable rows", ErrTooShort, rows)
	}
	cols := maxLag + 2
	X := mat.NewDense(rows, cols, nil)
	y := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		t := i + maxLag
		y.SetVec(i, diff[t])
		X.Set(i, 0, 1)
		X.Set(i, 1, values[t])
		for j := 1; j <= maxLag; j++ {
			X.Set(i, 1+j, diff[t-j])
		}
	}

	coef, se, err := ols(X, y)
	if err != nil {
		return nil, fmt.Errorf("stats: adf regression: %w", err)
	}
	if se[1] == 0 {
		return nil, ErrConstant
	}
	tStat := coef[1] / se[1]
	p := interpolatePValue(adfStats, adfPs, tStat)

	return &StationarityResult{
		Test:      "adf",
		Statistic: tStat,
		PValue:    p,
		Lags:      maxLag,
		NObs:      rows,
		Critical: map[string]float64{
			"1%":  -3.43,
			"5%":  -2.86,
			"10%": -2.57,
		},
		Stationary: p < 0.05,
	}, nil
}

// KPSS runs the Kwiatkowski-Phillips-Schmidt-Shin test. The null hypothesis
// is stationarity (around a trend when trend is true), so a small p-value
// indicates non-stationarity. A non-positive lags selects the usual
// ceil(12*(n/100)^(1/4)) bandwidth.
func KPSS(values []float64, trend bool, lags int) (*StationarityResult, error) {
	n := len(values)
	if n < minObs {
		return nil, fmt.Errorf("%w: kpss needs at least %d observations, have %d", ErrTooShort, minObs, n)
	}
	if lags <= 0 {
		lags = int(math.Ceil(12 * math.Pow(float64(n)/100, 0.25)))
	}
	if lags >= n {
		lags = n - 1
	}

	residuals := make([]float64, n)
	if trend {
		idx := make([]float64, n)
		for i := range idx {
			idx[i] = float64(i)
		}
		alpha, beta := stat.LinearRegression(idx, values, nil, false)
		for i, v := range values {
			residuals[i] = v - alpha - beta*float64(i)
		}
	} else {
		mean := stat.Mean(values, nil)
		for i, v := range values {
			residuals[i] = v - mean
		}
	}

	cumsum := make([]float64, n)
	cumsum[0] = residuals[0]
	for i := 1; i < n; i++ {
		cumsum[i] = cumsum[i-1] + residuals[i]
	}

	// Newey-West long-run variance with Bartlett weights.
	s2 := 0.0
	for _, r := range residuals {
		s2 += r * r
	}
	s2 /= float64(n)
	for l := 1; l <= lags; l++ {
		cov := 0.0
		for i := l; i < n; i++ {
			cov += residuals[i] * residuals[i-l]
		}
		cov /= float64(n)
		s2 += 2 * (1 - float64(l)/float64(lags+1)) * cov
	}
	if s2 <= 0 {
		return nil, ErrConstant
	}

	etaSq := 0.0
	for _, c := range cumsum {
		etaSq += c * c
	}
	statistic := etaSq / (float64(n) * float64(n) * s2)

	var critical map[string]float64
	var p float64
	if trend {
		critical = map[string]float64{
			"1%":  0.216,
			"5%":  0.146,
			"10%": 0.119,
		}
		p = interpolatePValue(kpssTrendStats, kpssPs, statistic)
	} else {
		critical = map[string]float64{
			"1%":  0.739,
			"5%":  0.463,
			"10%": 0.347,
		}
		p = interpolatePValue(kpssLevelStats, kpssPs, statistic)
	}

	return &StationarityResult{
		Test:       "kpss",
		Statistic:  statistic,
		PValue:     p,
		Lags:       lags,
		NObs:       n,
		Critical:   critical,
		Stationary: p >= 0.05,
	}, nil
}

// ols solves y = X*beta by QR and returns the coefficients with their
// standard errors.
func ols(X *mat.Dense, y *mat.VecDense) (coef, se []float64, err error) {
	rows, cols := X.Dims()
	if rows <= cols {
		return nil, nil, fmt.Errorf("%w: %d rows for %d regressors", ErrTooShort, rows, cols)
	}

	var qr mat.QR
	qr.Factorize(X)
	beta := mat.NewVecDense(cols, nil)
	if err := qr.SolveVecTo(beta, false, y); err != nil {
		return nil, nil, fmt.Errorf("singular design matrix: %w", err)
	}

	fitted := mat.NewVecDense(rows, nil)
	fitted.MulVec(X, beta)
	sse := 0.0
	for i := 0; i < rows; i++ {
		r := y.AtVec(i) - fitted.AtVec(i)
		sse += r * r
	}
	sigma2 := sse / float64(rows-cols)

	var xtx, inv mat.Dense
	xtx.Mul(X.T(), X)
	if err := inv.Inverse(&xtx); err != nil {
		return nil, nil, fmt.Errorf("singular normal equations: %w", err)
	}

	coef = make([]float64, cols)
	se = make([]float64, cols)
	for j := 0; j < cols; j++ {
		coef[j] = beta.AtVec(j)
		se[j] = math.Sqrt(sigma2 * inv.At(j, j))
	}
	return coef, se, nil
}

// MacKinnon-style interpolation tables. Statistics outside a table clamp to
// its end probabilities.
var (
	adfStats = []float64{-3.96, -3.43, -2.86, -2.57, -1.94, -1.62, 0}
	adfPs    = []float64{0.001, 0.01, 0.05, 0.10, 0.25, 0.50, 0.99}

	kpssLevelStats = []float64{0.347, 0.463, 0.574, 0.739}
	kpssTrendStats = []float64{0.119, 0.146, 0.176, 0.216}
	kpssPs         = []float64{0.10, 0.05, 0.025, 0.01}
)

func interpolatePValue(stats, ps []float64, x float64) float64 {
	if x <= stats[0] {
		return ps[0]
	}
	last := len(stats) - 1
	if x >= stats[last] {
		return ps[last]
	}
	for i := 1; i <= last; i++ {
		if x < stats[i] {
			f := (x - stats[i-1]) / (stats[i] - stats[i-1])
			return ps[i-1] + f*(ps[i]-ps[i-1])
		}
	}
	return ps[last]
}
