package sarima

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/forecastlab/demandcast/pkg/forecast"
)

// DefaultLevels are the confidence levels used when a forecast request does
// not name its own.
var DefaultLevels = []float64{0.80, 0.95}

// Forecast predicts steps observations past the end of the training series,
// with prediction intervals at each requested confidence level. The mean
// path extends the difference-scale recursion with future shocks at zero and
// is then integrated back to the training scale; interval widths come from
// the psi-weight expansion of the full model, so they never shrink as the
// horizon grows.
func (m *Model) Forecast(steps int, levels []float64) (*forecast.Forecast, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	if steps < 1 {
		return nil, fmt.Errorf("sarima: forecast steps must be positive, got %d", steps)
	}
	if len(levels) == 0 {
		levels = DefaultLevels
	}
	levels = append([]float64(nil), levels...)
	sort.Float64s(levels)
	for _, level := range levels {
		if level <= 0 || level >= 1 {
			return nil, fmt.Errorf("sarima: confidence level %.3f outside (0, 1)", level)
		}
	}

	n := len(m.work)
	extY := make([]float64, n+steps)
	copy(extY, m.work)
	extResid := make([]float64, n+steps)
	copy(extResid, m.residuals)
	for h := 0; h < steps; h++ {
		t := n + h
		extY[t] = m.stepPrediction(extY, extResid, t)
	}

	mean := m.integrate(extY[n:])
	se := m.forecastSE(steps)

	intervals := make([]forecast.Interval, len(levels))
	for i, level := range levels {
		z := distuv.UnitNormal.Quantile((1 + level) / 2)
		lower := make([]float64, steps)
		upper := make([]float64, steps)
		floats.ScaleTo(lower, -z, se)
		floats.Add(lower, mean)
		floats.ScaleTo(upper, z, se)
		floats.Add(upper, mean)
		intervals[i] = forecast.Interval{Level: level, Lower: lower, Upper: upper}
	}

	times := make([]time.Time, steps)
	for h := range times {
		times[h] = m.train.TimeAt(m.train.Len() + h)
	}

	// One-step errors on the differenced scale equal those on the training
	// scale, so in-sample fits are the observed values minus the residuals.
	offset := m.train.Len() - len(m.work)
	fitted := make([]float64, len(m.work))
	for t := range fitted {
		fitted[t] = m.train.Values[offset+t] - m.residuals[t]
	}

	return &forecast.Forecast{
		Method:    m.Order.String(),
		Times:     times,
		Mean:      mean,
		SE:        se,
		Intervals: intervals,
		Fitted:    fitted,
		Origin:    m.train.Len(),
	}, nil
}

// integrate maps difference-scale forecasts back to the training scale by
// replaying each difference stage in reverse, seeding from the tail of the
// values that entered the stage.
func (m *Model) integrate(diffForecast []float64) []float64 {
	result := append([]float64(nil), diffForecast...)
	for s := len(m.stages) - 1; s >= 0; s-- {
		lag := m.stages[s].lag
		pre := m.stages[s].pre
		for j := range result {
			if j < lag {
				result[j] += pre[len(pre)-lag+j]
			} else {
				result[j] += result[j-lag]
			}
		}
	}
	return result
}

// forecastSE returns the per-horizon forecast standard error from the
// cumulative sums of squared psi weights. The sums only grow, so the errors
// are non-decreasing in the horizon.
func (m *Model) forecastSE(steps int) []float64 {
	psi := m.psiWeights(steps)
	se := make([]float64, steps)
	sum := 0.0
	for h := 0; h < steps; h++ {
		sum += psi[h] * psi[h]
		se[h] = math.Sqrt(m.Sigma2 * sum)
	}
	return se
}

// psiWeights expands the model, differencing operators included, into its
// infinite moving-average representation truncated at h weights.
func (m *Model) psiWeights(h int) []float64 {
	arPoly := lagPoly(negate(m.AR), 1)
	arPoly = polyMul(arPoly, lagPoly(negate(m.SAR), m.Order.Period))
	for i := 0; i < m.Order.D; i++ {
		arPoly = polyMul(arPoly, lagPoly([]float64{-1}, 1))
	}
	for i := 0; i < m.Order.SD; i++ {
		arPoly = polyMul(arPoly, lagPoly([]float64{-1}, m.Order.Period))
	}
	maPoly := polyMul(lagPoly(m.MA, 1), lagPoly(m.SMA, m.Order.Period))

	psi := make([]float64, h)
	psi[0] = 1
	for j := 1; j < h; j++ {
		v := 0.0
		if j < len(maPoly) {
			v = maPoly[j]
		}
		for i := 1; i <= j && i < len(arPoly); i++ {
			v -= arPoly[i] * psi[j-i]
		}
		psi[j] = v
	}
	return psi
}

// lagPoly builds the polynomial 1 + sum coeffs[i]*B^((i+1)*stride).
func lagPoly(coeffs []float64, stride int) []float64 {
	if len(coeffs) == 0 {
		return []float64{1}
	}
	out := make([]float64, len(coeffs)*stride+1)
	out[0] = 1
	for i, c := range coeffs {
		out[(i+1)*stride] = c
	}
	return out
}

func polyMul(a, b []float64) []float64 {
	out := make([]float64, len(a)+len(b)-1)
	for i, av := range a {
		for j, bv := range b {
			out[i+j] += av * bv
		}
	}
	return out
}

// polyStable reports whether every root of 1 - sum coeffs[i]*z^i lies
// outside the unit circle, checked through the eigenvalues of the companion
// matrix.
func polyStable(coeffs []float64) bool {
	k := len(coeffs)
	for k > 0 && coeffs[k-1] == 0 {
		k--
	}
	if k == 0 {
		return true
	}
	if k == 1 {
		return math.Abs(coeffs[0]) < 1
	}

	companion := mat.NewDense(k, k, nil)
	for j := 0; j < k; j++ {
		companion.Set(0, j, coeffs[j])
	}
	for i := 1; i < k; i++ {
		companion.Set(i, i-1, 1)
	}

	var eig mat.Eigen
	if !eig.Factorize(companion, mat.EigenNone) {
		return false
	}
	for _, v := range eig.Values(nil) {
		if cmplx.Abs(v) >= 1 {
			return false
		}
	}
	return true
}
