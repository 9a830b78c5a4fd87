// Package sarima implements seasonal ARIMA models estimated by conditional
// sum of squares.
package sarima

import (
	"errors"
	"fmt"
	"math"

	"github.com/forecastlab/demandcast/pkg/stats"
	"github.com/forecastlab/demandcast/pkg/timeseries"
)

var (
	// ErrNoConvergence is returned when estimation fails to produce usable
	// coefficient estimates.
	ErrNoConvergence = errors.New("sarima: estimation did not converge")

	// ErrUnstable is returned when the fitted polynomials fall outside the
	// stationary or invertible region.
	ErrUnstable = errors.New("sarima: fitted model is not stationary or not invertible")

	// ErrNotFitted is returned when a forecast is requested before Fit.
	ErrNotFitted = errors.New("sarima: model not fitted")
)

// Order identifies a SARIMA model (p,d,q)(P,D,Q)[period].
type Order struct {
	P      int `json:"p"`
	D      int `json:"d"`
	Q      int `json:"q"`
	SP     int `json:"sp"`
	SD     int `json:"sd"`
	SQ     int `json:"sq"`
	Period int `json:"period"`
}

// NumParams returns the number of estimated AR and MA coefficients.
func (o Order) NumParams() int { return o.P + o.Q + o.SP + o.SQ }

// TotalDiff returns d + D.
func (o Order) TotalDiff() int { return o.D + o.SD }

// Validate rejects negative components, differencing beyond order 2, and
// seasonal terms without a usable period.
func (o Order) Validate() error {
	if o.P < 0 || o.D < 0 || o.Q < 0 || o.SP < 0 || o.SD < 0 || o.SQ < 0 {
		return fmt.Errorf("sarima: negative component in order %s", o)
	}
	if o.D > 2 || o.SD > 2 {
		return fmt.Errorf("sarima: differencing beyond order 2 in %s", o)
	}
	if (o.SP > 0 || o.SD > 0 || o.SQ > 0) && o.Period < 2 {
		return fmt.Errorf("sarima: order %s has seasonal terms but period %d", o, o.Period)
	}
	return nil
}

func (o Order) String() string {
	return fmt.Sprintf("SARIMA(%d,%d,%d)(%d,%d,%d)[%d]", o.P, o.D, o.Q, o.SP, o.SD, o.SQ, o.Period)
}

// diffStage records one applied difference so forecasts can be integrated
// back. pre holds the values entering the stage.
type diffStage struct {
	lag int
	pre []float64
}

// Model is a SARIMA model. Coefficient slices and the fit statistics are
// populated by Fit.
type Model struct {
	Order     Order
	AR        []float64
	MA        []float64
	SAR       []float64
	SMA       []float64
	Intercept float64
	Sigma2    float64
	LogLik    float64
	AIC       float64
	AICc      float64
	BIC       float64

	fitted    bool
	train     *timeseries.Series
	work      []float64 // differenced training values
	stages    []diffStage
	residuals []float64
	fittedVal []float64
	burnIn    int
	nEff      int
}

// New creates an unfitted model for the given order.
func New(order Order) *Model {
	return &Model{
		Order: order,
		AR:    make([]float64, order.P),
		MA:    make([]float64, order.Q),
		SAR:   make([]float64, order.SP),
		SMA:   make([]float64, order.SQ),
	}
}

// Fit estimates the model on the series by conditional sum of squares,
// differencing first as the order demands. It fails with ErrNoConvergence
// when optimization cannot produce finite estimates and with ErrUnstable
// when the estimates land outside the stationary or invertible region.
func (m *Model) Fit(series *timeseries.Series) error {
	if err := m.Order.Validate(); err != nil {
		return err
	}

	work := series.Values
	var stages []diffStage
	for i := 0; i < m.Order.D; i++ {
		if len(work) < 2 {
			return fmt.Errorf("sarima: series too short to difference for %s", m.Order)
		}
		stages = append(stages, diffStage{lag: 1, pre: work})
		work = diffValues(work, 1)
	}
	for i := 0; i < m.Order.SD; i++ {
		if len(work) <= m.Order.Period {
			return fmt.Errorf("sarima: series too short to difference seasonally for %s", m.Order)
		}
		stages = append(stages, diffStage{lag: m.Order.Period, pre: work})
		work = diffValues(work, m.Order.Period)
	}

	need := m.Order.P + m.Order.Q + (m.Order.SP+m.Order.SQ)*m.Order.Period + 15
	if need < 20 {
		need = 20
	}
	if len(work) < need {
		return fmt.Errorf("sarima: %d observations after differencing, %s needs at least %d",
			len(work), m.Order, need)
	}

	m.train = series
	m.work = work
	m.stages = stages

	m.initCoefficients()
	if err := m.optimize(); err != nil {
		return err
	}
	if err := m.checkStability(); err != nil {
		return err
	}
	m.informationCriteria()

	m.fitted = true
	return nil
}

// initCoefficients seeds the optimizer: Yule-Walker estimates for the AR
// part, damped seasonal autocorrelations for the seasonal AR part and small
// constants for the MA parts.
func (m *Model) initCoefficients() {
	mean := 0.0
	for _, v := range m.work {
		mean += v
	}
	m.Intercept = mean / float64(len(m.work))

	if m.Order.P > 0 {
		if coef, err := stats.YuleWalker(m.work, m.Order.P); err == nil {
			for i, c := range coef {
				m.AR[i] = clamp(c, -0.95, 0.95)
			}
		}
	}
	if m.Order.SP > 0 {
		if acf, err := stats.ACF(m.work, m.Order.SP*m.Order.Period); err == nil {
			for i := range m.SAR {
				if lag := (i + 1) * m.Order.Period; lag < len(acf) {
					m.SAR[i] = acf[lag] * 0.5
				}
			}
		}
	}
	for i := range m.MA {
		m.MA[i] = 0.1
	}
	for i := range m.SMA {
		m.SMA[i] = 0.1
	}
}

// stepPrediction is the one-step conditional expectation at index t given
// the values and residuals before it. Lags reaching before the sample are
// dropped, which is the conditional part of CSS.
func (m *Model) stepPrediction(y, resid []float64, t int) float64 {
	pred := m.Intercept
	for i, c := range m.AR {
		if lag := t - i - 1; lag >= 0 {
			pred += c * (y[lag] - m.Intercept)
		}
	}
	for i, c := range m.SAR {
		if lag := t - (i+1)*m.Order.Period; lag >= 0 {
			pred += c * (y[lag] - m.Intercept)
		}
	}
	for i, c := range m.MA {
		if lag := t - i - 1; lag >= 0 {
			pred += c * resid[lag]
		}
	}
	for i, c := range m.SMA {
		if lag := t - (i+1)*m.Order.Period; lag >= 0 {
			pred += c * resid[lag]
		}
	}
	return pred
}

// optimize minimizes the conditional sum of squares by gradient descent with
// momentum, a decaying learning rate and best-solution tracking.
func (m *Model) optimize() error {
	y := m.work
	n := len(y)
	period := m.Order.Period

	const (
		maxIter   = 200
		tolerance = 1e-8
		momentum  = 0.9
		decay     = 0.99
	)
	learningRate := 0.005

	burnIn := m.Order.P
	if m.Order.Q > burnIn {
		burnIn = m.Order.Q
	}
	if s := m.Order.SP * period; s > burnIn {
		burnIn = s
	}
	if s := m.Order.SQ * period; s > burnIn {
		burnIn = s
	}
	if burnIn >= n-10 {
		burnIn = 0
	}
	m.burnIn = burnIn
	m.nEff = n - burnIn

	arVel := make([]float64, m.Order.P)
	maVel := make([]float64, m.Order.Q)
	sarVel := make([]float64, m.Order.SP)
	smaVel := make([]float64, m.Order.SQ)

	best := math.Inf(1)
	bestAR := append([]float64(nil), m.AR...)
	bestMA := append([]float64(nil), m.MA...)
	bestSAR := append([]float64(nil), m.SAR...)
	bestSMA := append([]float64(nil), m.SMA...)
	stale := 0

	resid := make([]float64, n)
	for iter := 0; iter < maxIter; iter++ {
		sse := 0.0
		for t := burnIn; t < n; t++ {
			resid[t] = y[t] - m.stepPrediction(y, resid, t)
			sse += resid[t] * resid[t]
		}
		if math.IsNaN(sse) || math.IsInf(sse, 0) {
			break
		}

		if sse < best {
			best = sse
			copy(bestAR, m.AR)
			copy(bestMA, m.MA)
			copy(bestSAR, m.SAR)
			copy(bestSMA, m.SMA)
			stale = 0
		} else {
			stale++
			if stale > 20 {
				break
			}
		}

		arGrad := make([]float64, m.Order.P)
		maGrad := make([]float64, m.Order.Q)
		sarGrad := make([]float64, m.Order.SP)
		smaGrad := make([]float64, m.Order.SQ)
		for t := burnIn; t < n; t++ {
			for i := range arGrad {
				if lag := t - i - 1; lag >= 0 {
					arGrad[i] -= 2 * resid[t] * (y[lag] - m.Intercept)
				}
			}
			for i := range sarGrad {
				if lag := t - (i+1)*period; lag >= 0 {
					sarGrad[i] -= 2 * resid[t] * (y[lag] - m.Intercept)
				}
			}
			for i := range maGrad {
				if lag := t - i - 1; lag >= 0 {
					maGrad[i] -= 2 * resid[t] * resid[lag]
				}
			}
			for i := range smaGrad {
				if lag := t - (i+1)*period; lag >= 0 {
					smaGrad[i] -= 2 * resid[t] * resid[lag]
				}
			}
		}

		step := func(coef, vel, grad []float64) {
			for i := range coef {
				vel[i] = momentum*vel[i] + learningRate*grad[i]/float64(n)
				coef[i] = clamp(coef[i]-vel[i], -0.99, 0.99)
			}
		}
		step(m.AR, arVel, arGrad)
		step(m.SAR, sarVel, sarGrad)
		step(m.MA, maVel, maGrad)
		step(m.SMA, smaVel, smaGrad)

		learningRate *= decay

		if iter > 0 && math.Abs(sse-best) < tolerance {
			break
		}
	}

	if math.IsInf(best, 0) || math.IsNaN(best) {
		return fmt.Errorf("%w: %s produced a non-finite sum of squares", ErrNoConvergence, m.Order)
	}
	copy(m.AR, bestAR)
	copy(m.MA, bestMA)
	copy(m.SAR, bestSAR)
	copy(m.SMA, bestSMA)
	for _, c := range [][]float64{m.AR, m.MA, m.SAR, m.SMA} {
		for _, v := range c {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: %s produced non-finite coefficients", ErrNoConvergence, m.Order)
			}
		}
	}

	m.residuals = make([]float64, n)
	m.fittedVal = make([]float64, n)
	for t := 0; t < n; t++ {
		m.fittedVal[t] = m.stepPrediction(y, m.residuals, t)
		m.residuals[t] = y[t] - m.fittedVal[t]
	}

	sse := 0.0
	for t := burnIn; t < n; t++ {
		sse += m.residuals[t] * m.residuals[t]
	}
	k := m.Order.NumParams() + 1
	if m.nEff > k {
		m.Sigma2 = sse / float64(m.nEff-k)
	} else {
		m.Sigma2 = sse / float64(m.nEff)
	}
	return nil
}

// checkStability verifies each fitted polynomial keeps its roots outside the
// unit circle: the AR sides for stationarity, the MA sides for invertibility.
func (m *Model) checkStability() error {
	if !polyStable(m.AR) || !polyStable(m.SAR) {
		return fmt.Errorf("%w: %s autoregressive roots inside unit circle", ErrUnstable, m.Order)
	}
	if !polyStable(negate(m.MA)) || !polyStable(negate(m.SMA)) {
		return fmt.Errorf("%w: %s moving-average roots inside unit circle", ErrUnstable, m.Order)
	}
	return nil
}

// informationCriteria fills the gaussian log likelihood and the AIC family
// over the effective (post burn-in) sample.
func (m *Model) informationCriteria() {
	n := float64(m.nEff)
	k := float64(m.Order.NumParams() + 1)

	sse := 0.0
	for t := m.burnIn; t < len(m.residuals); t++ {
		sse += m.residuals[t] * m.residuals[t]
	}

	if m.Sigma2 > 0 {
		m.LogLik = -n/2*math.Log(2*math.Pi) - n/2*math.Log(m.Sigma2) - sse/(2*m.Sigma2)
	} else {
		m.LogLik = math.Inf(-1)
	}
	m.AIC = -2*m.LogLik + 2*k
	if n-k-1 > 0 {
		m.AICc = m.AIC + 2*k*(k+1)/(n-k-1)
	} else {
		m.AICc = math.Inf(1)
	}
	m.BIC = -2*m.LogLik + k*math.Log(n)
}

// Fitted reports whether Fit has completed successfully.
func (m *Model) Fitted() bool { return m.fitted }

// Residuals returns the one-step residuals on the differenced scale.
func (m *Model) Residuals() []float64 {
	if !m.fitted {
		return nil
	}
	return append([]float64(nil), m.residuals...)
}

// FittedValues returns the one-step predictions on the differenced scale.
func (m *Model) FittedValues() []float64 {
	if !m.fitted {
		return nil
	}
	return append([]float64(nil), m.fittedVal...)
}

// EffectiveObs returns the number of observations entering the likelihood.
func (m *Model) EffectiveObs() int { return m.nEff }

// Summary reports the fitted coefficients, the information criteria and a
// Ljung-Box whiteness check of the residuals.
type Summary struct {
	Order     Order                 `json:"order"`
	AR        []float64             `json:"ar"`
	MA        []float64             `json:"ma"`
	SAR       []float64             `json:"sar"`
	SMA       []float64             `json:"sma"`
	Intercept float64               `json:"intercept"`
	Sigma2    float64               `json:"sigma2"`
	LogLik    float64               `json:"loglik"`
	AIC       float64               `json:"aic"`
	AICc      float64               `json:"aicc"`
	BIC       float64               `json:"bic"`
	NObs      int                   `json:"n_obs"`
	LjungBox  *stats.LjungBoxResult `json:"ljung_box,omitempty"`
}

// Summary returns the model summary, or nil before Fit.
func (m *Model) Summary() *Summary {
	if !m.fitted {
		return nil
	}
	lb, err := stats.LjungBox(m.residuals[m.burnIn:], 10, m.Order.NumParams())
	if err != nil {
		lb = nil
	}
	return &Summary{
		Order:     m.Order,
		AR:        append([]float64(nil), m.AR...),
		MA:        append([]float64(nil), m.MA...),
		SAR:       append([]float64(nil), m.SAR...),
		SMA:       append([]float64(nil), m.SMA...),
		Intercept: m.Intercept,
		Sigma2:    m.Sigma2,
		LogLik:    m.LogLik,
		AIC:       m.AIC,
		AICc:      m.AICc,
		BIC:       m.BIC,
		NObs:      m.train.Len(),
		LjungBox:  lb,
	}
}

func diffValues(values []float64, lag int) []float64 {
	out := make([]float64, len(values)-lag)
	for i := range out {
		out[i] = values[i+lag] - values[i]
	}
	return out
}

func negate(coeffs []float64) []float64 {
	out := make([]float64, len(coeffs))
	for i, c := range coeffs {
		out[i] = -c
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
