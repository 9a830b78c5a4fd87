// Package selection finds the SARIMA order that best explains a series,
// searching a bounded grid and ranking converged fits by corrected AIC.
package selection

import (
	"fmt"
	"log"
	"math"

	"github.com/forecastlab/demandcast/pkg/sarima"
	"github.com/forecastlab/demandcast/pkg/stats"
	"github.com/forecastlab/demandcast/pkg/timeseries"
)

// seasonalStrengthThreshold is the strength above which a seasonal
// difference is applied.
const seasonalStrengthThreshold = 0.64

// Bounds limits the order search space.
type Bounds struct {
	MaxP  int `json:"max_p"`
	MaxQ  int `json:"max_q"`
	MaxSP int `json:"max_sp"`
	MaxSQ int `json:"max_sq"`
	MaxD  int `json:"max_d"`
	MaxSD int `json:"max_sd"`
}

// DefaultBounds returns the standard monthly search space.
func DefaultBounds() Bounds {
	return Bounds{MaxP: 3, MaxQ: 3, MaxSP: 2, MaxSQ: 2, MaxD: 1, MaxSD: 1}
}

// Config drives a Selector.
type Config struct {
	Bounds Bounds
	Period int
	Trace  bool // log every candidate fit
}

// Candidate records one attempted fit.
type Candidate struct {
	Order     sarima.Order `json:"order"`
	AICc      float64      `json:"aicc"`
	Converged bool         `json:"converged"`
	Reason    string       `json:"reason,omitempty"`
}

// Result is the outcome of a search: the winning fitted model plus the full
// candidate trace.
type Result struct {
	Model      *sarima.Model
	Candidates []Candidate
	Evaluated  int
	Failed     int
}

// Order returns the selected order.
func (r *Result) Order() sarima.Order { return r.Model.Order }

// Selector searches for orders within its configured bounds.
type Selector struct {
	cfg Config
}

// New returns a Selector. A non-positive period disables the seasonal part
// of the search.
func New(cfg Config) *Selector {
	if cfg.Period < 2 {
		cfg.Bounds.MaxSP = 0
		cfg.Bounds.MaxSQ = 0
		cfg.Bounds.MaxSD = 0
	}
	return &Selector{cfg: cfg}
}

// Select picks the differencing orders from the data, fits every (p,q,P,Q)
// combination within bounds, and returns the converged fit with the lowest
// corrected AIC. Candidate fits are allowed to fail; only an all-candidate
// failure is an error.
func (s *Selector) Select(series *timeseries.Series) (*Result, error) {
	if series.Len() < 20 {
		return nil, fmt.Errorf("selection: need at least 20 observations, have %d", series.Len())
	}

	d := s.chooseD(series.Values)
	sd := s.chooseSD(series.Values, d)

	result := &Result{}
	var bestModel *sarima.Model
	bounds := s.cfg.Bounds
	for p := 0; p <= bounds.MaxP; p++ {
		for q := 0; q <= bounds.MaxQ; q++ {
			for sp := 0; sp <= bounds.MaxSP; sp++ {
				for sq := 0; sq <= bounds.MaxSQ; sq++ {
					order := sarima.Order{
						P: p, D: d, Q: q,
						SP: sp, SD: sd, SQ: sq,
						Period: s.cfg.Period,
					}
					result.Evaluated++

					m := sarima.New(order)
					if err := m.Fit(series); err != nil {
						result.Failed++
						result.Candidates = append(result.Candidates, Candidate{
							Order:  order,
							AICc:   math.Inf(1),
							Reason: err.Error(),
						})
						if s.cfg.Trace {
							log.Printf("  %s: skipped (%v)", order, err)
						}
						continue
					}

					result.Candidates = append(result.Candidates, Candidate{
						Order:     order,
						AICc:      m.AICc,
						Converged: true,
					})
					if s.cfg.Trace {
						log.Printf("  %s: AICc=%.2f", order, m.AICc)
					}
					if bestModel == nil || better(m, bestModel) {
						bestModel = m
					}
				}
			}
		}
	}

	if bestModel == nil {
		return nil, fmt.Errorf("%w: all %d candidate orders failed",
			sarima.ErrNoConvergence, result.Evaluated)
	}
	result.Model = bestModel
	return result, nil
}

// Refit fits an already selected order on another series, typically the
// full history once validation is done.
func Refit(series *timeseries.Series, order sarima.Order) (*sarima.Model, error) {
	m := sarima.New(order)
	if err := m.Fit(series); err != nil {
		return nil, fmt.Errorf("selection: refit %s: %w", order, err)
	}
	return m, nil
}

// chooseD raises the nonseasonal differencing order until the KPSS test
// stops rejecting stationarity, capped by the bounds.
func (s *Selector) chooseD(values []float64) int {
	d := 0
	current := values
	for d < s.cfg.Bounds.MaxD {
		res, err := stats.KPSS(current, false, 0)
		if err != nil || res.Stationary {
			break
		}
		current = diff(current, 1)
		d++
	}
	return d
}

// chooseSD applies seasonal differences while the seasonal pattern stays
// strong, measured after the nonseasonal differencing already decided.
func (s *Selector) chooseSD(values []float64, d int) int {
	if s.cfg.Period < 2 || s.cfg.Bounds.MaxSD == 0 {
		return 0
	}
	current := values
	for i := 0; i < d; i++ {
		current = diff(current, 1)
	}

	sd := 0
	for sd < s.cfg.Bounds.MaxSD {
		strength, err := stats.SeasonalStrength(current, s.cfg.Period)
		if err != nil || strength < seasonalStrengthThreshold {
			break
		}
		current = diff(current, s.cfg.Period)
		sd++
	}
	return sd
}

// better ranks two fitted models: lower AICc wins, ties resolved by fewer
// parameters, then less differencing, then component order.
func better(a, b *sarima.Model) bool {
	const eps = 1e-9
	if math.Abs(a.AICc-b.AICc) > eps {
		return a.AICc < b.AICc
	}
	if a.Order.NumParams() != b.Order.NumParams() {
		return a.Order.NumParams() < b.Order.NumParams()
	}
	if a.Order.TotalDiff() != b.Order.TotalDiff() {
		return a.Order.TotalDiff() < b.Order.TotalDiff()
	}
	ac := [4]int{a.Order.P, a.Order.Q, a.Order.SP, a.Order.SQ}
	bc := [4]int{b.Order.P, b.Order.Q, b.Order.SP, b.Order.SQ}
	for i := range ac {
		if ac[i] != bc[i] {
			return ac[i] < bc[i]
		}
	}
	return false
}

func diff(values []float64, lag int) []float64 {
	if len(values) <= lag {
		return nil
	}
	out := make([]float64, len(values)-lag)
	for i := range out {
		out[i] = values[i+lag] - values[i]
	}
	return out
}
