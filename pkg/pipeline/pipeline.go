// Package pipeline runs the end-to-end forecasting workflow: log transform,
// stationarity diagnostics, order selection on a training window, holdout
// validation, then a final refit and forecast on the full history.
package pipeline

import (
	"fmt"
	"log"
	"time"

	"github.com/forecastlab/demandcast/pkg/evaluation"
	"github.com/forecastlab/demandcast/pkg/forecast"
	"github.com/forecastlab/demandcast/pkg/sarima"
	"github.com/forecastlab/demandcast/pkg/selection"
	"github.com/forecastlab/demandcast/pkg/stats"
	"github.com/forecastlab/demandcast/pkg/timeseries"
)

// Config contains pipeline parameters.
type Config struct {
	Horizon int              `json:"horizon"` // final forecast length
	Holdout int              `json:"holdout"` // observations reserved for validation
	Period  int              `json:"period"`  // seasonal period, 0 means the series frequency
	Levels  []float64        `json:"levels"`  // confidence levels
	Bounds  selection.Bounds `json:"bounds"`
	Trace   bool             `json:"trace"` // log every candidate fit during selection
}

// DefaultConfig returns the standard monthly setup: two years of forecast
// validated on two years of holdout.
func DefaultConfig() Config {
	return Config{
		Horizon: 24,
		Holdout: 24,
		Period:  12,
		Levels:  []float64{0.80, 0.95},
		Bounds:  selection.DefaultBounds(),
	}
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	if c.Horizon <= 0 {
		return fmt.Errorf("pipeline: horizon must be positive, got %d", c.Horizon)
	}
	if c.Holdout <= 0 {
		return fmt.Errorf("pipeline: holdout must be positive, got %d", c.Holdout)
	}
	for _, l := range c.Levels {
		if l <= 0 || l >= 1 {
			return fmt.Errorf("pipeline: confidence level %.2f outside (0, 1)", l)
		}
	}
	return nil
}

// Diagnostics holds the advisory stationarity tests. They are reported and
// logged but never alter the pipeline's control flow; the selector decides
// differencing from the data on its own.
type Diagnostics struct {
	ADF              *stats.StationarityResult `json:"adf"`
	KPSS             *stats.StationarityResult `json:"kpss"`
	ADFDiff          *stats.StationarityResult `json:"adf_diff"`
	KPSSDiff         *stats.StationarityResult `json:"kpss_diff"`
	SeasonalStrength float64                   `json:"seasonal_strength"`
}

// Result collects everything a run produces.
type Result struct {
	Series      *timeseries.Series `json:"-"`
	LogSeries   *timeseries.Series `json:"-"`
	Diagnostics *Diagnostics       `json:"diagnostics"`
	Selection   *selection.Result  `json:"-"`
	Order       sarima.Order       `json:"order"`
	Summary     *sarima.Summary    `json:"summary"`
	Validation  *evaluation.Report `json:"validation"`
	Baseline    *evaluation.Report `json:"baseline,omitempty"`
	Model       *sarima.Model      `json:"-"`
	LogForecast *forecast.Forecast `json:"-"`
	Forecast    *forecast.Forecast `json:"forecast"`
	Elapsed     time.Duration      `json:"elapsed"`
}

// Runner executes the five pipeline stages in order. Each run is independent;
// a Runner holds no per-run state and is safe to reuse.
type Runner struct {
	cfg Config
}

// NewRunner validates the configuration and returns a runner. Empty levels
// default to 80% and 95%, an empty bounds struct to the standard search
// space.
func NewRunner(cfg Config) (*Runner, error) {
	if len(cfg.Levels) == 0 {
		cfg.Levels = append([]float64(nil), sarima.DefaultLevels...)
	}
	if cfg.Bounds == (selection.Bounds{}) {
		cfg.Bounds = selection.DefaultBounds()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Runner{cfg: cfg}, nil
}

// Run executes the pipeline on a series of strictly positive observations.
func (r *Runner) Run(series *timeseries.Series) (*Result, error) {
	start := time.Now()
	period := r.cfg.Period
	if period == 0 {
		period = series.Freq
	}
	log.Printf("Starting forecast pipeline for %q: %d observations, period %d, horizon %d",
		series.Name, series.Len(), period, r.cfg.Horizon)

	logSeries, err := series.Log()
	if err != nil {
		return nil, fmt.Errorf("transform stage: %w", err)
	}

	diag := r.diagnose(logSeries, period)

	trainLog, _, err := logSeries.Split(r.cfg.Holdout)
	if err != nil {
		return nil, fmt.Errorf("selection stage: %w", err)
	}
	train, holdout, err := series.Split(r.cfg.Holdout)
	if err != nil {
		return nil, fmt.Errorf("selection stage: %w", err)
	}

	sel := selection.New(selection.Config{Bounds: r.cfg.Bounds, Period: period, Trace: r.cfg.Trace})
	selRes, err := sel.Select(trainLog)
	if err != nil {
		return nil, fmt.Errorf("selection stage: %w", err)
	}
	log.Printf("Selected %s: AICc=%.2f, %d of %d candidates converged",
		selRes.Order(), selRes.Model.AICc, selRes.Evaluated-selRes.Failed, selRes.Evaluated)

	valFc, err := selRes.Model.Forecast(r.cfg.Holdout, r.cfg.Levels)
	if err != nil {
		return nil, fmt.Errorf("validation stage: %w", err)
	}
	validation, err := evaluation.EvaluateForecast(valFc.BackTransform(forecast.Exp), holdout)
	if err != nil {
		return nil, fmt.Errorf("validation stage: %w", err)
	}
	log.Printf("Holdout validation over %d observations: %s", holdout.Len(), validation)

	var baseline *evaluation.Report
	if naive, err := evaluation.SeasonalNaive(train, period, r.cfg.Holdout); err == nil {
		if report, err := evaluation.Evaluate(holdout.Values, naive); err == nil {
			baseline = report
			log.Printf("Seasonal naive benchmark: %s", baseline)
		}
	} else {
		log.Printf("Seasonal naive benchmark skipped: %v", err)
	}

	model, err := selection.Refit(logSeries, selRes.Order())
	if err != nil {
		return nil, fmt.Errorf("refit stage: %w", err)
	}
	logFc, err := model.Forecast(r.cfg.Horizon, r.cfg.Levels)
	if err != nil {
		return nil, fmt.Errorf("forecast stage: %w", err)
	}

	summary := model.Summary()
	if lb := summary.LjungBox; lb != nil && lb.PValue < 0.05 {
		log.Printf("Ljung-Box flags residual autocorrelation for %s: stat=%.3f p=%.4f",
			selRes.Order(), lb.Statistic, lb.PValue)
	}

	elapsed := time.Since(start)
	log.Printf("Pipeline finished in %s", elapsed.Round(time.Millisecond))

	return &Result{
		Series:      series,
		LogSeries:   logSeries,
		Diagnostics: diag,
		Selection:   selRes,
		Order:       selRes.Order(),
		Summary:     summary,
		Validation:  validation,
		Baseline:    baseline,
		Model:       model,
		LogForecast: logFc,
		Forecast:    logFc.BackTransform(forecast.Exp),
		Elapsed:     elapsed,
	}, nil
}

// diagnose runs the advisory stationarity tests on the transformed series
// and again after the standard first and seasonal differences.
func (r *Runner) diagnose(logSeries *timeseries.Series, period int) *Diagnostics {
	d := &Diagnostics{}

	if res, err := stats.ADF(logSeries.Values, 0); err == nil {
		d.ADF = res
		log.Printf("ADF on %q: stat=%.3f p=%.3f stationary=%v",
			logSeries.Name, res.Statistic, res.PValue, res.Stationary)
	} else {
		log.Printf("ADF on %q skipped: %v", logSeries.Name, err)
	}
	if res, err := stats.KPSS(logSeries.Values, false, 0); err == nil {
		d.KPSS = res
		log.Printf("KPSS on %q: stat=%.3f p=%.3f stationary=%v",
			logSeries.Name, res.Statistic, res.PValue, res.Stationary)
	} else {
		log.Printf("KPSS on %q skipped: %v", logSeries.Name, err)
	}
	if strength, err := stats.SeasonalStrength(logSeries.Values, period); err == nil {
		d.SeasonalStrength = strength
		log.Printf("Seasonal strength at period %d: %.3f", period, strength)
	}

	diffed, err := logSeries.Diff(1)
	if err == nil && period >= 2 {
		if seasonal, serr := diffed.Diff(period); serr == nil {
			diffed = seasonal
		}
	}
	if err == nil {
		if res, aerr := stats.ADF(diffed.Values, 0); aerr == nil {
			d.ADFDiff = res
			log.Printf("ADF on %q: stat=%.3f p=%.3f stationary=%v",
				diffed.Name, res.Statistic, res.PValue, res.Stationary)
		}
		if res, kerr := stats.KPSS(diffed.Values, false, 0); kerr == nil {
			d.KPSSDiff = res
			log.Printf("KPSS on %q: stat=%.3f p=%.3f stationary=%v",
				diffed.Name, res.Statistic, res.PValue, res.Stationary)
		}
	}
	return d
}
