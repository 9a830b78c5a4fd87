// Package recorder persists forecast pipeline runs through the database
// repository.
package recorder

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/forecastlab/demandcast/internal/database"
	"github.com/forecastlab/demandcast/pkg/evaluation"
	"github.com/forecastlab/demandcast/pkg/pipeline"
	"github.com/forecastlab/demandcast/pkg/stats"
	"github.com/forecastlab/demandcast/pkg/timeseries"
)

// Recorder writes one forecast run and its artifacts to the database
type Recorder struct {
	repo  *database.Repository
	runID string
}

// NewRecorder creates the run record in "running" state and returns a
// recorder bound to it
func NewRecorder(repo *database.Repository, series *timeseries.Series, cfg pipeline.Config) (*Recorder, error) {
	configJSON := ""
	if data, err := json.Marshal(cfg); err == nil {
		configJSON = string(data)
	}

	period := cfg.Period
	if period == 0 {
		period = series.Freq
	}

	run := &database.ForecastRun{
		ID:           uuid.New().String(),
		SeriesName:   series.Name,
		Observations: series.Len(),
		Period:       period,
		Horizon:      cfg.Horizon,
		Holdout:      cfg.Holdout,
		Status:       "running",
		Config:       configJSON,
		StartTime:    time.Now(),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := repo.CreateRun(run); err != nil {
		return nil, fmt.Errorf("failed to create forecast run: %w", err)
	}

	return &Recorder{repo: repo, runID: run.ID}, nil
}

// RunID returns the run this recorder writes to
func (rc *Recorder) RunID() string {
	return rc.runID
}

// RecordResult persists everything a completed pipeline run produced and
// marks the run completed
func (rc *Recorder) RecordResult(res *pipeline.Result) error {
	if err := rc.recordDiagnostics(res.Diagnostics); err != nil {
		return fmt.Errorf("failed to save diagnostics: %w", err)
	}
	if err := rc.recordCandidates(res); err != nil {
		return fmt.Errorf("failed to save selection trace: %w", err)
	}
	if err := rc.recordForecast(res); err != nil {
		return fmt.Errorf("failed to save forecast: %w", err)
	}
	if err := rc.recordAccuracy(res); err != nil {
		return fmt.Errorf("failed to save accuracy: %w", err)
	}

	return rc.repo.CompleteRun(rc.runID, res.Order.String(),
		res.Model.AICc, res.Validation.MAPE, res.Validation.RMSE)
}

// Fail marks the run as failed with the error that stopped the pipeline
func (rc *Recorder) Fail(runErr error) error {
	return rc.repo.FailRun(rc.runID, runErr)
}

func (rc *Recorder) recordDiagnostics(diag *pipeline.Diagnostics) error {
	if diag == nil {
		return nil
	}

	var checks []database.StationarityCheck
	add := func(test, series string, res *stats.StationarityResult) {
		if res == nil {
			return
		}
		checks = append(checks, database.StationarityCheck{
			RunID:      rc.runID,
			Test:       test,
			Series:     series,
			Statistic:  res.Statistic,
			PValue:     res.PValue,
			Lags:       res.Lags,
			Stationary: res.Stationary,
			CreatedAt:  time.Now(),
		})
	}
	add("adf", "log", diag.ADF)
	add("kpss", "log", diag.KPSS)
	add("adf", "log_diff", diag.ADFDiff)
	add("kpss", "log_diff", diag.KPSSDiff)

	return rc.repo.SaveStationarityChecks(checks)
}

func (rc *Recorder) recordCandidates(res *pipeline.Result) error {
	if res.Selection == nil {
		return nil
	}

	candidates := make([]database.CandidateFit, 0, len(res.Selection.Candidates))
	for _, c := range res.Selection.Candidates {
		// non-finite scores from failed fits are stored as zero; the
		// converged flag disambiguates
		aicc := c.AICc
		if !c.Converged {
			aicc = 0
		}
		candidates = append(candidates, database.CandidateFit{
			RunID:     rc.runID,
			OrderSpec: c.Order.String(),
			P:         c.Order.P,
			D:         c.Order.D,
			Q:         c.Order.Q,
			SP:        c.Order.SP,
			SD:        c.Order.SD,
			SQ:        c.Order.SQ,
			Period:    c.Order.Period,
			AICc:      aicc,
			Converged: c.Converged,
			Reason:    c.Reason,
			Selected:  c.Converged && c.Order == res.Order,
			CreatedAt: time.Now(),
		})
	}

	return rc.repo.SaveCandidates(candidates)
}

func (rc *Recorder) recordForecast(res *pipeline.Result) error {
	fc := res.Forecast
	if fc == nil {
		return nil
	}
	iv80, _ := fc.Interval(0.80)
	iv95, _ := fc.Interval(0.95)

	points := make([]database.ForecastPoint, fc.Horizon())
	for i := range points {
		p := database.ForecastPoint{
			RunID:     rc.runID,
			Step:      i + 1,
			Timestamp: fc.Times[i],
			Mean:      fc.Mean[i],
			SE:        fc.SE[i],
			CreatedAt: time.Now(),
		}
		if iv80 != nil {
			p.Lower80, p.Upper80 = iv80.Lower[i], iv80.Upper[i]
		}
		if iv95 != nil {
			p.Lower95, p.Upper95 = iv95.Lower[i], iv95.Upper[i]
		}
		points[i] = p
	}

	return rc.repo.SaveForecastPoints(points)
}

func (rc *Recorder) recordAccuracy(res *pipeline.Result) error {
	save := func(kind string, report *evaluation.Report) error {
		if report == nil {
			return nil
		}
		return rc.repo.SaveAccuracy(&database.AccuracyRecord{
			RunID:     rc.runID,
			Kind:      kind,
			MAE:       report.MAE,
			ME:        report.ME,
			MSE:       report.MSE,
			RMSE:      report.RMSE,
			MAPE:      report.MAPE,
			N:         report.N,
			CreatedAt: time.Now(),
		})
	}
	if err := save("model", res.Validation); err != nil {
		return err
	}
	return save("seasonal_naive", res.Baseline)
}
