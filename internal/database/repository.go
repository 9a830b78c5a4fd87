package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Repository provides data access methods
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// CreateRun creates a new forecast run record
func (r *Repository) CreateRun(run *ForecastRun) error {
	return r.db.Create(run).Error
}

// GetRun retrieves a run by ID
func (r *Repository) GetRun(id string) (*ForecastRun, error) {
	var run ForecastRun
	err := r.db.First(&run, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns lists all runs, newest first
func (r *Repository) ListRuns() ([]ForecastRun, error) {
	var runs []ForecastRun
	err := r.db.Order("created_at DESC").Find(&runs).Error
	return runs, err
}

// CompleteRun marks a run as completed and stores its headline results
func (r *Repository) CompleteRun(id, order string, aicc, mape, rmse float64) error {
	now := time.Now()
	return r.db.Model(&ForecastRun{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":         "completed",
			"selected_order": order,
			"aicc":           aicc,
			"holdout_mape":   mape,
			"holdout_rmse":   rmse,
			"end_time":       now,
		}).Error
}

// FailRun marks a run as failed with the error that stopped it
func (r *Repository) FailRun(id string, runErr error) error {
	now := time.Now()
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	return r.db.Model(&ForecastRun{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":   "failed",
			"error":    msg,
			"end_time": now,
		}).Error
}

// SaveStationarityChecks saves the diagnostics stage results
func (r *Repository) SaveStationarityChecks(checks []StationarityCheck) error {
	if len(checks) == 0 {
		return nil
	}
	return r.db.Create(&checks).Error
}

// GetStationarityChecks retrieves diagnostics for a run
func (r *Repository) GetStationarityChecks(runID string) ([]StationarityCheck, error) {
	var checks []StationarityCheck
	err := r.db.Where("run_id = ?", runID).Order("id ASC").Find(&checks).Error
	return checks, err
}

// SaveCandidates saves the selection trace efficiently
func (r *Repository) SaveCandidates(candidates []CandidateFit) error {
	if len(candidates) == 0 {
		return nil
	}
	return r.db.CreateInBatches(candidates, 100).Error
}

// GetCandidates retrieves the selection trace in evaluation order
func (r *Repository) GetCandidates(runID string) ([]CandidateFit, error) {
	var candidates []CandidateFit
	err := r.db.Where("run_id = ?", runID).Order("id ASC").Find(&candidates).Error
	return candidates, err
}

// SaveForecastPoints saves the final forecast
func (r *Repository) SaveForecastPoints(points []ForecastPoint) error {
	if len(points) == 0 {
		return nil
	}
	return r.db.CreateInBatches(points, 100).Error
}

// GetForecastPoints retrieves the forecast ordered by lead time
func (r *Repository) GetForecastPoints(runID string) ([]ForecastPoint, error) {
	var points []ForecastPoint
	err := r.db.Where("run_id = ?", runID).Order("step ASC").Find(&points).Error
	return points, err
}

// SaveAccuracy saves a holdout accuracy record
func (r *Repository) SaveAccuracy(record *AccuracyRecord) error {
	return r.db.Create(record).Error
}

// GetAccuracy retrieves accuracy records for a run
func (r *Repository) GetAccuracy(runID string) ([]AccuracyRecord, error) {
	var records []AccuracyRecord
	err := r.db.Where("run_id = ?", runID).Order("id ASC").Find(&records).Error
	return records, err
}

// GetRunSummary gets aggregated stats for a run
func (r *Repository) GetRunSummary(runID string) (map[string]interface{}, error) {
	summary := make(map[string]interface{})

	run, err := r.GetRun(runID)
	if err != nil {
		return nil, err
	}
	summary["run"] = run

	var stats struct {
		TotalCandidates int64
		Converged       int64
		Failed          int64
		BestAicc        float64
	}

	r.db.Model(&CandidateFit{}).
		Where("run_id = ?", runID).
		Count(&stats.TotalCandidates)

	r.db.Model(&CandidateFit{}).
		Where("run_id = ? AND converged = ?", runID, true).
		Count(&stats.Converged)
	stats.Failed = stats.TotalCandidates - stats.Converged

	r.db.Model(&CandidateFit{}).
		Where("run_id = ? AND converged = ?", runID, true).
		Select("MIN(aicc) as best_aicc").
		Scan(&stats.BestAicc)

	summary["selection"] = stats

	return summary, nil
}

// DeleteRun deletes a run and all related data
func (r *Repository) DeleteRun(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// Delete related data first
		if err := tx.Where("run_id = ?", id).Delete(&StationarityCheck{}).Error; err != nil {
			return err
		}
		if err := tx.Where("run_id = ?", id).Delete(&CandidateFit{}).Error; err != nil {
			return err
		}
		if err := tx.Where("run_id = ?", id).Delete(&ForecastPoint{}).Error; err != nil {
			return err
		}
		if err := tx.Where("run_id = ?", id).Delete(&AccuracyRecord{}).Error; err != nil {
			return err
		}

		// Delete run
		return tx.Where("id = ?", id).Delete(&ForecastRun{}).Error
	})
}

// GetSelectedCandidate returns the winning candidate of a run
func (r *Repository) GetSelectedCandidate(runID string) (*CandidateFit, error) {
	var candidate CandidateFit
	err := r.db.Where("run_id = ? AND selected = ?", runID, true).
		First(&candidate).Error

	if err != nil {
		return nil, fmt.Errorf("failed to get selected candidate: %w", err)
	}

	return &candidate, nil
}
