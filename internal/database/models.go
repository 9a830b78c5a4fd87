package database

import (
	"time"
)

// ForecastRun represents a single pipeline execution
type ForecastRun struct {
	ID            string     `json:"id" gorm:"primaryKey"`
	SeriesName    string     `json:"series_name"`
	Observations  int        `json:"observations"`
	Period        int        `json:"period"`
	Horizon       int        `json:"horizon"`
	Holdout       int        `json:"holdout"`
	Status        string     `json:"status"`         // running, completed, failed
	Config        string     `json:"config"`         // JSON configuration
	SelectedOrder string     `json:"selected_order"` // e.g. SARIMA(1,1,0)(0,1,1)[12]
	AICc          float64    `json:"aicc" gorm:"column:aicc"`
	HoldoutMAPE   float64    `json:"holdout_mape" gorm:"column:holdout_mape"`
	HoldoutRMSE   float64    `json:"holdout_rmse" gorm:"column:holdout_rmse"`
	Error         string     `json:"error"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       *time.Time `json:"end_time"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// StationarityCheck stores one advisory test result from the diagnostics
// stage
type StationarityCheck struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	RunID string `json:"run_id" gorm:"index"`

	Test       string  `json:"test"`   // adf, kpss
	Series     string  `json:"series"` // which transform of the input was tested
	Statistic  float64 `json:"statistic"`
	PValue     float64 `json:"p_value"`
	Lags       int     `json:"lags"`
	Stationary bool    `json:"stationary"`

	CreatedAt time.Time `json:"created_at"`
}

// CandidateFit records one attempted order during model selection
type CandidateFit struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	RunID string `json:"run_id" gorm:"index"`

	OrderSpec string `json:"order_spec"`
	P         int    `json:"p"`
	D         int    `json:"d"`
	Q         int    `json:"q"`
	SP        int    `json:"sp" gorm:"column:sp"`
	SD        int    `json:"sd" gorm:"column:sd"`
	SQ        int    `json:"sq" gorm:"column:sq"`
	Period    int    `json:"period"`

	AICc      float64 `json:"aicc" gorm:"column:aicc"`
	Converged bool    `json:"converged"`
	Reason    string  `json:"reason"`
	Selected  bool    `json:"selected"`

	CreatedAt time.Time `json:"created_at"`
}

// ForecastPoint is one step of the final forecast on the original scale
type ForecastPoint struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	RunID string `json:"run_id" gorm:"index"`

	Step      int       `json:"step"` // 1-based lead time
	Timestamp time.Time `json:"timestamp" gorm:"index"`
	Mean      float64   `json:"mean"`
	SE        float64   `json:"se"` // log-scale standard error

	Lower80 float64 `json:"lower_80"`
	Upper80 float64 `json:"upper_80"`
	Lower95 float64 `json:"lower_95"`
	Upper95 float64 `json:"upper_95"`

	CreatedAt time.Time `json:"created_at"`
}

// AccuracyRecord stores holdout accuracy for the model or a benchmark
type AccuracyRecord struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	RunID string `json:"run_id" gorm:"index"`

	Kind string `json:"kind"` // model, seasonal_naive

	MAE  float64 `json:"mae"`
	ME   float64 `json:"me"`
	MSE  float64 `json:"mse"`
	RMSE float64 `json:"rmse"`
	MAPE float64 `json:"mape"`
	N    int     `json:"n"`

	CreatedAt time.Time `json:"created_at"`
}
