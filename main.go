package main

import (
	"fmt"
	"log"

	"github.com/forecastlab/demandcast/pkg/pipeline"
	"github.com/forecastlab/demandcast/pkg/timeseries"
)

func main() {
	fmt.Println("Demandcast - Seasonal Demand Forecasting Demo")
	fmt.Println("=============================================")

	// Generate eleven years of monthly demand with trend and seasonality
	gen := timeseries.NewGenerator(timeseries.SyntheticConfig{
		Name:      "demo-demand",
		Base:      4.6,
		Trend:     0.004,
		Amplitude: 0.18,
		Noise:     0.015,
		Seed:      42,
	})
	series := gen.Multiplicative(132)

	fmt.Printf("✓ Generated %d monthly observations\n", series.Len())
	fmt.Printf("✓ Range: %.1f to %.1f, mean %.1f\n", series.Min(), series.Max(), series.Mean())

	cfg := pipeline.DefaultConfig()
	cfg.Holdout = 12

	runner, err := pipeline.NewRunner(cfg)
	if err != nil {
		log.Fatalf("Failed to configure pipeline: %v", err)
	}

	fmt.Println("\nRunning forecast pipeline...")
	fmt.Println("============================")

	res, err := runner.Run(series)
	if err != nil {
		log.Fatalf("Pipeline failed: %v", err)
	}

	fmt.Println("\nSelected Model:")
	fmt.Println("===============")
	fmt.Printf("Order: %s\n", res.Order)
	fmt.Printf("AICc: %.2f\n", res.Summary.AICc)
	fmt.Printf("Log likelihood: %.2f\n", res.Summary.LogLik)
	fmt.Printf("Candidates converged: %d of %d\n",
		res.Selection.Evaluated-res.Selection.Failed, res.Selection.Evaluated)

	fmt.Printf("\nHoldout Accuracy (%d months):\n", res.Validation.N)
	fmt.Println("============================")
	fmt.Printf("Model:          MAPE=%.2f%% RMSE=%.3f\n", res.Validation.MAPE, res.Validation.RMSE)
	if res.Baseline != nil {
		fmt.Printf("Seasonal naive: MAPE=%.2f%% RMSE=%.3f\n", res.Baseline.MAPE, res.Baseline.RMSE)
	}

	iv80, err := res.Forecast.Interval(0.80)
	if err != nil {
		log.Fatalf("Missing 80%% interval: %v", err)
	}
	iv95, err := res.Forecast.Interval(0.95)
	if err != nil {
		log.Fatalf("Missing 95%% interval: %v", err)
	}

	fmt.Printf("\n%d-Month Forecast:\n", res.Forecast.Horizon())
	fmt.Println("==================")
	fmt.Printf("%-8s %9s %21s %21s\n", "month", "mean", "80% interval", "95% interval")
	for i := range res.Forecast.Mean {
		fmt.Printf("%-8s %9.2f [%8.2f, %8.2f] [%8.2f, %8.2f]\n",
			res.Forecast.Times[i].Format("2006-01"),
			res.Forecast.Mean[i],
			iv80.Lower[i], iv80.Upper[i],
			iv95.Lower[i], iv95.Upper[i])
	}

	fmt.Println("\nDemo completed successfully!")
}
