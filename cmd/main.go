package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/forecastlab/demandcast/pkg/pipeline"
	"github.com/forecastlab/demandcast/pkg/selection"
	"github.com/forecastlab/demandcast/pkg/timeseries"
)

func main() {
	// Parse command line flags
	var (
		csvPath = flag.String("csv", "./data/demand.csv", "Path to date,value CSV input")
		freq    = flag.Int("freq", 12, "Observations per year")
		horizon = flag.Int("horizon", 24, "Forecast length in observations")
		holdout = flag.Int("holdout", 24, "Observations held out for validation")
		period  = flag.Int("period", 0, "Seasonal period (0 uses the frequency)")
		outPath = flag.String("out", "", "Write the forecast table to this CSV file")
		maxP    = flag.Int("max-p", 3, "AR order ceiling")
		maxQ    = flag.Int("max-q", 3, "MA order ceiling")
		maxSP   = flag.Int("max-sp", 2, "Seasonal AR order ceiling")
		maxSQ   = flag.Int("max-sq", 2, "Seasonal MA order ceiling")
		trace   = flag.Bool("trace", false, "Log every candidate fit")
	)
	flag.Parse()

	// Print banner
	printBanner()

	// Validate input file
	if _, err := os.Stat(*csvPath); err != nil {
		log.Fatalf("Input file not found: %v", err)
	}

	series, err := timeseries.LoadCSV(*csvPath, *freq)
	if err != nil {
		log.Fatalf("Failed to load series: %v", err)
	}

	log.Printf("Loaded %q: %d observations from %s to %s",
		series.Name, series.Len(),
		series.TimeAt(0).Format("2006-01"), series.End().Format("2006-01"))

	bounds := selection.DefaultBounds()
	bounds.MaxP, bounds.MaxQ = *maxP, *maxQ
	bounds.MaxSP, bounds.MaxSQ = *maxSP, *maxSQ

	runner, err := pipeline.NewRunner(pipeline.Config{
		Horizon: *horizon,
		Holdout: *holdout,
		Period:  *period,
		Bounds:  bounds,
		Trace:   *trace,
	})
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	res, err := runner.Run(series)
	if err != nil {
		log.Fatalf("Pipeline failed: %v", err)
	}

	fmt.Println("\nResults")
	fmt.Println("=======")
	fmt.Printf("Selected order: %s (AICc %.2f)\n", res.Order, res.Summary.AICc)
	fmt.Printf("Holdout: %s\n", res.Validation)
	if res.Baseline != nil {
		fmt.Printf("Seasonal naive: %s\n", res.Baseline)
	}
	fmt.Println()

	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Fatalf("Failed to create output file: %v", err)
		}
		defer f.Close()
		if err := res.Forecast.WriteCSV(f); err != nil {
			log.Fatalf("Failed to write forecast table: %v", err)
		}
		log.Printf("Forecast table written to %s", *outPath)
	} else {
		if err := res.Forecast.WriteCSV(os.Stdout); err != nil {
			log.Fatalf("Failed to write forecast table: %v", err)
		}
	}
}

func printBanner() {
	fmt.Println()
	fmt.Println("========================================================")
	fmt.Println("        Demandcast Seasonal Forecasting Pipeline        ")
	fmt.Println("========================================================")
	fmt.Println()
	fmt.Println("This run will:")
	fmt.Println("   1. Log-transform the input series")
	fmt.Println("   2. Run stationarity diagnostics (ADF, KPSS)")
	fmt.Println("   3. Search SARIMA orders and rank them by AICc")
	fmt.Println("   4. Validate the winner on a holdout window")
	fmt.Println("   5. Refit on the full history and forecast")
	fmt.Println()
}
