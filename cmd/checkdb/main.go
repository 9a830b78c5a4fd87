package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/forecastlab/demandcast/internal/database"
)

func main() {
	dbPath := flag.String("db", "analytics.db", "Path to SQLite database file")
	flag.Parse()

	// Connect to database
	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Create repository
	repo := database.NewRepository(db)

	// List all forecast runs
	runs, err := repo.ListRuns()
	if err != nil {
		log.Fatalf("Failed to list runs: %v", err)
	}

	fmt.Printf("Found %d forecast runs in database:\n\n", len(runs))

	for _, run := range runs {
		fmt.Printf("ID: %s\n", run.ID)
		fmt.Printf("Series: %s (%d observations, period %d)\n",
			run.SeriesName, run.Observations, run.Period)
		fmt.Printf("Status: %s\n", run.Status)
		if run.Status == "completed" {
			fmt.Printf("Selected order: %s (AICc %.2f)\n", run.SelectedOrder, run.AICc)
			fmt.Printf("Holdout: MAPE %.2f%%, RMSE %.4f\n", run.HoldoutMAPE, run.HoldoutRMSE)
		}
		if run.Error != "" {
			fmt.Printf("Error: %s\n", run.Error)
		}
		fmt.Printf("Start Time: %s\n", run.StartTime.Format("2006-01-02 15:04:05"))
		if run.EndTime != nil {
			fmt.Printf("End Time: %s\n", run.EndTime.Format("2006-01-02 15:04:05"))
		}

		// Get candidate count
		candidates, err := repo.GetCandidates(run.ID)
		if err == nil {
			fmt.Printf("Candidate Fits: %d\n", len(candidates))
		}

		// Get forecast point count
		points, err := repo.GetForecastPoints(run.ID)
		if err == nil {
			fmt.Printf("Forecast Points: %d\n", len(points))
		}

		fmt.Println("---")
	}
}
