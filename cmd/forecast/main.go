package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/forecastlab/demandcast/internal/database"
	"github.com/forecastlab/demandcast/internal/recorder"
	"github.com/forecastlab/demandcast/pkg/pipeline"
	"github.com/forecastlab/demandcast/pkg/timeseries"
)

func main() {
	var (
		csvPath = flag.String("csv", "./data/demand.csv", "Path to date,value CSV input")
		freq    = flag.Int("freq", 12, "Observations per year")
		horizon = flag.Int("horizon", 24, "Forecast length in observations")
		holdout = flag.Int("holdout", 24, "Observations held out for validation")
		period  = flag.Int("period", 0, "Seasonal period (0 uses the frequency)")
		dbPath  = flag.String("db", "analytics.db", "Path to SQLite database file")
		trace   = flag.Bool("trace", false, "Log every candidate fit")
	)
	flag.Parse()

	log.Printf("Starting recorded forecast run")

	// Ensure database directory exists
	dbDir := filepath.Dir(*dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}

	// Initialize database
	log.Printf("Connecting to database at %s", *dbPath)
	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	repo := database.NewRepository(db)

	series, err := timeseries.LoadCSV(*csvPath, *freq)
	if err != nil {
		log.Fatalf("Failed to load series: %v", err)
	}
	log.Printf("Loaded %q: %d observations", series.Name, series.Len())

	cfg := pipeline.DefaultConfig()
	cfg.Horizon = *horizon
	cfg.Holdout = *holdout
	cfg.Period = *period
	cfg.Trace = *trace

	runner, err := pipeline.NewRunner(cfg)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	rec, err := recorder.NewRecorder(repo, series, cfg)
	if err != nil {
		log.Fatalf("Failed to create run record: %v", err)
	}
	log.Printf("Created forecast run with ID: %s", rec.RunID())

	start := time.Now()
	res, err := runner.Run(series)
	if err != nil {
		if failErr := rec.Fail(err); failErr != nil {
			log.Printf("Failed to mark run failed: %v", failErr)
		}
		log.Fatalf("Pipeline failed: %v", err)
	}

	if err := rec.RecordResult(res); err != nil {
		log.Fatalf("Failed to record results: %v", err)
	}

	log.Printf("Run completed in %v: %s, holdout MAPE %.2f%%",
		time.Since(start).Round(time.Millisecond), res.Order, res.Validation.MAPE)
	log.Printf("Results stored in database. Run ID: %s", rec.RunID())
	log.Printf("Start analytics server to view results: ./analytics-server -db %s", *dbPath)
}
