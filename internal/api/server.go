package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/forecastlab/demandcast/internal/database"
	"github.com/forecastlab/demandcast/internal/recorder"
	"github.com/forecastlab/demandcast/pkg/pipeline"
	"github.com/forecastlab/demandcast/pkg/selection"
	"github.com/forecastlab/demandcast/pkg/timeseries"
)

// Server represents the API server
type Server struct {
	router *gin.Engine
	repo   *database.Repository
	port   string
}

// NewServer creates a new API server
func NewServer(repo *database.Repository, port string) *Server {
	router := gin.Default()

	// Configure CORS
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	config.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	router.Use(cors.New(config))

	server := &Server{
		router: router,
		repo:   repo,
		port:   port,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.Group("/api/v1")

	// Run endpoints
	api.GET("/runs", s.listRuns)
	api.GET("/runs/:id", s.getRun)
	api.DELETE("/runs/:id", s.deleteRun)

	// Run artifacts (isolated by run)
	api.GET("/runs/:id/diagnostics", s.getDiagnostics)
	api.GET("/runs/:id/candidates", s.getCandidates)
	api.GET("/runs/:id/forecast", s.getForecast)
	api.GET("/runs/:id/accuracy", s.getAccuracy)
	api.GET("/runs/:id/summary", s.getRunSummary)

	// Synchronous pipeline execution
	api.POST("/forecast", s.runForecast)

	// Health check
	api.GET("/health", s.healthCheck)
}

// Start starts the server
func (s *Server) Start() error {
	return s.router.Run(":" + s.port)
}

// Handler implementations

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now(),
	})
}

func (s *Server) listRuns(c *gin.Context) {
	runs, err := s.repo.ListRuns()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, runs)
}

func (s *Server) getRun(c *gin.Context) {
	id := c.Param("id")

	run, err := s.repo.GetRun(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}

	c.JSON(http.StatusOK, run)
}

func (s *Server) deleteRun(c *gin.Context) {
	id := c.Param("id")

	if err := s.repo.DeleteRun(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Run deleted"})
}

func (s *Server) getDiagnostics(c *gin.Context) {
	runID := c.Param("id")

	checks, err := s.repo.GetStationarityChecks(runID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, checks)
}

func (s *Server) getCandidates(c *gin.Context) {
	runID := c.Param("id")

	candidates, err := s.repo.GetCandidates(runID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, candidates)
}

func (s *Server) getForecast(c *gin.Context) {
	runID := c.Param("id")

	points, err := s.repo.GetForecastPoints(runID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, points)
}

func (s *Server) getAccuracy(c *gin.Context) {
	runID := c.Param("id")

	records, err := s.repo.GetAccuracy(runID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, records)
}

func (s *Server) getRunSummary(c *gin.Context) {
	runID := c.Param("id")

	summary, err := s.repo.GetRunSummary(runID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// forecastRequest is the payload for a synchronous pipeline run
type forecastRequest struct {
	Name    string            `json:"name"`
	Start   string            `json:"start"` // first observation date, e.g. 2015-01-01
	Freq    int               `json:"freq"`  // observations per year, default 12
	Values  []float64         `json:"values" binding:"required"`
	Horizon int               `json:"horizon"`
	Holdout int               `json:"holdout"`
	Period  int               `json:"period"`
	Levels  []float64         `json:"levels"`
	Bounds  *selection.Bounds `json:"bounds"`
}

func (s *Server) runForecast(c *gin.Context) {
	var req forecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	if req.Start != "" {
		ts, err := timeseries.ParseDate(req.Start)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start date"})
			return
		}
		start = ts
	}
	name := req.Name
	if name == "" {
		name = "series"
	}
	series := timeseries.New(name, start, req.Freq, req.Values)

	cfg := pipeline.DefaultConfig()
	if req.Horizon > 0 {
		cfg.Horizon = req.Horizon
	}
	if req.Holdout > 0 {
		cfg.Holdout = req.Holdout
	}
	if req.Period > 0 {
		cfg.Period = req.Period
	}
	if len(req.Levels) > 0 {
		cfg.Levels = req.Levels
	}
	if req.Bounds != nil {
		cfg.Bounds = *req.Bounds
	}

	runner, err := pipeline.NewRunner(cfg)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := recorder.NewRecorder(s.repo, series, cfg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	res, err := runner.Run(series)
	if err != nil {
		if failErr := rec.Fail(err); failErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": failErr.Error()})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  err.Error(),
			"run_id": rec.RunID(),
		})
		return
	}

	if err := rec.RecordResult(res); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  err.Error(),
			"run_id": rec.RunID(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"run_id":     rec.RunID(),
		"order":      res.Order.String(),
		"summary":    res.Summary,
		"validation": res.Validation,
		"baseline":   res.Baseline,
		"forecast":   res.Forecast,
	})
}
