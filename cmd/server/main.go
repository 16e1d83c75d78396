package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/ajharbinger/annuity-review-api/internal/api"
	"github.com/ajharbinger/annuity-review-api/internal/logger"
	"github.com/ajharbinger/annuity-review-api/internal/metrics"
	"github.com/ajharbinger/annuity-review-api/internal/middleware"
	"github.com/ajharbinger/annuity-review-api/internal/repository"
	"github.com/ajharbinger/annuity-review-api/internal/scoring"
	"github.com/ajharbinger/annuity-review-api/internal/services"
	"github.com/ajharbinger/annuity-review-api/pkg/config"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize configuration
	cfg := config.New()

	appLog := logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})

	if err := cfg.Validate(); err != nil {
		appLog.Fatal("Invalid configuration", err)
	}

	m := metrics.New()
	if err := m.Register(); err != nil {
		appLog.Fatal("Failed to register metrics", err)
	}

	// Load source data
	data, err := repository.LoadCatalogData(cfg.DataDir, appLog)
	if err != nil {
		appLog.Fatal("Failed to load catalog data", err, "data_dir", cfg.DataDir)
	}
	repos := &repository.Repositories{
		Catalog:      repository.NewCatalogRepository(data, time.Now),
		Transactions: repository.NewTransactionRepository(time.Now),
	}

	thresholds, err := scoring.LoadThresholds(cfg.ScoringConfigFile)
	if err != nil {
		appLog.Fatal("Failed to load scoring thresholds", err, "file", cfg.ScoringConfigFile)
	}

	svcs := services.NewServices(repos, cfg, services.Dependencies{
		Engine:   scoring.NewEngine(thresholds, cfg.Clock()),
		Recorder: m,
		Logger:   appLog,
	})

	startAlertPipeline(cfg, svcs.Alerts, appLog)

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.GetTrustedProxies()); err != nil {
		appLog.Fatal("Invalid trusted proxies", err)
	}

	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggingMiddleware(appLog))
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.CORSMiddleware(cfg))
	r.Use(middleware.InputValidationMiddleware(cfg.MaxRequestSize))
	r.Use(m.Middleware())

	// Add rate limiting in production
	if cfg.EnableRateLimit {
		r.Use(middleware.RateLimitingMiddleware())
	}

	api.SetupRoutes(r, svcs, m)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLog.Info("Server starting", "port", cfg.Port, "env", cfg.Environment, "ai_provider", cfg.AIProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutdown signal received")

	if svcs.Alerts.IsRunning() {
		if err := svcs.Alerts.Stop(); err != nil {
			appLog.Error("Error stopping alert pipeline", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLog.Error("Server forced to shutdown", err)
	}
	svcs.Chat.Close()
	appLog.Info("Server stopped")
}

// startAlertPipeline refreshes stored alerts at startup and schedules the
// periodic refresh when configured. Without either the source alerts are served.
func startAlertPipeline(cfg *config.Config, pipeline *services.AlertPipeline, appLog logger.Logger) {
	pipelineConfig := services.DefaultPipelineConfig()

	if cfg.AlertRefreshMinutes > 0 {
		// Start runs the first cycle immediately
		pipelineConfig.IntervalMinutes = cfg.AlertRefreshMinutes
		if err := pipeline.Start(pipelineConfig); err != nil {
			appLog.Fatal("Failed to start alert pipeline", err)
		}
		return
	}

	if cfg.RefreshAlertsOnStart {
		stats, err := pipeline.RunOnce(context.Background(), pipelineConfig)
		if err != nil {
			appLog.Fatal("Initial alert refresh failed", err)
		}
		appLog.Info("Initial alert refresh completed", "summary", stats.Summary())
	}
}
