package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ajharbinger/annuity-review-api/internal/logger"
	"github.com/ajharbinger/annuity-review-api/internal/repository"
	"github.com/ajharbinger/annuity-review-api/internal/scoring"
	"github.com/ajharbinger/annuity-review-api/internal/services"
	"github.com/ajharbinger/annuity-review-api/pkg/config"
)

// Output files written next to the source data. Source files are never modified.
const (
	policyAlertsFile      = "alerts_generated.json"
	acquisitionAlertsFile = "acquisition_alerts_generated.json"
)

type batchOptions struct {
	dataDir       string
	outputDir     string
	scoringConfig string
	referenceDate string
	batchSize     int
	maxConcurrent int
	interval      int
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.New()

	opts := &batchOptions{}

	rootCmd := &cobra.Command{
		Use:   "alert-batch",
		Short: "Annuity review alert generator",
		Long:  `Recomputes policy and acquisition alerts from the source data files and writes the results as generated JSON files`,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.dataDir, "data-dir", cfg.DataDir, "directory holding the source JSON files")
	flags.StringVar(&opts.outputDir, "output", "", "directory for generated files (defaults to --data-dir)")
	flags.StringVar(&opts.scoringConfig, "config", cfg.ScoringConfigFile, "scoring thresholds YAML file")
	flags.StringVar(&opts.referenceDate, "reference-date", cfg.AlertReferenceDate, "evaluation date (YYYY-MM-DD, empty for today)")
	flags.IntVar(&opts.batchSize, "batch-size", services.DefaultPipelineConfig().BatchSize, "records per worker batch")
	flags.IntVar(&opts.maxConcurrent, "max-concurrent", services.DefaultPipelineConfig().MaxConcurrent, "concurrent batches")
	flags.IntVar(&opts.interval, "interval", 0, "rerun every N minutes until interrupted (0 runs once)")

	rootCmd.AddCommand(createScopeCmd(services.ScopePolicies, "Generate policy alerts", cfg, opts))
	rootCmd.AddCommand(createScopeCmd(services.ScopeAcquisition, "Generate acquisition alerts from client positions", cfg, opts))
	rootCmd.AddCommand(createScopeCmd(services.ScopeAll, "Generate policy and acquisition alerts", cfg, opts))

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func createScopeCmd(scope, short string, cfg *config.Config, opts *batchOptions) *cobra.Command {
	return &cobra.Command{
		Use:   scope,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd.Context(), scope, cfg, opts)
		},
	}
}

func runBatch(ctx context.Context, scope string, cfg *config.Config, opts *batchOptions) error {
	appLog := logger.New(logger.Options{Level: cfg.LogLevel, Format: "text", File: cfg.LogFile})

	cfg.AlertReferenceDate = opts.referenceDate
	thresholds, err := scoring.LoadThresholds(opts.scoringConfig)
	if err != nil {
		return err
	}
	engine := scoring.NewEngine(thresholds, cfg.Clock())

	data, err := repository.LoadCatalogData(opts.dataDir, appLog)
	if err != nil {
		return err
	}
	catalog := repository.NewCatalogRepository(data, time.Now)

	pipeline := services.NewAlertPipeline(catalog, engine, nil, appLog)
	pipelineConfig := services.PipelineConfig{
		Scope:         scope,
		BatchSize:     opts.batchSize,
		MaxConcurrent: opts.maxConcurrent,
	}

	outputDir := opts.outputDir
	if outputDir == "" {
		outputDir = opts.dataDir
	}

	runCycle := func() error {
		stats, err := pipeline.RunOnce(ctx, pipelineConfig)
		if err != nil {
			return fmt.Errorf("alert cycle failed: %w", err)
		}
		if err := writeResults(catalog, scope, outputDir); err != nil {
			return err
		}
		appLog.Info("Alert batch completed",
			"scope", scope,
			"reference_date", engine.Now().Format("2006-01-02"),
			"output_dir", outputDir,
			"summary", stats.Summary())
		return nil
	}

	if opts.interval <= 0 {
		return runCycle()
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(time.Duration(opts.interval) * time.Minute)
	defer ticker.Stop()

	appLog.Info("Alert batch scheduled", "scope", scope, "interval_minutes", opts.interval)
	for {
		if err := runCycle(); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			appLog.Error("Alert batch cycle failed", err)
		}
		select {
		case <-ctx.Done():
			appLog.Info("Alert batch stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// writeResults dumps the recomputed records for the scope
func writeResults(catalog repository.CatalogRepository, scope, outputDir string) error {
	if scope == services.ScopePolicies || scope == services.ScopeAll {
		policies, err := catalog.GetAllPolicies()
		if err != nil {
			return err
		}
		if err := repository.WriteJSONFile(filepath.Join(outputDir, policyAlertsFile), policies); err != nil {
			return err
		}
	}
	if scope == services.ScopeAcquisition || scope == services.ScopeAll {
		positions, err := catalog.GetAllPositions()
		if err != nil {
			return err
		}
		if err := repository.WriteJSONFile(filepath.Join(outputDir, acquisitionAlertsFile), positions); err != nil {
			return err
		}
	}
	return nil
}
