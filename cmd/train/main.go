package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/realslimshanky/Pricy/config"
	"github.com/realslimshanky/Pricy/services"
	"github.com/realslimshanky/Pricy/storage"
	"github.com/realslimshanky/Pricy/utils"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ================== Bootstrap ====================
	cfg, err := config.LoadTrain()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return 1
	}
	logger, err := utils.NewLogger(cfg.Log.Level, cfg.Log.Format, "pricy-train")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Nightly Price Model Training")
	logger.Info("Dataset: %s | Model: %s | Holdout: %.0f%% (seed %d)",
		cfg.DatasetPath, cfg.ModelPath, cfg.TestFraction*100, cfg.SplitSeed)

	// =================== Optional sinks ========================================
	opts := services.TrainOptions{TestFraction: cfg.TestFraction, SplitSeed: cfg.SplitSeed}

	if cfg.DatabaseURL != "" {
		pgWriter, err := storage.NewPostgresWriter(cfg.DatabaseURL, cfg.DBRetries, logger)
		if err != nil {
			logger.Error("Cannot connect to PostgreSQL: %v", err)
			return 1
		}
		defer func() { _ = pgWriter.Close() }()

		if err := pgWriter.CreateTable(); err != nil {
			logger.Error("Failed to create DB table: %v", err)
			return 1
		}
		opts.CleanSink = pgWriter
	}
	if cfg.CleanCSVPath != "" {
		opts.FrameSink = storage.NewCSVWriter(cfg.CleanCSVPath, logger)
	}

	// =============== Dataset ===================================
	rawListings, err := storage.NewCSVReader(cfg.DatasetPath, logger).ReadRawListings()
	if err != nil {
		logger.Error("Failed to read dataset: %v", err)
		return 1
	}

	// =========== Training ======================
	result, err := services.NewTrainer(logger, opts).Train(ctx, rawListings, cfg.ModelPath)
	if err != nil {
		if errors.Is(err, services.ErrEmptyTrainingSet) {
			logger.Error("Training aborted: every listing is missing at least one numeric column")
		}
		logger.Error("Training failed: %v", err)
		return 1
	}

	// ==== Insights ============================
	services.PrintInsightReport(os.Stdout, result.Insights)
	services.PrintEvaluation(os.Stdout, result.Evaluation)

	if cfg.PlotPath != "" {
		title := "Predicted vs actual (" + result.Evaluation[len(result.Evaluation)-1].Split + ")"
		if err := services.PlotPredictions(cfg.PlotPath, title, result.Actual, result.Predicted); err != nil {
			logger.Error("Failed to write evaluation chart: %v", err)
		} else {
			logger.Info("Evaluation chart written to %s", cfg.PlotPath)
		}
	}

	fmt.Printf("The model is saved to %s\n", cfg.ModelPath)
	return 0
}
