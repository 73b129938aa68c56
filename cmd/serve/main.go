package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/realslimshanky/Pricy/api"
	"github.com/realslimshanky/Pricy/config"
	"github.com/realslimshanky/Pricy/services"
	"github.com/realslimshanky/Pricy/utils"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ================== Bootstrap ====================
	cfg, err := config.LoadServe()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return 1
	}
	logger, err := utils.NewLogger(cfg.Log.Level, cfg.Log.Format, "pricy-serve")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	// =================== Model ========================================
	predictor, err := services.LoadPredictor(cfg.ModelPath, logger)
	if err != nil {
		logger.Error("Cannot start without a model: %v", err)
		return 1
	}

	// =============== HTTP ===================================
	handler, err := api.NewHandler(predictor, logger)
	if err != nil {
		logger.Error("Failed to build request handler: %v", err)
		return 1
	}
	server := api.NewServer(api.ServerConfig{
		Addr:            net.JoinHostPort("", cfg.Port),
		ReadTimeout:     cfg.ReadTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, api.NewRouter(handler, logger), logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		logger.Error("Server error: %v", err)
		return 1
	}
	logger.Info("Prediction service stopped")
	return 0
}
