package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wolfman30/insurance-leadform/cmd/mainconfig"
	"github.com/wolfman30/insurance-leadform/internal/app/bootstrap"
	appconfig "github.com/wolfman30/insurance-leadform/internal/config"
	"github.com/wolfman30/insurance-leadform/pkg/logging"
)

func main() {
	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting insurance lead form server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	// Wait for interrupt signal to gracefully shutdown the server
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		stop()
		os.Exit(1)
	}
	fmt.Println("Server exited gracefully")
}

func run(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) error {
	startupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	awsCfg, err := mainconfig.LoadAWSConfig(startupCtx, cfg)
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}
	app, err := bootstrap.Build(startupCtx, cfg, bootstrap.Options{Logger: logger, AWS: awsCfg})
	if err != nil {
		return err
	}
	defer app.Close()

	return app.Serve(ctx, ":"+cfg.Port, cfg.RemoteWriteTimeout)
}
