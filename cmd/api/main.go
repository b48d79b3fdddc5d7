package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	api "todoitems/internal/adapter/http"
	"todoitems/internal/adapter/telemetry"
	"todoitems/pkg/config"
	"todoitems/pkg/logger"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()

	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	appLogger, err := logger.New(logger.Config{
		Service:  cfg.AppName,
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})

	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	defer appLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.NewContainer(ctx, telemetry.Config{
		ServiceName:    cfg.AppName,
		ServiceVersion: version,
		Environment:    cfg.Environment,
		MetricsPort:    cfg.Telemetry.MetricsPort,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
	}, appLogger)

	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()

		if err := tel.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("Failed to shut down telemetry", zap.Error(err))
		}
	}()

	return api.StartServer(ctx, cfg, appLogger, tel)
}
