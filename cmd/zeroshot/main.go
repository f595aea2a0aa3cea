package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/krywicki/zeroshot/internal/adapter/inference"
	"github.com/krywicki/zeroshot/internal/adapter/presenter"
	"github.com/krywicki/zeroshot/internal/infrastructure/config"
	"github.com/krywicki/zeroshot/internal/infrastructure/logger"
	"github.com/krywicki/zeroshot/internal/infrastructure/resource"
	"github.com/krywicki/zeroshot/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// Cancel downloads and inference on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := []resource.Option{resource.WithLogger(log)}
	if cfg.Cache.Progress {
		opts = append(opts, resource.WithProgress(os.Stderr))
	}
	resolver := resource.NewResolver(cfg.Cache.Dir, opts...)

	client := inference.NewClient(cfg.Inference.URL, cfg.Inference.Timeout)
	loader := inference.NewLoader(resolver, client, log)

	uc := usecase.NewZeroShotUsecase(loader, presenter.NewText(), os.Stdout, log)
	if err := uc.Run(ctx, usecase.DemoInput()); err != nil {
		log.Error("Classification failed", zap.Error(err))
		return err
	}

	return nil
}
