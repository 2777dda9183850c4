package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/thereayou/matcha/internal/config"
	"github.com/thereayou/matcha/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger is not built yet
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.Build(logger.Config{
		Level:       cfg.LogLevel,
		Encoding:    cfg.LogEncoding,
		Development: cfg.LogDevelopment,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.ReplaceGlobal(log)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := NewServer(ctx, cfg)
	if err != nil {
		logger.Fatal(ctx, "server init failed", logger.ErrorField(err))
	}
	if err := srv.Run(ctx); err != nil {
		logger.Error(ctx, "server stopped with error", logger.ErrorField(err))
		os.Exit(1)
	}
}
