package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"fanline/internal/config"
	"fanline/internal/domain"
	"fanline/internal/httpserver"
	"fanline/internal/sqlite"
	"fanline/internal/stream"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load(os.Getenv("FANLINE_CONFIG"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// The repository implements every persistence port.
	repo, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer repo.Close()
	logger.Info("opened store", "path", cfg.DBPath)

	broker := stream.NewBroker()

	fanout := domain.NewFanoutWriter(repo, repo, domain.FanoutConfig{
		Cap:              cfg.Fanout.Cap,
		BatchSize:        cfg.Fanout.BatchSize,
		BatchesPerSecond: cfg.Fanout.BatchesPerSecond,
		RetryDelay:       cfg.Fanout.RetryDelay(),
	}, logger)

	notifier := domain.NewNotifier(repo, broker, logger)
	service := domain.NewService(repo, repo, repo, repo, repo, fanout, notifier, logger)

	feeds := domain.NewFeedService(repo, repo, repo, domain.FeedConfig{
		DefaultLimit:   cfg.Feeds.DefaultLimit,
		MaxLimit:       cfg.Feeds.MaxLimit,
		TrendingWindow: cfg.Feeds.TrendingWindow(),
	}, logger)

	// Set up graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	wsHandler := stream.NewHandler(broker, logger)
	server := httpserver.NewServer(cfg, service, feeds, wsHandler, logger)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server exited with error", "error", err)
		}
	}()

	logger.Info("server started", "port", cfg.Port, "fanout_cap", cfg.Fanout.Cap)

	// Wait for shutdown signal
	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig)

	if err := server.Shutdown(context.Background()); err != nil {
		logger.Error("error shutting down http server", "error", err)
	}

	return nil
}
