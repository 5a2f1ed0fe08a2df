package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"sorso/internal/amqp"
	"sorso/internal/cli"
	"sorso/internal/health"
	"sorso/internal/history"
	apphttp "sorso/internal/http"
	"sorso/internal/reminder"
	"sorso/internal/storage"
	"sorso/internal/tracker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting sorso")

	cfg := cli.LoadAndValidateConfig(logger)
	store := cli.InitStore(logger, cfg.SQLiteDBPath)
	defer store.Close()

	ctx, cancel := cli.SignalContext(context.Background())
	defer cancel()

	// Seed the daily target on first run so progress fractions are
	// well-defined before the user opens settings.
	if target, err := store.GetInt(ctx, storage.KeyTargetAmount, 0); err == nil && target <= 0 {
		if err := store.SetInt(ctx, storage.KeyTargetAmount, cfg.DefaultTargetML); err != nil {
			logger.Warn("Failed to seed target amount", "error", err)
		}
	}

	// AMQP is optional: without it, rollovers stay in the local journal
	// until the worker's catch-up sweep picks them up.
	var queue health.Queue
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing journal-only", "error", err)
		} else {
			defer amqpClient.Close()
			queue = amqpClient
			logger.Info("AMQP client initialized - rollovers will sync via sorso-worker")
		}
	} else {
		logger.Info("AMQP disabled - rollovers will not sync to Google Fit")
	}

	scheduler := reminder.NewMemoryScheduler()
	notifier := reminder.NewNotifier(store, scheduler)
	hist := history.NewLog(store)
	trk := tracker.New(store, hist, notifier, health.NewPublisher(store, queue), nil)

	// Startup counts as the app becoming active.
	trk.ResetIfNeeded(ctx)

	// Idle sessions still roll over at midnight.
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				trk.ResetIfNeeded(ctx)
			}
		}
	}()

	srv := apphttp.NewServer(":"+cfg.Port, trk, hist, scheduler, store)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting sorso server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully")
}
