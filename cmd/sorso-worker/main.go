package main

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"sorso/internal/amqp"
	"sorso/internal/cli"
	"sorso/internal/health"
	gfit "sorso/internal/health/google"
	"sorso/internal/health/memory"
	"sorso/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting sorso-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	store := cli.InitStore(logger, cfg.SQLiteDBPath)
	defer store.Close()

	ctx, cancel := cli.SignalContext(context.Background())
	defer cancel()

	// Sink selection: Google Fit when credentials are configured,
	// otherwise an in-memory sink so the queue still drains.
	var sink health.WaterWriter
	if cfg.HealthSyncConfigured() {
		client, err := gfit.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Fit client", "error", err)
			return
		}
		sink = client
		logger.Info("Google Fit client initialized")
	} else {
		sink = memory.New()
		logger.Info("Google Fit disabled - no OAuth client configured, using in-memory sink")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		return
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(store, sink, cfg.SyncBatchSize)

	// Catch up on rollovers journaled while the worker was down.
	logger.Info("Performing startup sync check...")
	if err := syncWorker.ProcessPending(ctx); err != nil {
		logger.Error("Startup sync check failed", "error", err)
		// Keep going; the periodic sweep retries.
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := amqpClient.ConsumeRollovers(gctx, syncWorker.HandleRollover)
		if err == context.Canceled {
			return nil
		}
		return err
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := syncWorker.ProcessPending(gctx); err != nil {
					logger.Error("Periodic sync failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		return
	}
	logger.Info("Worker shutdown complete")
}
