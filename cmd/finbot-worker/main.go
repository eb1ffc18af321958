package main

import (
	"context"
	"errors"
	"os"
	"time"

	"finbot/internal/amqp"
	"finbot/internal/cli"
	applog "finbot/internal/log"
	"finbot/internal/worker"
)

func main() {
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentWorker)
	cli.LoadEnvFile(logger)
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel, applog.ComponentWorker)

	logger.Info("Starting finbot-worker")

	if !cfg.ArchiveDurable() || !cfg.EventsEnabled() {
		logger.Error("The worker needs both SQLITE_DB_PATH and AMQP_URL")
		os.Exit(1)
	}

	repo, err := cli.OpenArchive(logger, cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open report archive", applog.FieldError, err)
		os.Exit(1)
	}
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()
	amqpClient.SetLogger(logger)

	archiver := worker.NewArchiveWorker(repo)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)
	ctx = applog.NewContext(ctx, logger)

	go archiver.ReportStats(ctx, cfg.StatsInterval)

	if err := amqpClient.ConsumeReports(ctx, archiver.HandleReportCreated); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	s := archiver.Stats()
	logger.Info("Worker shutdown complete", "archived", s.Archived, "failed", s.Failed)
}
