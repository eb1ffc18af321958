package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"finbot/internal/backend"
	"finbot/internal/cache"
	"finbot/internal/cli"
	apphttp "finbot/internal/http"
	"finbot/internal/ingest"
	applog "finbot/internal/log"
	"finbot/internal/services"
)

func main() {
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentApp)
	cli.LoadEnvFile(logger)
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel, applog.ComponentApp)

	rs, err := cli.LoadRules(logger, cfg.RulesFile)
	if err != nil {
		logger.Error("Failed to load rules", applog.FieldError, err)
		os.Exit(1)
	}

	cacheManager := cache.NewManager(logger)
	explainer := cli.NewExplainer(cfg, cacheManager, logger)
	cacheManager.StartCleanup(5 * time.Minute)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid archive configuration", applog.FieldError, err)
		os.Exit(1)
	}
	archive, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize report archive", applog.FieldError, err)
		os.Exit(1)
	}

	var readiness []apphttp.Option
	for _, c := range archive.Checks {
		readiness = append(readiness, apphttp.WithReadinessCheck(c.Name, c.Fn))
	}

	var store services.ReportStore
	if archive.Store != nil {
		store = archive.Store
	}
	publisher := archive.Publisher

	reports := services.NewReportService(store, publisher)
	opts := []services.Option{services.WithExplainTimeout(cfg.ExplainTimeout)}
	if explainer != nil {
		opts = append(opts, services.WithExplainer(explainer))
	}
	if store != nil || publisher != nil {
		opts = append(opts, services.WithRecorder(reports))
	}
	analyzer := services.NewAnalyzer(rs, opts...)

	serverOpts := append([]apphttp.Option{apphttp.WithReports(reports)}, readiness...)
	if cfg.SheetsEnabled() {
		src, err := ingest.NewSheetsSource(context.Background(), cfg.GoogleSpreadsheetID, cfg.GoogleSheetRange,
			cfg.GoogleServiceAccountJSON, cfg.GoogleServiceAccountFile)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets source", applog.FieldError, err)
			os.Exit(1)
		}
		serverOpts = append(serverOpts, apphttp.WithSheetSource(src))
	}

	srv := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		MaxUploadBytes:     cfg.MaxUploadBytes,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}, analyzer, logger, serverOpts...)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		cacheManager.Stop()
		if archive.Cleanup != nil {
			if err := archive.Cleanup(); err != nil {
				logger.Error("Archive cleanup error", applog.FieldError, err)
			}
		}
	})

	logger.Info("Starting finbot server",
		"port", cfg.Port,
		"archive", archive.Kind,
		"events", publisher != nil,
		"sheets", cfg.SheetsEnabled())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
