// Package cli provides common initialization shared by cmd/finbot,
// cmd/finbot-server, and cmd/finbot-worker.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finbot/internal/cache"
	"finbot/internal/config"
	"finbot/internal/explain"
	applog "finbot/internal/log"
	"finbot/internal/rules"
	"finbot/internal/storage"
)

// SetupLogger creates the process logger at the given level, tags it with
// component, and installs it as the slog default.
func SetupLogger(level, component string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Level = applog.ParseLevel(level)
	cfg.Component = component
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are logged and otherwise ignored; the file is optional in production.
func LoadEnvFile(logger *applog.Logger) {
	if err := config.LoadEnvFile(""); err != nil {
		logger.Warn("Ignoring unreadable .env file", applog.FieldError, err)
	}
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// LoadRules reads the rules file, or returns the built-in tables when path
// is empty.
func LoadRules(logger *applog.Logger, path string) (*rules.Rules, error) {
	if path == "" {
		return rules.Default(), nil
	}
	r, err := rules.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load rules %s: %w", path, err)
	}
	logger.Info("Rules loaded", "path", path, "goals", len(r.Goals()))
	return r, nil
}

// OpenArchive opens the SQLite report archive. A nil repository and nil
// error mean archiving is disabled.
func OpenArchive(logger *applog.Logger, dbPath string) (*storage.ReportRepository, error) {
	if dbPath == "" {
		logger.Info("Report archive disabled")
		return nil, nil
	}
	repo, err := storage.NewReportRepository(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open report archive %s: %w", dbPath, err)
	}
	logger.Info("Report archive ready", "path", dbPath)
	return repo, nil
}

// NewExplainer builds the explanation provider from cfg. It returns nil when
// no API key is set, which makes the analyzer use the fallback text. When
// manager is non-nil the response cache is registered for periodic cleanup.
func NewExplainer(cfg *config.Config, manager *cache.Manager, logger *applog.Logger) explain.Provider {
	if cfg.AnthropicAPIKey == "" {
		logger.Info("No explanation provider configured, using fallback text")
		return nil
	}
	provider := explain.NewAnthropic(cfg.AnthropicAPIKey, cfg.ExplainModel)
	responses := cache.NewLRUCache[string](cfg.ExplainCacheSize, cfg.ExplainCacheTTL)
	if manager != nil {
		manager.Register(responses)
	}
	logger.Info("Explanation provider ready",
		applog.FieldProvider, "anthropic",
		applog.FieldModel, provider.Model(),
		"cache_size", cfg.ExplainCacheSize)
	return explain.NewCached(provider, responses, cfg.ExplainTimeout)
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}

		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup ran.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
