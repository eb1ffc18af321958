package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP Server
	Port               string
	MaxUploadBytes     int64
	RateLimitPerMinute int

	// Logging
	LogLevel string

	// Rules
	RulesFile string

	// Report archive: none, memory or sqlite. Empty picks sqlite when a
	// database path is set.
	ArchiveBackend string
	SQLiteDBPath   string
	ArchiveMaxSize int

	// AMQP; empty URL disables report events
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Explanation provider
	AnthropicAPIKey  string
	ExplainModel     string
	ExplainTimeout   time.Duration
	ExplainCacheSize int
	ExplainCacheTTL  time.Duration

	// Google Sheets input
	GoogleSpreadsheetID      string
	GoogleSheetRange         string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	// Worker
	StatsInterval time.Duration
}

// LoadEnvFile loads variables from path (".env" when empty) without
// overriding the environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

func Load() *Config {
	cfg := &Config{
		Port:               getEnv("PORT", "8081"),
		MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 30),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		RulesFile: getEnv("FINBOT_RULES_FILE", ""),

		ArchiveBackend: getEnv("ARCHIVE_BACKEND", ""),
		SQLiteDBPath:   getEnv("SQLITE_DB_PATH", ""),
		ArchiveMaxSize: getEnvInt("ARCHIVE_MEMORY_SIZE", 1000),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finbot"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "report_archive"),

		AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),
		ExplainModel:     getEnv("EXPLAIN_MODEL", ""),
		ExplainTimeout:   getEnvDuration("EXPLAIN_TIMEOUT", 10*time.Second),
		ExplainCacheSize: getEnvInt("EXPLAIN_CACHE_SIZE", 256),
		ExplainCacheTTL:  getEnvDuration("EXPLAIN_CACHE_TTL", time.Hour),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetRange:         getEnv("GOOGLE_SHEET_RANGE", "Expenses"),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),

		StatsInterval: getEnvDuration("WORKER_STATS_INTERVAL", 5*time.Minute),
	}

	return cfg
}

// ArchiveKind resolves the configured archive backend.
func (c *Config) ArchiveKind() string {
	kind := strings.ToLower(strings.TrimSpace(c.ArchiveBackend))
	if kind != "" {
		return kind
	}
	if c.SQLiteDBPath != "" {
		return "sqlite"
	}
	return "none"
}

// ArchiveEnabled reports whether reports are archived at all.
func (c *Config) ArchiveEnabled() bool { return c.ArchiveKind() != "none" }

// ArchiveDurable reports whether archived reports survive a restart.
func (c *Config) ArchiveDurable() bool { return c.ArchiveKind() == "sqlite" }

// EventsEnabled reports whether report events are published over AMQP.
func (c *Config) EventsEnabled() bool { return c.AMQPURL != "" }

// SheetsEnabled reports whether a Google Sheets source is configured.
func (c *Config) SheetsEnabled() bool { return c.GoogleSpreadsheetID != "" }

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.MaxUploadBytes < 1024 {
		errors = append(errors, fmt.Sprintf("invalid max upload size %d: must be at least 1024 bytes", c.MaxUploadBytes))
	}
	if c.RateLimitPerMinute < 0 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must not be negative", c.RateLimitPerMinute))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	if c.RulesFile != "" {
		if _, err := os.Stat(c.RulesFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("rules file does not exist: %s", c.RulesFile))
		}
	}

	switch c.ArchiveKind() {
	case "none":
	case "memory":
		if c.ArchiveMaxSize < 1 {
			errors = append(errors, fmt.Sprintf("invalid archive memory size %d: must be at least 1", c.ArchiveMaxSize))
		}
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path is required for sqlite archive backend")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid archive backend '%s': must be one of none, memory, sqlite", c.ArchiveBackend))
	}

	if c.SQLiteDBPath != "" {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.ExplainTimeout < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid explain timeout %v: must be at least 100ms", c.ExplainTimeout))
	} else if c.ExplainTimeout > 2*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid explain timeout %v: must be at most 2 minutes", c.ExplainTimeout))
	}
	if c.ExplainCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid explain cache size %d: must be at least 1", c.ExplainCacheSize))
	}
	if c.ExplainCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid explain cache ttl %v: must not be negative", c.ExplainCacheTTL))
	}

	if c.GoogleSpreadsheetID != "" {
		if c.GoogleSheetRange == "" {
			errors = append(errors, "Google Sheet range is required when a spreadsheet ID is set")
		}
		hasFile := c.GoogleServiceAccountFile != ""
		if !hasFile && c.GoogleServiceAccountJSON == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for Google Sheets")
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.StatsInterval < 0 {
		errors = append(errors, fmt.Sprintf("invalid worker stats interval %v: must not be negative", c.StatsInterval))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
