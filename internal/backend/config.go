package backend

import (
	"fmt"

	"finbot/internal/config"
)

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	kind := Kind(appConfig.ArchiveKind())
	if !kind.IsValid() {
		return Config{}, fmt.Errorf("invalid archive backend in config: %s", appConfig.ArchiveBackend)
	}

	return Config{
		Kind:           kind,
		SQLiteDBPath:   appConfig.SQLiteDBPath,
		MemoryCapacity: appConfig.ArchiveMaxSize,
		AMQPURL:        appConfig.AMQPURL,
		AMQPExchange:   appConfig.AMQPExchange,
		AMQPQueue:      appConfig.AMQPQueue,
	}, nil
}

// Validate validates the backend configuration.
func (c Config) Validate() error {
	if !c.Kind.IsValid() {
		return fmt.Errorf("invalid backend kind: %s", c.Kind)
	}

	switch c.Kind {
	case SQLite:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case Memory:
		if c.MemoryCapacity < 0 {
			return fmt.Errorf("memory capacity must not be negative")
		}
	}

	if c.AMQPURL != "" && (c.AMQPExchange == "" || c.AMQPQueue == "") {
		return fmt.Errorf("AMQP exchange and queue are required when AMQP URL is set")
	}
	return nil
}

// Kinds returns all valid backend kinds.
func Kinds() []Kind {
	return []Kind{None, Memory, SQLite}
}

// KindStrings returns all valid backend kinds as strings.
func KindStrings() []string {
	kinds := Kinds()
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = k.String()
	}
	return out
}
