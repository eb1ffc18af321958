package backend

import (
	"context"

	"finbot/internal/services"
)

// Store is a report archive that can report its own health.
type Store interface {
	services.ReportStore
	Ping(ctx context.Context) error
}

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Check is a named readiness probe for one dependency of the backend.
type Check struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Result holds the archive store and event publisher built from a Config.
// Store is nil for the none kind and Publisher is nil when events are off.
type Result struct {
	Kind      Kind
	Store     Store
	Publisher services.ReportPublisher
	Checks    []Check
	Cleanup   CleanupFunc
}

// Durable reports whether archived reports survive a restart.
func (r *Result) Durable() bool { return r.Kind == SQLite }

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Kind Kind

	// sqlite
	SQLiteDBPath string

	// memory
	MemoryCapacity int

	// Optional report events for any kind.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// Kind names an archive backend.
type Kind string

const (
	None   Kind = "none"
	Memory Kind = "memory"
	SQLite Kind = "sqlite"
)

func (k Kind) String() string {
	return string(k)
}

// IsValid returns true if k is a known backend kind.
func (k Kind) IsValid() bool {
	switch k {
	case None, Memory, SQLite:
		return true
	default:
		return false
	}
}
