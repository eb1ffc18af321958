package backend

import (
	"context"
	"errors"
	"fmt"

	"finbot/internal/amqp"
	applog "finbot/internal/log"
	"finbot/internal/storage"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	base   *applog.Logger
	logger *applog.Logger
}

// NewFactory creates a new backend factory.
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{base: logger, logger: logger.WithComponent(applog.ComponentStorage)}
}

// CreateBackend builds the archive store for config.Kind and attaches an AMQP
// publisher when a URL is set. A broker that cannot be reached is logged and
// the backend is returned without events.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		res *Result
		err error
	)
	switch config.Kind {
	case SQLite:
		res, err = f.createSQLiteBackend(config)
	case Memory:
		res = f.createMemoryBackend(config)
	case None:
		f.logger.InfoContext(ctx, "Report archive disabled")
		res = &Result{Kind: None}
	default:
		return nil, fmt.Errorf("unsupported backend kind: %s", config.Kind)
	}
	if err != nil {
		return nil, err
	}

	if config.AMQPURL != "" {
		f.attachPublisher(ctx, res, config)
	}
	return res, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*Result, error) {
	repo, err := storage.NewReportRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &Result{
		Kind:    SQLite,
		Store:   repo,
		Checks:  []Check{{Name: "archive", Fn: repo.Ping}},
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) *Result {
	store := storage.NewMemoryStore(config.MemoryCapacity)

	f.logger.Info("Initialized memory backend", "capacity", config.MemoryCapacity)

	return &Result{
		Kind:   Memory,
		Store:  store,
		Checks: []Check{{Name: "archive", Fn: store.Ping}},
	}
}

func (f *DefaultFactory) attachPublisher(ctx context.Context, res *Result, config Config) {
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without report events",
			applog.FieldError, err)
		return
	}
	client.SetLogger(f.base)
	f.logger.InfoContext(ctx, "Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)

	res.Publisher = client
	res.Checks = append(res.Checks, Check{Name: "amqp", Fn: func(context.Context) error {
		return client.Ping()
	}})

	storeCleanup := res.Cleanup
	res.Cleanup = func() error {
		err := client.Close()
		if storeCleanup != nil {
			err = errors.Join(err, storeCleanup())
		}
		return err
	}
}
