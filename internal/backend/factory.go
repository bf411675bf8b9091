package backend

import (
	"context"
	"fmt"

	"budgetapi/internal/amqp"
	"budgetapi/internal/log"
	"budgetapi/internal/storage"
	"budgetapi/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend opens the configured store and, when an AMQP URL is set,
// a ledger event publisher. A broker that cannot be reached is logged and
// the backend continues without events.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		store storage.Store
		err   error
	)
	switch config.Type {
	case MemoryBackend:
		store = memory.New()
		f.logger.Info("Initialized memory backend")
	case SQLiteBackend:
		store, err = storage.NewSQLiteStore(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	case PostgresBackend:
		store, err = storage.NewPostgresStore(ctx, config.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres store: %w", err)
		}
		f.logger.Info("Initialized Postgres backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	result := &BackendResult{Store: store}

	if config.AMQPURL != "" {
		pub, err := amqp.NewPublisher(ctx, config.AMQPURL, config.AMQPExchange, config.AMQPRoutingKey, f.logger)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP publisher, continuing without ledger events",
				log.FieldError, err.Error())
		} else {
			result.Publisher = pub
			f.logger.Info("Initialized AMQP publisher",
				"exchange", config.AMQPExchange,
				"routing_key", config.AMQPRoutingKey)
		}
	}

	result.Cleanup = store.Close
	return result, nil
}
