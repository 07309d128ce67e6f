package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/terrence-gonsalves/truespend/internal/amqp"
	"github.com/terrence-gonsalves/truespend/internal/storage"
	"github.com/terrence-gonsalves/truespend/internal/store/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	amqpClient := f.connectAMQP(config)

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", amqpClient != nil)

	return &Result{
		Store: repo,
		AMQP:  amqpClient,
		Cleanup: func() error {
			if amqpClient != nil {
				amqpClient.Close()
			}
			return repo.Close()
		},
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*Result, error) {
	st := memory.New()

	amqpClient := f.connectAMQP(config)

	f.logger.Info("Initialized memory backend", "amqp_enabled", amqpClient != nil)

	return &Result{
		Store: st,
		AMQP:  amqpClient,
		Cleanup: func() error {
			if amqpClient != nil {
				return amqpClient.Close()
			}
			return nil
		},
	}, nil
}

// connectAMQP returns nil when no URL is configured or the broker is
// unreachable; event publishing is best effort.
func (f *DefaultFactory) connectAMQP(config Config) *amqp.Client {
	if config.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		return nil
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}
