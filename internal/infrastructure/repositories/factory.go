package repositories

import (
	"context"
	"errors"
	"fmt"

	"throttlelab/internal/core/ports"
	"throttlelab/internal/infrastructure/reliability"
	boltrepo "throttlelab/internal/infrastructure/repositories/bolt"
	"throttlelab/internal/infrastructure/repositories/memory"
	redisrepo "throttlelab/internal/infrastructure/repositories/redis"
	"throttlelab/pkg/config"
	"throttlelab/pkg/retry"

	"github.com/redis/go-redis/v9"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// Store namespaces.
const (
	NamespaceSettings  = "settings"
	NamespaceVariables = "variables"
)

// RepositoryFactory builds the settings and variables stores for the
// configured backend.
type RepositoryFactory struct {
	backend     string
	redisClient *redis.Client
	boltDB      *bbolt.DB
	retryConfig retry.Config
	logger      *zap.SugaredLogger

	settings  ports.KVStore
	variables ports.KVStore
}

// NewRepositoryFactory connects to the configured backend. Unlike a cache,
// experiment state must be durable, so a backend that cannot be reached is
// an error rather than a silent fallback to memory.
func NewRepositoryFactory(cfg *config.Config, logger *zap.SugaredLogger) (*RepositoryFactory, error) {
	factory := &RepositoryFactory{
		backend: cfg.Storage.Backend,
		logger:  logger,
		retryConfig: retry.Config{
			Enabled:      cfg.Storage.Retry.Enabled,
			MaxAttempts:  cfg.Storage.Retry.MaxAttempts,
			InitialDelay: cfg.Storage.Retry.InitialDelay,
			MaxDelay:     cfg.Storage.Retry.MaxDelay,
			Multiplier:   2.0,
		},
	}

	switch cfg.Storage.Backend {
	case config.BackendRedis:
		client, err := redisrepo.Connect(context.Background(), redisrepo.ConnOptionsFromConfig(cfg), factory.retryConfig, logger)
		if err != nil {
			return nil, err
		}
		factory.redisClient = client
		factory.settings = redisrepo.NewRedisKVStore(client, NamespaceSettings)
		factory.variables = redisrepo.NewRedisKVStore(client, NamespaceVariables)

	case config.BackendBolt:
		db, err := boltrepo.Open(cfg.Storage.BoltPath)
		if err != nil {
			return nil, err
		}
		factory.boltDB = db
		if factory.settings, err = boltrepo.NewBoltKVStore(db, NamespaceSettings); err != nil {
			db.Close()
			return nil, err
		}
		if factory.variables, err = boltrepo.NewBoltKVStore(db, NamespaceVariables); err != nil {
			db.Close()
			return nil, err
		}

	case config.BackendMemory:
		logger.Warn("using memory stores; experiment state will not survive a restart")
		factory.settings = memory.NewMemoryKVStore()
		factory.variables = memory.NewMemoryKVStore()

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	logger.Infow("experiment stores ready", "backend", factory.backend)
	return factory, nil
}

// CreateSettingsStore returns the store for ExperimentConfig keys.
func (f *RepositoryFactory) CreateSettingsStore() ports.KVStore {
	return f.wrap(f.settings, NamespaceSettings)
}

// CreateVariablesStore returns the store for ActivationFlags keys.
func (f *RepositoryFactory) CreateVariablesStore() ports.KVStore {
	return f.wrap(f.variables, NamespaceVariables)
}

func (f *RepositoryFactory) wrap(store ports.KVStore, namespace string) ports.KVStore {
	if !f.retryConfig.Enabled {
		return store
	}
	return reliability.NewRetryingKVStore(store, namespace, f.retryConfig, f.logger)
}

// Backend names the backend in use.
func (f *RepositoryFactory) Backend() string {
	return f.backend
}

// Close releases the backend connection.
func (f *RepositoryFactory) Close() error {
	var errs []error
	if f.redisClient != nil {
		errs = append(errs, f.redisClient.Close())
		f.redisClient = nil
	}
	if f.boltDB != nil {
		errs = append(errs, f.boltDB.Close())
		f.boltDB = nil
	}
	return errors.Join(errs...)
}

// HealthCheck pings both stores.
func (f *RepositoryFactory) HealthCheck(ctx context.Context) error {
	if err := f.settings.Ping(ctx); err != nil {
		return fmt.Errorf("settings store: %w", err)
	}
	if err := f.variables.Ping(ctx); err != nil {
		return fmt.Errorf("variables store: %w", err)
	}
	return nil
}
