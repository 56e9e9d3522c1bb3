package reliability

import (
	"context"

	"throttlelab/internal/core/domain"
	"throttlelab/internal/core/ports"
	"throttlelab/pkg/retry"

	"go.uber.org/zap"
)

// RetryingKVStore retries failed writes against the wrapped store. Writes
// are plain overwrites, so repeating one is harmless.
type RetryingKVStore struct {
	store     ports.KVStore
	namespace string
	cfg       retry.Config
	logger    *zap.SugaredLogger
}

func NewRetryingKVStore(store ports.KVStore, namespace string, cfg retry.Config, logger *zap.SugaredLogger) *RetryingKVStore {
	// Context errors mean the caller gave up; retrying would only delay the failure.
	cfg.NonRetryableErrors = append(append([]error(nil), cfg.NonRetryableErrors...), context.Canceled, context.DeadlineExceeded)

	return &RetryingKVStore{
		store:     store,
		namespace: namespace,
		cfg:       cfg,
		logger:    logger,
	}
}

var _ ports.KVStore = (*RetryingKVStore)(nil)

func (w *RetryingKVStore) Get(ctx context.Context, key string, dest any) error {
	return w.store.Get(ctx, key, dest)
}

func (w *RetryingKVStore) Set(ctx context.Context, key string, value any) error {
	return w.SetAll(ctx, []domain.Entry{{Key: key, Value: value}})
}

func (w *RetryingKVStore) SetAll(ctx context.Context, entries []domain.Entry) error {
	attempt := 0
	return retry.Retry(ctx, w.cfg, func(ctx context.Context) error {
		attempt++
		err := w.store.SetAll(ctx, entries)
		if err != nil {
			w.logger.Warnw("store write failed",
				"namespace", w.namespace,
				"keys", len(entries),
				"attempt", attempt,
				"error", err,
			)
		}
		return err
	})
}

func (w *RetryingKVStore) Ping(ctx context.Context) error {
	return w.store.Ping(ctx)
}
