package ports

import (
	"context"

	"throttlelab/internal/core/domain"
)

// KVStore is a durable key/value namespace (settings or variables).
// Values are JSON-encoded by the implementation. A write returns only after
// the backend has acknowledged it as durable.
type KVStore interface {
	// Get decodes the value under key into dest. Missing keys return domain.ErrKeyNotFound.
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	// SetAll writes every entry or none of them.
	SetAll(ctx context.Context, entries []domain.Entry) error
	Ping(ctx context.Context) error
}
