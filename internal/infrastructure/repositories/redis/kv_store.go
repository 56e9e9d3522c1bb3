package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"throttlelab/internal/core/domain"
	"throttlelab/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

type RedisKVStore struct {
	client *redis.Client
	prefix string
}

// NewRedisKVStore stores keys of one namespace under "throttlelab:<namespace>:".
func NewRedisKVStore(client *redis.Client, namespace string) *RedisKVStore {
	return &RedisKVStore{
		client: client,
		prefix: fmt.Sprintf("throttlelab:%s:", namespace),
	}
}

var _ ports.KVStore = (*RedisKVStore)(nil)

func (r *RedisKVStore) key(k string) string {
	return r.prefix + k
}

func (r *RedisKVStore) Get(ctx context.Context, key string, dest any) error {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.ErrKeyNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get %s from Redis: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

func (r *RedisKVStore) Set(ctx context.Context, key string, value any) error {
	return r.SetAll(ctx, []domain.Entry{{Key: key, Value: value}})
}

// SetAll writes the entries inside MULTI/EXEC, so either all keys change or none do.
func (r *RedisKVStore) SetAll(ctx context.Context, entries []domain.Entry) error {
	encoded := make([][]byte, len(entries))
	for i, e := range entries {
		data, err := json.Marshal(e.Value)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", e.Key, err)
		}
		encoded[i] = data
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, e := range entries {
			pipe.Set(ctx, r.key(e.Key), encoded[i], 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write %d keys to Redis: %w", len(entries), err)
	}
	return nil
}

func (r *RedisKVStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
