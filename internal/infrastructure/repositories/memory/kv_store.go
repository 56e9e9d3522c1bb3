package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"throttlelab/internal/core/domain"
	"throttlelab/internal/core/ports"
)

// MemoryKVStore keeps JSON-encoded values in a map. Nothing survives the
// process, so it is meant for tests and dry runs.
type MemoryKVStore struct {
	values map[string][]byte
	mu     sync.RWMutex
}

func NewMemoryKVStore() *MemoryKVStore {
	return &MemoryKVStore{
		values: make(map[string][]byte),
	}
}

var _ ports.KVStore = (*MemoryKVStore)(nil)

func (s *MemoryKVStore) Get(ctx context.Context, key string, dest any) error {
	s.mu.RLock()
	data, exists := s.values[key]
	s.mu.RUnlock()

	if !exists {
		return domain.ErrKeyNotFound
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

func (s *MemoryKVStore) Set(ctx context.Context, key string, value any) error {
	return s.SetAll(ctx, []domain.Entry{{Key: key, Value: value}})
}

func (s *MemoryKVStore) SetAll(ctx context.Context, entries []domain.Entry) error {
	encoded := make(map[string][]byte, len(entries))
	for _, e := range entries {
		data, err := json.Marshal(e.Value)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", e.Key, err)
		}
		encoded[e.Key] = data
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, data := range encoded {
		s.values[key] = data
	}
	return nil
}

func (s *MemoryKVStore) Ping(ctx context.Context) error {
	return nil
}

// Keys returns the stored keys, for inspection in tests and the CLI.
func (s *MemoryKVStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.values))
	for key := range s.values {
		keys = append(keys, key)
	}
	return keys
}
