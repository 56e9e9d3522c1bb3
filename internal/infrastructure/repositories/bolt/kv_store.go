// Package bolt stores experiment state in a single bbolt file. Every write is
// an fsync'd transaction, so a returned nil means the value is on disk.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"throttlelab/internal/core/domain"
	"throttlelab/internal/core/ports"

	"go.etcd.io/bbolt"
)

// Open opens (or creates) the database file at path.
func Open(path string) (*bbolt.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return db, nil
}

// BoltKVStore maps one namespace onto one bucket.
type BoltKVStore struct {
	db     *bbolt.DB
	bucket []byte
}

func NewBoltKVStore(db *bbolt.DB, namespace string) (*BoltKVStore, error) {
	bucket := []byte(namespace)
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bucket %s: %w", namespace, err)
	}

	return &BoltKVStore{db: db, bucket: bucket}, nil
}

var _ ports.KVStore = (*BoltKVStore)(nil)

func (s *BoltKVStore) Get(ctx context.Context, key string, dest any) error {
	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(s.bucket).Get([]byte(key)); v != nil {
			// v is only valid inside the transaction.
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if data == nil {
		return domain.ErrKeyNotFound
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

func (s *BoltKVStore) Set(ctx context.Context, key string, value any) error {
	return s.SetAll(ctx, []domain.Entry{{Key: key, Value: value}})
}

// SetAll writes every entry in one transaction.
func (s *BoltKVStore) SetAll(ctx context.Context, entries []domain.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		for _, e := range entries {
			data, err := json.Marshal(e.Value)
			if err != nil {
				return fmt.Errorf("failed to marshal %s: %w", e.Key, err)
			}
			if err := b.Put([]byte(e.Key), data); err != nil {
				return fmt.Errorf("failed to put %s: %w", e.Key, err)
			}
		}
		return nil
	})
}

func (s *BoltKVStore) Ping(ctx context.Context) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(s.bucket) == nil {
			return fmt.Errorf("bucket %s missing", s.bucket)
		}
		return nil
	})
}
