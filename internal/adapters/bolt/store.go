package bolt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"

	"github.com/samirrijal/refpoint/internal/core/ports"
	"github.com/samirrijal/refpoint/internal/pkg/metrics"
)

var bucket = []byte("refpoint")

// Store implements ports.PersistenceStore in a local BoltDB file, for the CLI.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("bolt dir: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bolt open %s: %w", path, err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("bolt bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Get returns a copy of the value under key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucket).Get([]byte(key))
		if v == nil {
			return ports.ErrNotFound
		}
		// v is only valid inside the transaction.
		value = append([]byte(nil), v...)
		return nil
	})
	if errors.Is(err, ports.ErrNotFound) {
		metrics.ObserveStore("bolt", "get", nil)
		return nil, err
	}
	metrics.ObserveStore("bolt", "get", err)
	return value, err
}

// Set stores value under key.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), value)
	})
	metrics.ObserveStore("bolt", "set", err)
	return err
}

// Remove deletes key if present.
func (s *Store) Remove(_ context.Context, key string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Delete([]byte(key))
	})
	metrics.ObserveStore("bolt", "remove", err)
	return err
}

// Ping checks that the bucket is still readable.
func (s *Store) Ping(_ context.Context) error {
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(bucket) == nil {
			return fmt.Errorf("bolt: bucket %s missing", bucket)
		}
		return nil
	})
}

// Close releases the file lock.
func (s *Store) Close() error {
	return s.db.Close()
}
