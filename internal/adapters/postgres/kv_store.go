package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/refpoint/internal/core/ports"
	"github.com/samirrijal/refpoint/internal/pkg/metrics"
)

// KVStore implements ports.PersistenceStore on the refpoint_kv table.
type KVStore struct {
	db *DB
}

// NewKVStore creates a new KVStore.
func NewKVStore(db *DB) *KVStore {
	return &KVStore{db: db}
}

// Get returns the value stored under key.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.Pool.QueryRow(ctx, `SELECT value FROM refpoint_kv WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		metrics.ObserveStore("postgres", "get", nil)
		return nil, ports.ErrNotFound
	}
	metrics.ObserveStore("postgres", "get", err)
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set inserts or replaces the value under key.
func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO refpoint_kv (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, key, value)
	metrics.ObserveStore("postgres", "set", err)
	return err
}

// Remove deletes key if present.
func (s *KVStore) Remove(ctx context.Context, key string) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM refpoint_kv WHERE key = $1`, key)
	metrics.ObserveStore("postgres", "remove", err)
	return err
}

// Ping checks the pool can reach the server.
func (s *KVStore) Ping(ctx context.Context) error {
	return s.db.Pool.Ping(ctx)
}
