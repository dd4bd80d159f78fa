package valkey

import (
	"context"
	"fmt"

	"github.com/valkey-io/valkey-go"

	"github.com/samirrijal/refpoint/internal/core/ports"
	"github.com/samirrijal/refpoint/internal/pkg/metrics"
)

// Store implements ports.PersistenceStore using Valkey (Redis-compatible).
// Entries never expire; reference points are kept until cleared.
type Store struct {
	client valkey.Client
}

// New creates a new Valkey store client.
func New(addr string) (*Store, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect: %w", err)
	}
	return &Store{client: client}, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client valkey.Client) *Store {
	return &Store{client: client}
}

// Get retrieves a value by key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.client.Do(ctx, s.client.B().Get().Key(key).Build()).AsBytes()
	if valkey.IsValkeyNil(err) {
		metrics.ObserveStore("valkey", "get", nil)
		return nil, ports.ErrNotFound
	}
	metrics.ObserveStore("valkey", "get", err)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Set stores a value without expiry.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	err := s.client.Do(ctx, s.client.B().Set().Key(key).Value(valkey.BinaryString(value)).Build()).Error()
	metrics.ObserveStore("valkey", "set", err)
	return err
}

// Remove deletes a key. Removing a missing key is not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	err := s.client.Do(ctx, s.client.B().Del().Key(key).Build()).Error()
	metrics.ObserveStore("valkey", "remove", err)
	return err
}

// Ping checks the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Do(ctx, s.client.B().Ping().Build()).Error()
}

// Close releases the client.
func (s *Store) Close() {
	s.client.Close()
}
