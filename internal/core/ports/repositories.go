package ports

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a PersistenceStore when a key is absent.
var ErrNotFound = errors.New("key not found")

// PersistenceStore retains values across process restarts. Values are opaque.
type PersistenceStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// Pinger is implemented by stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
