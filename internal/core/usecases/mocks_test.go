package usecases_test

import (
	"context"
	"sync"

	"github.com/samirrijal/refpoint/internal/core/domain"
	"github.com/samirrijal/refpoint/internal/core/ports"
)

// --- Mock PersistenceStore ---

type mockPersistence struct {
	mu       sync.Mutex
	data     map[string][]byte
	setFn    func(ctx context.Context, key string, value []byte) error
	removeFn func(ctx context.Context, key string) error
}

func newMockPersistence() *mockPersistence {
	return &mockPersistence{data: make(map[string][]byte)}
}

func (m *mockPersistence) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return v, nil
}

func (m *mockPersistence) Set(ctx context.Context, key string, value []byte) error {
	if m.setFn != nil {
		if err := m.setFn(ctx, key, value); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockPersistence) Remove(ctx context.Context, key string) error {
	if m.removeFn != nil {
		if err := m.removeFn(ctx, key); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *mockPersistence) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

// --- Mock PositioningService ---

type mockPositioning struct {
	currentPositionFn func(ctx context.Context, opts domain.PositionOptions) (*domain.Fix, error)
}

func (m *mockPositioning) CurrentPosition(ctx context.Context, opts domain.PositionOptions) (*domain.Fix, error) {
	if m.currentPositionFn != nil {
		return m.currentPositionFn(ctx, opts)
	}
	return nil, nil
}

// --- Mock AltitudeSource ---

type mockAltitude struct {
	currentAltitudeFn func(ctx context.Context, opts domain.PositionOptions) (float64, error)
}

func (m *mockAltitude) CurrentAltitude(ctx context.Context, opts domain.PositionOptions) (float64, error) {
	if m.currentAltitudeFn != nil {
		return m.currentAltitudeFn(ctx, opts)
	}
	return 0, nil
}

// --- Mock EventPublisher / NotificationService ---

type mockPublisher struct {
	mu        sync.Mutex
	snapshots []domain.Snapshot
	notices   []domain.Notice
}

func (m *mockPublisher) PublishSnapshot(ctx context.Context, sessionID string, snap domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = append(m.snapshots, snap)
	return nil
}

func (m *mockPublisher) Notify(ctx context.Context, sessionID string, n domain.Notice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notices = append(m.notices, n)
	return nil
}
