package bolt_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/samirrijal/refpoint/internal/adapters/bolt"
	"github.com/samirrijal/refpoint/internal/core/ports"
)

func openStore(t *testing.T) (*bolt.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "refpoint.db")
	s, err := bolt.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s, path
}

func TestStore_SetGetRemove(t *testing.T) {
	ctx := context.Background()
	s, _ := openStore(t)
	defer s.Close()

	if _, err := s.Get(ctx, "pointA"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Set(ctx, "pointA", []byte(`{"latitude":1}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get(ctx, "pointA")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `{"latitude":1}` {
		t.Errorf("unexpected value %q", got)
	}
	if err := s.Remove(ctx, "pointA"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := s.Get(ctx, "pointA"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound after remove, got %v", err)
	}
	if err := s.Remove(ctx, "missing"); err != nil {
		t.Errorf("removing a missing key should succeed, got %v", err)
	}
}

func TestStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	s, path := openStore(t)
	if err := s.Set(ctx, "language", []byte("zh")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := bolt.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(ctx, "language")
	if err != nil || string(got) != "zh" {
		t.Errorf("expected zh, got %q (%v)", got, err)
	}
}
