package usecases_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/samirrijal/refpoint/internal/core/domain"
	"github.com/samirrijal/refpoint/internal/core/usecases"
)

func mustPoint(t *testing.T, lat, lon float64, alt *float64) domain.GeoPoint {
	t.Helper()
	p, err := domain.NewGeoPoint(lat, lon, alt)
	if err != nil {
		t.Fatalf("NewGeoPoint(%v, %v): %v", lat, lon, err)
	}
	return p
}

func TestReferencePointStore_ComputeMissingPoints(t *testing.T) {
	ctx := context.Background()
	store := usecases.NewReferencePointStore(nil, "")

	_, err := store.ComputeBearingAndDistance()
	if !errors.Is(err, domain.ErrMissingReferencePoint) {
		t.Fatalf("expected ErrMissingReferencePoint, got %v", err)
	}
	if !strings.Contains(err.Error(), "A and B not set") {
		t.Errorf("expected both roles reported, got %q", err)
	}

	if _, err := store.SetPoint(ctx, domain.RoleA, mustPoint(t, 0, 0, nil)); err != nil {
		t.Fatalf("SetPoint: %v", err)
	}
	snap, err := store.ComputeBearingAndDistance()
	if !errors.Is(err, domain.ErrMissingReferencePoint) || !strings.Contains(err.Error(), "B not set") {
		t.Fatalf("expected B missing, got %v", err)
	}
	if snap.Result.State != domain.ResultStale {
		t.Errorf("expected result untouched (stale), got %s", snap.Result.State)
	}
	if snap.Result.BearingDegrees != nil || snap.Result.DistanceMeters != nil {
		t.Error("expected no bearing or distance")
	}
}

func TestReferencePointStore_ComputeQuarterCircle(t *testing.T) {
	ctx := context.Background()
	store := usecases.NewReferencePointStore(nil, "")
	_, _ = store.SetPoint(ctx, domain.RoleA, mustPoint(t, 0, 0, nil))
	_, _ = store.SetPoint(ctx, domain.RoleB, mustPoint(t, 0, 90, nil))

	snap, err := store.ComputeBearingAndDistance()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Result.State != domain.ResultComputed {
		t.Fatalf("expected computed, got %s", snap.Result.State)
	}
	if math.Abs(*snap.Result.BearingDegrees-90) > 1e-9 {
		t.Errorf("expected bearing 90, got %f", *snap.Result.BearingDegrees)
	}
	if math.Abs(*snap.Result.DistanceMeters-10007543.398) > 1 {
		t.Errorf("expected ~10007543 m, got %f", *snap.Result.DistanceMeters)
	}
}

func TestReferencePointStore_SetPointInvalidatesResult(t *testing.T) {
	ctx := context.Background()
	store := usecases.NewReferencePointStore(nil, "")
	_, _ = store.SetPoint(ctx, domain.RoleA, mustPoint(t, 39.9042, 116.4074, nil))
	_, _ = store.SetPoint(ctx, domain.RoleB, mustPoint(t, 31.2304, 121.4737, nil))
	if _, err := store.ComputeBearingAndDistance(); err != nil {
		t.Fatalf("compute: %v", err)
	}

	snap, err := store.SetPoint(ctx, domain.RoleB, mustPoint(t, 30, 120, nil))
	if err != nil {
		t.Fatalf("SetPoint: %v", err)
	}
	if snap.Result.State != domain.ResultStale {
		t.Errorf("expected stale, got %s", snap.Result.State)
	}
	if snap.Result.BearingDegrees != nil || snap.Result.DistanceMeters != nil {
		t.Error("expected bearing and distance cleared after SetPoint")
	}
}

func TestReferencePointStore_AltitudeDelta(t *testing.T) {
	ctx := context.Background()
	store := usecases.NewReferencePointStore(nil, "")

	snap, _ := store.SetPoint(ctx, domain.RoleA, mustPoint(t, 10, 10, domain.Float(100)))
	if snap.Result.AltitudeDeltaMeters != nil {
		t.Fatal("expected no altitude delta with only A set")
	}

	snap, _ = store.SetPoint(ctx, domain.RoleB, mustPoint(t, 10.001, 10.001, domain.Float(150)))
	if snap.Result.AltitudeDeltaMeters == nil || *snap.Result.AltitudeDeltaMeters != 50 {
		t.Fatalf("expected altitude delta 50, got %v", snap.Result.AltitudeDeltaMeters)
	}

	// A tap carries no altitude.
	snap, _ = store.SetPoint(ctx, domain.RoleB, mustPoint(t, 10.002, 10.002, nil))
	if snap.Result.AltitudeDeltaMeters != nil {
		t.Errorf("expected altitude delta cleared, got %v", *snap.Result.AltitudeDeltaMeters)
	}
}

func TestReferencePointStore_CoincidentPoints(t *testing.T) {
	ctx := context.Background()
	store := usecases.NewReferencePointStore(nil, "")
	_, _ = store.SetPoint(ctx, domain.RoleA, mustPoint(t, 45, 7, nil))
	_, _ = store.SetPoint(ctx, domain.RoleB, mustPoint(t, 45, 7, nil))

	snap, err := store.ComputeBearingAndDistance()
	if !errors.Is(err, domain.ErrBearingUndefined) {
		t.Fatalf("expected ErrBearingUndefined, got %v", err)
	}
	if snap.Result.BearingDegrees != nil {
		t.Error("expected no bearing")
	}
	if snap.Result.DistanceMeters == nil || *snap.Result.DistanceMeters != 0 {
		t.Errorf("expected distance 0, got %v", snap.Result.DistanceMeters)
	}
}

func TestReferencePointStore_ClearPoint(t *testing.T) {
	ctx := context.Background()
	persist := newMockPersistence()
	store := usecases.NewReferencePointStore(persist, "s:")
	_, _ = store.SetPoint(ctx, domain.RoleA, mustPoint(t, 1, 1, domain.Float(1)))
	_, _ = store.SetPoint(ctx, domain.RoleB, mustPoint(t, 2, 2, domain.Float(2)))
	_, _ = store.ComputeBearingAndDistance()

	snap, err := store.ClearPoint(ctx, domain.RoleA)
	if err != nil {
		t.Fatalf("ClearPoint: %v", err)
	}
	if snap.PointA != nil || snap.PointB == nil {
		t.Fatal("expected only A cleared")
	}
	if snap.Result.State != domain.ResultUnset || snap.Result.AltitudeDeltaMeters != nil {
		t.Errorf("expected all derived results cleared, got %+v", snap.Result)
	}
	if persist.has("s:pointA") {
		t.Error("expected pointA removed from persistence")
	}
	if !persist.has("s:pointB") {
		t.Error("expected pointB kept in persistence")
	}
}

func TestReferencePointStore_ClearAll(t *testing.T) {
	ctx := context.Background()
	persist := newMockPersistence()
	store := usecases.NewReferencePointStore(persist, "s:")
	_, _ = store.SetPoint(ctx, domain.RoleA, mustPoint(t, 1, 1, nil))
	_, _ = store.SetPoint(ctx, domain.RoleB, mustPoint(t, 2, 2, nil))

	snap, err := store.ClearAll(ctx)
	if err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if snap.PointA != nil || snap.PointB != nil {
		t.Error("expected both points cleared")
	}
	if persist.has("s:pointA") || persist.has("s:pointB") {
		t.Error("expected persisted points removed")
	}
}

func TestReferencePointStore_RejectsInvalidCoordinate(t *testing.T) {
	store := usecases.NewReferencePointStore(nil, "")
	_, err := store.SetPoint(context.Background(), domain.RoleA, domain.GeoPoint{Lat: 91, Lon: 0})
	if !errors.Is(err, domain.ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
	}
	if store.Snapshot().PointA != nil {
		t.Error("expected A to stay unset")
	}
}

func TestReferencePointStore_PersistenceFailureKeepsMemory(t *testing.T) {
	persist := newMockPersistence()
	persist.setFn = func(ctx context.Context, key string, value []byte) error {
		return errors.New("disk full")
	}
	store := usecases.NewReferencePointStore(persist, "s:")

	snap, err := store.SetPoint(context.Background(), domain.RoleA, mustPoint(t, 5, 5, nil))
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if snap.PointA == nil {
		t.Error("expected A set in memory")
	}
}

func TestReferencePointStore_Restore(t *testing.T) {
	ctx := context.Background()
	persist := newMockPersistence()
	first := usecases.NewReferencePointStore(persist, "s:")
	_, _ = first.SetPoint(ctx, domain.RoleA, mustPoint(t, 39.9042, 116.4074, domain.Float(44)))
	_, _ = first.SetPoint(ctx, domain.RoleB, mustPoint(t, 31.2304, 121.4737, domain.Float(4)))

	second := usecases.NewReferencePointStore(persist, "s:")
	if err := second.Restore(ctx); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	snap := second.Snapshot()
	if snap.PointA == nil || snap.PointB == nil {
		t.Fatal("expected both points restored")
	}
	if snap.PointA.Lat != 39.9042 || *snap.PointA.Altitude != 44 {
		t.Errorf("unexpected A: %v", snap.PointA)
	}
	if snap.Result.State != domain.ResultStale {
		t.Errorf("expected stale after restore, got %s", snap.Result.State)
	}
	if snap.Result.AltitudeDeltaMeters == nil || *snap.Result.AltitudeDeltaMeters != -40 {
		t.Errorf("expected altitude delta -40, got %v", snap.Result.AltitudeDeltaMeters)
	}
}

func TestReferencePointStore_RestoreDropsCorruptEntry(t *testing.T) {
	ctx := context.Background()
	persist := newMockPersistence()
	persist.data["s:pointA"] = []byte("{not json")
	persist.data["s:pointB"] = []byte(`{"latitude":120,"longitude":0,"altitude":null}`)

	store := usecases.NewReferencePointStore(persist, "s:")
	if err := store.Restore(ctx); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	snap := store.Snapshot()
	if snap.PointA != nil || snap.PointB != nil {
		t.Error("expected corrupt entries dropped")
	}
	if snap.Result.State != domain.ResultUnset {
		t.Errorf("expected unset, got %s", snap.Result.State)
	}
	if persist.has("s:pointA") || persist.has("s:pointB") {
		t.Error("expected corrupt entries removed from persistence")
	}
}

func TestReferencePointStore_SnapshotIsCopy(t *testing.T) {
	store := usecases.NewReferencePointStore(nil, "")
	_, _ = store.SetPoint(context.Background(), domain.RoleA, mustPoint(t, 1, 1, domain.Float(10)))

	snap := store.Snapshot()
	*snap.PointA.Altitude = 999

	if got := *store.Snapshot().PointA.Altitude; got != 10 {
		t.Errorf("expected stored altitude 10, got %f", got)
	}
}
