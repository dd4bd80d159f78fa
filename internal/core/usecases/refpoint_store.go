package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/samirrijal/refpoint/internal/core/domain"
	"github.com/samirrijal/refpoint/internal/core/ports"
	"github.com/samirrijal/refpoint/internal/pkg/geospatial"
)

// ReferencePointStore holds the two reference points and owns their derived
// result. Every mutation recomputes the altitude delta and invalidates the
// bearing/distance pair, which only ComputeBearingAndDistance fills again.
type ReferencePointStore struct {
	persist ports.PersistenceStore
	prefix  string

	mu      sync.RWMutex
	a, b    *domain.GeoPoint
	result  domain.DerivedResult
	version uint64
}

// NewReferencePointStore creates an empty store. persist may be nil, in which
// case points live only in memory. Keys are written as prefix+"pointA" etc.
func NewReferencePointStore(persist ports.PersistenceStore, prefix string) *ReferencePointStore {
	return &ReferencePointStore{
		persist: persist,
		prefix:  prefix,
		result:  domain.DerivedResult{State: domain.ResultUnset},
	}
}

// Restore loads previously persisted points. Undecodable entries are dropped.
func (s *ReferencePointStore) Restore(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, role := range domain.Roles {
		key := s.key(role)
		data, err := s.persist.Get(ctx, key)
		if errors.Is(err, ports.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("restore %s: %w", key, err)
		}

		var p domain.GeoPoint
		if err := json.Unmarshal(data, &p); err == nil {
			p, err = p.Validate()
			if err == nil {
				s.setSlot(role, &p)
				continue
			}
		}
		slog.WarnContext(ctx, "dropping unreadable reference point", "key", key)
		_ = s.persist.Remove(ctx, key)
	}

	s.result = domain.DerivedResult{
		State:               domain.ResultUnset,
		AltitudeDeltaMeters: altitudeDelta(s.a, s.b),
	}
	if s.a != nil || s.b != nil {
		s.result.State = domain.ResultStale
	}
	s.version++
	return nil
}

// SetPoint atomically replaces the point for role. The returned snapshot
// reflects the new state even when persisting it fails.
func (s *ReferencePointStore) SetPoint(ctx context.Context, role domain.Role, p domain.GeoPoint) (domain.Snapshot, error) {
	p, err := p.Validate()
	if err != nil {
		return s.Snapshot(), err
	}
	if err := checkRole(role); err != nil {
		return s.Snapshot(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.setSlot(role, &p)
	s.result = domain.DerivedResult{
		State:               domain.ResultStale,
		AltitudeDeltaMeters: altitudeDelta(s.a, s.b),
	}
	s.version++
	snap := s.snapshotLocked()

	if s.persist != nil {
		data, err := json.Marshal(p)
		if err != nil {
			return snap, fmt.Errorf("%w: encode %s: %w", domain.ErrPersistence, role.StorageKey(), err)
		}
		if err := s.persist.Set(ctx, s.key(role), data); err != nil {
			return snap, fmt.Errorf("%w: store %s: %w", domain.ErrPersistence, role.StorageKey(), err)
		}
	}
	return snap, nil
}

// ClearPoint unsets one point, clears all derived results and forgets the
// persisted copy.
func (s *ReferencePointStore) ClearPoint(ctx context.Context, role domain.Role) (domain.Snapshot, error) {
	if err := checkRole(role); err != nil {
		return s.Snapshot(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.setSlot(role, nil)
	s.result = domain.DerivedResult{State: domain.ResultUnset}
	s.version++
	return s.snapshotLocked(), s.remove(ctx, role)
}

// ClearAll unsets both points and clears every derived result.
func (s *ReferencePointStore) ClearAll(ctx context.Context) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.a, s.b = nil, nil
	s.result = domain.DerivedResult{State: domain.ResultUnset}
	s.version++

	var errs []error
	for _, role := range domain.Roles {
		if err := s.remove(ctx, role); err != nil {
			errs = append(errs, err)
		}
	}
	return s.snapshotLocked(), errors.Join(errs...)
}

// ComputeBearingAndDistance derives bearing and distance from A to B.
//
// Without both points it returns ErrMissingReferencePoint and leaves the
// result untouched. A degenerate bearing returns ErrBearingUndefined but the
// distance is still recorded.
func (s *ReferencePointStore) ComputeBearingAndDistance() (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.a == nil || s.b == nil {
		return s.snapshotLocked(), fmt.Errorf("%w: %s", domain.ErrMissingReferencePoint, s.missingLocked())
	}

	a, b := s.a, s.b
	bearing := geospatial.InitialBearing(a.Lat, a.Lon, b.Lat, b.Lon)
	distance := geospatial.Haversine(a.Lat, a.Lon, b.Lat, b.Lon)

	result := domain.DerivedResult{
		State:               domain.ResultComputed,
		AltitudeDeltaMeters: altitudeDelta(a, b),
	}
	if isFinite(distance) {
		result.DistanceMeters = &distance
	}

	var err error
	if isFinite(bearing) {
		result.BearingDegrees = &bearing
	} else {
		err = domain.ErrBearingUndefined
	}

	s.result = result
	s.version++
	return s.snapshotLocked(), err
}

// Snapshot returns a copy of the current state.
func (s *ReferencePointStore) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *ReferencePointStore) snapshotLocked() domain.Snapshot {
	snap := domain.Snapshot{
		Result: domain.DerivedResult{
			State:               s.result.State,
			BearingDegrees:      cloneFloat(s.result.BearingDegrees),
			DistanceMeters:      cloneFloat(s.result.DistanceMeters),
			AltitudeDeltaMeters: cloneFloat(s.result.AltitudeDeltaMeters),
		},
		Version: s.version,
	}
	if s.a != nil {
		a := s.a.Clone()
		snap.PointA = &a
	}
	if s.b != nil {
		b := s.b.Clone()
		snap.PointB = &b
	}
	return snap
}

func (s *ReferencePointStore) missingLocked() string {
	switch {
	case s.a == nil && s.b == nil:
		return "A and B not set"
	case s.a == nil:
		return "A not set"
	default:
		return "B not set"
	}
}

func (s *ReferencePointStore) setSlot(role domain.Role, p *domain.GeoPoint) {
	if role == domain.RoleA {
		s.a = p
	} else {
		s.b = p
	}
}

func (s *ReferencePointStore) remove(ctx context.Context, role domain.Role) error {
	if s.persist == nil {
		return nil
	}
	if err := s.persist.Remove(ctx, s.key(role)); err != nil && !errors.Is(err, ports.ErrNotFound) {
		return fmt.Errorf("%w: remove %s: %w", domain.ErrPersistence, role.StorageKey(), err)
	}
	return nil
}

func (s *ReferencePointStore) key(role domain.Role) string {
	return s.prefix + role.StorageKey()
}

// altitudeDelta is B minus A, defined only when both altitudes are known.
func altitudeDelta(a, b *domain.GeoPoint) *float64 {
	if a == nil || b == nil || !a.HasAltitude() || !b.HasAltitude() {
		return nil
	}
	d := *b.Altitude - *a.Altitude
	return &d
}

func checkRole(role domain.Role) error {
	if role != domain.RoleA && role != domain.RoleB {
		return fmt.Errorf("unknown reference point %q", role)
	}
	return nil
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
