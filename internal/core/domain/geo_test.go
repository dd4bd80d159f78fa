package domain_test

import (
	"errors"
	"math"
	"testing"

	"github.com/samirrijal/refpoint/internal/core/domain"
)

func TestNewGeoPoint_Valid(t *testing.T) {
	p, err := domain.NewGeoPoint(39.9042, 116.4074, domain.Float(43.5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.HasAltitude() || *p.Altitude != 43.5 {
		t.Errorf("expected altitude 43.5, got %v", p.Altitude)
	}
}

func TestNewGeoPoint_Rejects(t *testing.T) {
	cases := []struct {
		name     string
		lat, lon float64
	}{
		{"nan latitude", math.NaN(), 0},
		{"inf longitude", 0, math.Inf(-1)},
		{"latitude too high", 90.0001, 0},
		{"latitude too low", -91, 0},
	}
	for _, c := range cases {
		_, err := domain.NewGeoPoint(c.lat, c.lon, nil)
		if !errors.Is(err, domain.ErrInvalidCoordinate) {
			t.Errorf("%s: expected ErrInvalidCoordinate, got %v", c.name, err)
		}
	}
}

func TestNewGeoPoint_NonFiniteAltitudeIsUnknown(t *testing.T) {
	p, err := domain.NewGeoPoint(1, 2, domain.Float(math.NaN()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.HasAltitude() {
		t.Errorf("expected unknown altitude, got %v", *p.Altitude)
	}
}

func TestNewGeoPoint_CopiesAltitude(t *testing.T) {
	alt := 10.0
	p, _ := domain.NewGeoPoint(1, 2, &alt)
	alt = 99
	if *p.Altitude != 10 {
		t.Errorf("point altitude aliased caller memory: %v", *p.Altitude)
	}
}

func TestNormalizeLongitude(t *testing.T) {
	cases := map[float64]float64{0: 0, 179.5: 179.5, 180: -180, 190: -170, -190: 170, 540: -180, -180: -180, 360: 0}
	for in, want := range cases {
		if got := domain.NormalizeLongitude(in); math.Abs(got-want) > 1e-9 {
			t.Errorf("NormalizeLongitude(%v): expected %v, got %v", in, want, got)
		}
	}
}

func TestClone_Independent(t *testing.T) {
	p, _ := domain.NewGeoPoint(1, 2, domain.Float(5))
	c := p.Clone()
	*c.Altitude = 6
	if *p.Altitude != 5 {
		t.Errorf("clone shares altitude with original")
	}
}

func TestParseRole(t *testing.T) {
	for in, want := range map[string]domain.Role{"a": domain.RoleA, "A": domain.RoleA, " b ": domain.RoleB} {
		got, err := domain.ParseRole(in)
		if err != nil || got != want {
			t.Errorf("ParseRole(%q): expected %s, got %s (%v)", in, want, got, err)
		}
	}
	if _, err := domain.ParseRole("c"); err == nil {
		t.Error("expected error for role c")
	}
	if domain.RoleB.StorageKey() != "pointB" {
		t.Errorf("unexpected storage key %s", domain.RoleB.StorageKey())
	}
}

func TestParseGeoPoint(t *testing.T) {
	p, err := domain.ParseGeoPoint("39.9042, 116.4074")
	if err != nil {
		t.Fatalf("ParseGeoPoint: %v", err)
	}
	if p.Lat != 39.9042 || p.Lon != 116.4074 || p.HasAltitude() {
		t.Errorf("unexpected point %v", p)
	}

	p, err = domain.ParseGeoPoint("31.2304,121.4737,4.5")
	if err != nil {
		t.Fatalf("ParseGeoPoint with altitude: %v", err)
	}
	if p.Altitude == nil || *p.Altitude != 4.5 {
		t.Errorf("expected altitude 4.5, got %v", p.Altitude)
	}

	for _, bad := range []string{"", "1", "a,b", "1,2,3,4", "95,0", "NaN,0"} {
		if _, err := domain.ParseGeoPoint(bad); !errors.Is(err, domain.ErrInvalidCoordinate) {
			t.Errorf("ParseGeoPoint(%q): expected ErrInvalidCoordinate, got %v", bad, err)
		}
	}
}
