package geospatial_test

import (
	"math"
	"testing"

	"github.com/samirrijal/refpoint/internal/pkg/geospatial"
)

func TestHaversine_QuarterCircle(t *testing.T) {
	d := geospatial.Haversine(0, 0, 0, 90)
	if math.Abs(d-10007543.398) > 1 {
		t.Errorf("expected ~10007543 m, got %f", d)
	}
}

func TestHaversine_BeijingShanghai(t *testing.T) {
	d := geospatial.Haversine(39.9042, 116.4074, 31.2304, 121.4737)
	want := 1068500.0
	if math.Abs(d-want)/want > 0.01 {
		t.Errorf("expected within 1%% of %.0f m, got %.0f", want, d)
	}
}

func TestHaversine_Symmetric(t *testing.T) {
	pairs := [][4]float64{
		{39.9042, 116.4074, 31.2304, 121.4737},
		{-33.8688, 151.2093, 51.5074, -0.1278},
		{89.9, 0, -89.9, 180},
		{0, -179.5, 0, 179.5},
	}
	for _, p := range pairs {
		ab := geospatial.Haversine(p[0], p[1], p[2], p[3])
		ba := geospatial.Haversine(p[2], p[3], p[0], p[1])
		if math.Abs(ab-ba) > 1e-6 {
			t.Errorf("distance not symmetric for %v: %f vs %f", p, ab, ba)
		}
	}
}

func TestHaversine_SamePointIsZero(t *testing.T) {
	if d := geospatial.Haversine(43.263, -2.935, 43.263, -2.935); d != 0 {
		t.Errorf("expected 0, got %f", d)
	}
}

func TestHaversine_Antipodal(t *testing.T) {
	want := math.Pi * geospatial.EarthRadiusMeters
	for _, p := range [][4]float64{{0, 0, 0, 180}, {10, 20, -10, -160}, {90, 0, -90, 0}} {
		d := geospatial.Haversine(p[0], p[1], p[2], p[3])
		if math.IsNaN(d) || math.Abs(d-want) > 1 {
			t.Errorf("antipodal %v: expected %f, got %f", p, want, d)
		}
	}
}

func TestHaversine_NaNPropagates(t *testing.T) {
	if d := geospatial.Haversine(math.NaN(), 0, 1, 1); !math.IsNaN(d) {
		t.Errorf("expected NaN, got %f", d)
	}
}

func TestInitialBearing_East(t *testing.T) {
	b := geospatial.InitialBearing(0, 0, 0, 90)
	if math.Abs(b-90) > 1e-9 {
		t.Errorf("expected 90, got %f", b)
	}
}

func TestInitialBearing_BeijingShanghai(t *testing.T) {
	b := geospatial.InitialBearing(39.9042, 116.4074, 31.2304, 121.4737)
	if b < 153 || b > 154 {
		t.Errorf("expected bearing in [153, 154], got %f", b)
	}
}

func TestInitialBearing_Range(t *testing.T) {
	pts := [][2]float64{{0, 0}, {45, 45}, {-45, 170}, {10, -179}, {-89, 3}, {60, -20}, {0, 180}}
	for _, a := range pts {
		for _, b := range pts {
			if a == b {
				continue
			}
			got := geospatial.InitialBearing(a[0], a[1], b[0], b[1])
			if math.IsNaN(got) || got < 0 || got >= 360 {
				t.Errorf("bearing %v -> %v out of range: %f", a, b, got)
			}
		}
	}
}

func TestInitialBearing_Cardinals(t *testing.T) {
	cases := []struct {
		name             string
		lat1, lon1       float64
		lat2, lon2, want float64
	}{
		{"north", 0, 0, 10, 0, 0},
		{"south", 0, 0, -10, 0, 180},
		{"west", 0, 0, 0, -10, 270},
	}
	for _, c := range cases {
		got := geospatial.InitialBearing(c.lat1, c.lon1, c.lat2, c.lon2)
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("%s: expected %f, got %f", c.name, c.want, got)
		}
	}
}

func TestInitialBearing_Undefined(t *testing.T) {
	if b := geospatial.InitialBearing(10, 10, 10, 10); !math.IsNaN(b) {
		t.Errorf("coincident points: expected NaN, got %f", b)
	}
	if b := geospatial.InitialBearing(math.Inf(1), 0, 0, 0); !math.IsNaN(b) {
		t.Errorf("infinite latitude: expected NaN, got %f", b)
	}
	if b := geospatial.InitialBearing(0, 0, 0, math.NaN()); !math.IsNaN(b) {
		t.Errorf("NaN longitude: expected NaN, got %f", b)
	}
}

func TestCompassPoint(t *testing.T) {
	cases := map[float64]string{0: "N", 22.4: "N", 22.5: "NE", 90: "E", 153.07: "SE", 200: "S", 270: "W", 337.6: "N", 359.9: "N"}
	for in, want := range cases {
		if got := geospatial.CompassPoint(in); got != want {
			t.Errorf("CompassPoint(%v): expected %s, got %s", in, want, got)
		}
	}
	if got := geospatial.CompassPoint(math.NaN()); got != "" {
		t.Errorf("expected empty label for NaN, got %q", got)
	}
}

func TestMidpoint(t *testing.T) {
	lat, lon := geospatial.Midpoint(0, 0, 0, 90)
	if math.Abs(lat) > 1e-9 || math.Abs(lon-45) > 1e-9 {
		t.Errorf("expected (0, 45), got (%f, %f)", lat, lon)
	}
}
