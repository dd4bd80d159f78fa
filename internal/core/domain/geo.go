package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// GeoPoint represents a geographic coordinate with an optional altitude.
// Altitude is nil when the source could not supply one (e.g. a map tap).
type GeoPoint struct {
	Lat      float64  `json:"latitude"`
	Lon      float64  `json:"longitude"`
	Altitude *float64 `json:"altitude"`
}

// NewGeoPoint validates and normalizes a coordinate. Latitude must lie in
// [-90, 90]; longitude is wrapped into [-180, 180). A non-finite altitude is
// treated as unknown.
func NewGeoPoint(lat, lon float64, altitude *float64) (GeoPoint, error) {
	if !isFinite(lat) || !isFinite(lon) {
		return GeoPoint{}, fmt.Errorf("%w: non-finite coordinate (%v, %v)", ErrInvalidCoordinate, lat, lon)
	}
	if lat < -90 || lat > 90 {
		return GeoPoint{}, fmt.Errorf("%w: latitude %v outside [-90, 90]", ErrInvalidCoordinate, lat)
	}

	p := GeoPoint{Lat: lat, Lon: NormalizeLongitude(lon)}
	if altitude != nil && isFinite(*altitude) {
		alt := *altitude
		p.Altitude = &alt
	}
	return p, nil
}

// Validate re-checks a point that did not come through NewGeoPoint,
// e.g. one decoded from storage.
func (p GeoPoint) Validate() (GeoPoint, error) {
	return NewGeoPoint(p.Lat, p.Lon, p.Altitude)
}

// HasAltitude reports whether the altitude is known.
func (p GeoPoint) HasAltitude() bool {
	return p.Altitude != nil
}

// Clone returns a copy that shares no memory with p.
func (p GeoPoint) Clone() GeoPoint {
	c := GeoPoint{Lat: p.Lat, Lon: p.Lon}
	if p.Altitude != nil {
		alt := *p.Altitude
		c.Altitude = &alt
	}
	return c
}

func (p GeoPoint) String() string {
	if p.Altitude == nil {
		return fmt.Sprintf("(%.6f, %.6f)", p.Lat, p.Lon)
	}
	return fmt.Sprintf("(%.6f, %.6f, %.1fm)", p.Lat, p.Lon, *p.Altitude)
}

// ParseGeoPoint reads "lat,lon" or "lat,lon,alt" in decimal degrees and meters.
func ParseGeoPoint(s string) (GeoPoint, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 && len(parts) != 3 {
		return GeoPoint{}, fmt.Errorf("%w: want lat,lon[,alt], got %q", ErrInvalidCoordinate, s)
	}

	vals := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return GeoPoint{}, fmt.Errorf("%w: %q is not a number", ErrInvalidCoordinate, part)
		}
		vals[i] = v
	}

	var alt *float64
	if len(vals) == 3 {
		alt = &vals[2]
	}
	return NewGeoPoint(vals[0], vals[1], alt)
}

// NormalizeLongitude wraps a longitude into [-180, 180).
func NormalizeLongitude(lon float64) float64 {
	if lon >= -180 && lon < 180 {
		return lon
	}
	w := math.Mod(lon+180, 360)
	if w < 0 {
		w += 360
	}
	return w - 180
}

// Float returns a pointer to v; handy for optional altitudes.
func Float(v float64) *float64 {
	return &v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
