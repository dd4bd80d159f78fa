package usecases

import (
	"github.com/samirrijal/refpoint/internal/core/domain"
	"github.com/samirrijal/refpoint/internal/pkg/geospatial"
)

// Geodesic is the stateless inverse solution between two coordinates.
type Geodesic struct {
	From                domain.GeoPoint `json:"from"`
	To                  domain.GeoPoint `json:"to"`
	BearingDegrees      *float64        `json:"bearing_degrees"`
	DistanceMeters      *float64        `json:"distance_meters"`
	AltitudeDeltaMeters *float64        `json:"altitude_delta_meters"`
	Midpoint            domain.GeoPoint `json:"midpoint"`
}

// Inverse computes bearing, distance and altitude delta from one point to
// another without touching any session. A degenerate bearing is left nil.
func Inverse(from, to domain.GeoPoint) Geodesic {
	g := Geodesic{
		From:                from.Clone(),
		To:                  to.Clone(),
		AltitudeDeltaMeters: altitudeDelta(&from, &to),
	}

	if b := geospatial.InitialBearing(from.Lat, from.Lon, to.Lat, to.Lon); isFinite(b) {
		g.BearingDegrees = &b
	}
	if d := geospatial.Haversine(from.Lat, from.Lon, to.Lat, to.Lon); isFinite(d) {
		g.DistanceMeters = &d
	}

	lat, lon := geospatial.Midpoint(from.Lat, from.Lon, to.Lat, to.Lon)
	g.Midpoint = domain.GeoPoint{Lat: lat, Lon: lon}
	return g
}
