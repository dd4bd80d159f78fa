package geospatial

import "github.com/golang/geo/s2"

// Midpoint returns the point halfway along the great circle between two points.
func Midpoint(lat1, lon1, lat2, lon2 float64) (float64, float64) {
	p1 := s2.PointFromLatLng(s2.LatLngFromDegrees(lat1, lon1))
	p2 := s2.PointFromLatLng(s2.LatLngFromDegrees(lat2, lon2))

	mid := s2.LatLngFromPoint(s2.Interpolate(0.5, p1, p2))
	return mid.Lat.Degrees(), mid.Lng.Degrees()
}
