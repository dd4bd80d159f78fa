package geospatial

import "math"

// InitialBearing returns the forward azimuth from point 1 to point 2 in degrees,
// clockwise from true north, in [0, 360).
//
// NaN means the bearing is undefined: a non-finite input, or coincident points
// where atan2(0, 0) carries no direction.
func InitialBearing(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := ToRad(lat1)
	phi2 := ToRad(lat2)
	dLambda := ToRad(lon2 - lon1)

	if !finite(phi1) || !finite(phi2) || !finite(dLambda) {
		return math.NaN()
	}

	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)
	if y == 0 && x == 0 {
		return math.NaN()
	}

	theta := math.Atan2(y, x)
	deg := math.Mod(ToDeg(theta)+360, 360)
	if deg >= 360 {
		deg = 0
	}
	return deg
}

var compassPoints = []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// CompassPoint converts a bearing to an 8-point compass label.
// Returns "" for non-finite input.
func CompassPoint(bearing float64) string {
	if !finite(bearing) {
		return ""
	}
	b := math.Mod(math.Mod(bearing, 360)+360, 360)
	return compassPoints[int((b+22.5)/45.0)%8]
}
