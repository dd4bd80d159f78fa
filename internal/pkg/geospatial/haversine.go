package geospatial

import "math"

// EarthRadiusMeters is the mean earth radius used by every spherical formula here.
const EarthRadiusMeters = 6371000.0

// Haversine calculates the great-circle distance in meters between two points.
// Non-finite inputs propagate to NaN.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := ToRad(lat1)
	phi2 := ToRad(lat2)
	dPhi := ToRad(lat2 - lat1)
	dLambda := ToRad(lon2 - lon1)

	sinDPhi := math.Sin(dPhi / 2)
	sinDLambda := math.Sin(dLambda / 2)
	a := sinDPhi*sinDPhi + math.Cos(phi1)*math.Cos(phi2)*sinDLambda*sinDLambda

	// rounding can push a just past 1 for antipodal pairs
	a = math.Max(0, math.Min(1, a))

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// ToRad converts degrees to radians.
func ToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// ToDeg converts radians to degrees.
func ToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
