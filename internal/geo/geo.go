package geo

import "math"

// earthRadiusMeters is the mean Earth radius of the spherical model.
const earthRadiusMeters = 6371000

// Decision is the outcome of an admission check.
type Decision struct {
	DistanceMeters float64
	Admitted       bool
}

// Distance returns the great-circle distance in meters between two points
// given in decimal degrees, using the haversine formula.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := radians(lat1)
	phi2 := radians(lat2)
	dPhi := radians(lat2 - lat1)
	dLambda := radians(lng2 - lng1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Admit decides whether a student position is close enough to the venue.
// Callers must validate coordinates with ValidCoordinate first; garbage in
// yields garbage out.
func Admit(studentLat, studentLng, venueLat, venueLng, radiusMeters float64) Decision {
	d := Distance(studentLat, studentLng, venueLat, venueLng)
	return Decision{DistanceMeters: d, Admitted: d <= radiusMeters}
}

// ValidCoordinate reports whether lat/lng form a usable WGS84 coordinate.
func ValidCoordinate(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
