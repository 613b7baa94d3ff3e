// Package geo decodes fixed-point coordinates and measures great-circle
// distances between them.
package geo

import (
	"fmt"
	"math"

	"github.com/banshee-data/daysabroad/internal/units"
)

// Fixed-point coordinates are degrees * 1e7. Some exports store them as
// unsigned 32-bit values, so anything above the valid range has wrapped.
const (
	e7           = 1e7
	wrap         = 4_294_967_296
	maxLongitude = 1_800_000_000
	maxLatitude  = 900_000_000
)

// DecodeLongitude turns a fixed-point longitude into decimal degrees.
func DecodeLongitude(fixed int64) float64 {
	if fixed > maxLongitude {
		fixed -= wrap
	}
	return float64(fixed) / e7
}

// DecodeLatitude turns a fixed-point latitude into decimal degrees.
func DecodeLatitude(fixed int64) float64 {
	if fixed > maxLatitude {
		fixed -= wrap
	}
	return float64(fixed) / e7
}

// EncodeLongitude is the inverse of DecodeLongitude. Negative values are
// wrapped into the unsigned 32-bit range the way some devices emit them.
func EncodeLongitude(deg float64) int64 {
	return encode(deg)
}

// EncodeLatitude is the inverse of DecodeLatitude.
func EncodeLatitude(deg float64) int64 {
	return encode(deg)
}

func encode(deg float64) int64 {
	fixed := int64(math.Round(deg * e7))
	if fixed < 0 {
		fixed += wrap
	}
	return fixed
}

// GreatCircle returns the spherical law-of-cosines distance between two
// points in the requested units. Longitudes and latitudes are in degrees.
func GreatCircle(lon1, lat1, lon2, lat2 float64, unit string) float64 {
	if lon1 == lon2 && lat1 == lat2 {
		return 0
	}

	theta := lon1 - lon2
	c := math.Sin(deg2rad(lat1))*math.Sin(deg2rad(lat2)) +
		math.Cos(deg2rad(lat1))*math.Cos(deg2rad(lat2))*math.Cos(deg2rad(theta))
	// rounding can push identical or antipodal points just past +/-1
	c = math.Max(-1, math.Min(1, c))
	dist := rad2deg(math.Acos(c))
	return dist * 60.0 * 1.1515 * units.Factor(unit)
}

// GreatCircleKm is GreatCircle in kilometres.
func GreatCircleKm(lon1, lat1, lon2, lat2 float64) float64 {
	return GreatCircle(lon1, lat1, lon2, lat2, units.Kilometres)
}

// DistanceToCenter decodes a fixed-point fix and returns its distance in km
// from the given centre.
func DistanceToCenter(lonE7, latE7 int64, centerLon, centerLat float64) float64 {
	return GreatCircleKm(DecodeLongitude(lonE7), DecodeLatitude(latE7), centerLon, centerLat)
}

// MapURL links a fixed-point coordinate to a map view.
func MapURL(latE7, lonE7 int64) string {
	return fmt.Sprintf("https://www.google.com/maps/@%f,%f,9.25z", DecodeLatitude(latE7), DecodeLongitude(lonE7))
}

func deg2rad(d float64) float64 { return d * math.Pi / 180.0 }
func rad2deg(r float64) float64 { return r * 180.0 / math.Pi }
