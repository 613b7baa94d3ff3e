// Package units provides shared constants and validation for distance units
package units

import (
	"slices"
	"strings"
)

// Distance units accepted by -units and the config file.
const (
	Kilometres    = "km"
	NauticalMiles = "nmi"
	Miles         = "mi"
)

var ValidUnits = []string{Kilometres, NauticalMiles, Miles}

// IsValid reports whether unit is one of ValidUnits. Matching is case
// sensitive.
func IsValid(unit string) bool {
	return slices.Contains(ValidUnits, unit)
}

// GetValidUnitsString lists ValidUnits for error messages and flag help.
func GetValidUnitsString() string {
	return strings.Join(ValidUnits, ", ")
}

// Factor returns the multiplier that turns a statute-mile distance into the
// target units. The geo package derives statute miles from arc minutes
// (60 * 1.1515) and applies this factor last.
func Factor(targetUnits string) float64 {
	switch targetUnits {
	case Kilometres:
		return 1.609344
	case NauticalMiles:
		return 0.8684
	case Miles:
		return 1
	default:
		return 1.609344 // default to km if unknown unit
	}
}

// ConvertDistance converts a distance in kilometres to the target units.
func ConvertDistance(km float64, targetUnits string) float64 {
	return km / Factor(Kilometres) * Factor(targetUnits)
}

// ToKilometres converts a distance given in fromUnits to kilometres.
func ToKilometres(d float64, fromUnits string) float64 {
	return d / Factor(fromUnits) * Factor(Kilometres)
}
