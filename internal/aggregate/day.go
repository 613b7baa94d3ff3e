package aggregate

import (
	"fmt"
	"time"
)

// HitThreshold is the number of fixes a day needs on one side of the
// geofence, exclusive, before that side counts for the day.
const HitThreshold = 25

// Status is the classification of a single day.
type Status int

const (
	Unknown Status = iota
	Inside
	Outside
	TransitIn
	TransitOut
)

func (s Status) String() string {
	switch s {
	case Inside:
		return "INSIDE"
	case Outside:
		return "OUTSIDE"
	case TransitIn:
		return "TRANSIT_IN"
	case TransitOut:
		return "TRANSIT_OUT"
	default:
		return "UNKNOWN"
	}
}

// Resolved is a Status with transit days folded into the side they ended on.
type Resolved int

const (
	ResolvedUnknown Resolved = iota
	ResolvedInside
	ResolvedOutside
)

func (r Resolved) String() string {
	switch r {
	case ResolvedInside:
		return "INSIDE"
	case ResolvedOutside:
		return "OUTSIDE"
	default:
		return "UNKNOWN"
	}
}

// MarshalText renders the resolved status the same way String does.
func (r Resolved) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Resolve collapses transit statuses to their dominant side. Period merging,
// statistics and printing all go through here.
func Resolve(s Status) Resolved {
	switch s {
	case Inside, TransitIn:
		return ResolvedInside
	case Outside, TransitOut:
		return ResolvedOutside
	default:
		return ResolvedUnknown
	}
}

// Day accumulates the qualifying fixes of one calendar day. The first* fields
// are fixed by the first qualifying fix; the rest change with every fix.
type Day struct {
	Index            int
	FirstTimestamp   time.Time
	FirstLatitudeE7  int64
	FirstLongitudeE7 int64
	LastLatitudeE7   int64
	LastLongitudeE7  int64
	InsideHits       int
	OutsideHits      int
	LastHitWasInside bool
}

// Status derives the day's classification from its hit counts. It is not
// cached; counts may still change while aggregation runs.
func (d *Day) Status() Status {
	inside := d.InsideHits > HitThreshold
	outside := d.OutsideHits > HitThreshold

	switch {
	case inside && outside:
		if d.LastHitWasInside {
			return TransitIn
		}
		return TransitOut
	case inside:
		return Inside
	case outside:
		return Outside
	default:
		return Unknown
	}
}

// IsInside is true for Inside and TransitIn days.
func (d *Day) IsInside() bool {
	s := d.Status()
	return s == Inside || s == TransitIn
}

// IsOutside is true for Outside and TransitOut days.
func (d *Day) IsOutside() bool {
	s := d.Status()
	return s == Outside || s == TransitOut
}

func (d *Day) String() string {
	return fmt.Sprintf("Day(%d, %s, in=%d, out=%d)", d.Index, d.Status(), d.InsideHits, d.OutsideHits)
}
