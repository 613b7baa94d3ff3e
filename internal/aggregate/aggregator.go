// Package aggregate buckets a stream of GPS fixes into calendar days and
// classifies each day as inside or outside a circular geofence.
package aggregate

import (
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/banshee-data/daysabroad/internal/geo"
	"github.com/banshee-data/daysabroad/internal/record"
	"github.com/banshee-data/daysabroad/internal/timeutil"
)

// MaxAccuracyMeters is the noise threshold; fixes with a larger accuracy
// radius are dropped before anything else is looked at.
const MaxAccuracyMeters = 1000

// The device default "no fix" position. It must never count toward a day.
const (
	SentinelLatitudeE7  = 374219983
	SentinelLongitudeE7 = -1220840000
)

// ErrInvalidParams is returned by Params.Validate.
var ErrInvalidParams = errors.New("invalid aggregation parameters")

// Params configures one aggregation pass. Start and End are inclusive.
type Params struct {
	Start     time.Time
	End       time.Time
	CenterLon float64
	CenterLat float64
	RadiusKm  float64

	// OnLowAccuracy, when set, is called for every fix dropped for accuracy.
	OnLowAccuracy func(record.Record)
}

// Validate rejects parameters that cannot produce a meaningful result.
func (p Params) Validate() error {
	if p.RadiusKm < 0 {
		return fmt.Errorf("%w: radius must be non-negative, got %f", ErrInvalidParams, p.RadiusKm)
	}
	if p.End.Before(p.Start) {
		return fmt.Errorf("%w: end %s is before start %s", ErrInvalidParams,
			p.End.Format(time.RFC3339), p.Start.Format(time.RFC3339))
	}
	if p.CenterLat < -90 || p.CenterLat > 90 || p.CenterLon < -180 || p.CenterLon > 180 {
		return fmt.Errorf("%w: centre %f,%f out of range", ErrInvalidParams, p.CenterLon, p.CenterLat)
	}
	return nil
}

// DiscardCounts tallies fixes that did not qualify, by reason.
type DiscardCounts struct {
	LowAccuracy int `json:"low_accuracy"`
	OutOfRange  int `json:"out_of_range"`
	Sentinel    int `json:"sentinel"`
}

// Result is the outcome of one aggregation pass. Lowest and Highest are nil
// until the first qualifying fix.
type Result struct {
	Days      map[int]*Day
	Lowest    *time.Time
	Highest   *time.Time
	Qualified int
	Discards  DiscardCounts
}

// Empty reports whether no fix qualified.
func (r *Result) Empty() bool {
	return len(r.Days) == 0
}

// Aggregate consumes records once, front to back. Records may arrive in any
// order. The returned Result belongs to the caller.
func Aggregate(records iter.Seq[record.Record], p Params) *Result {
	res := &Result{Days: make(map[int]*Day)}
	for r := range records {
		res.add(r, p)
	}
	return res
}

func (res *Result) add(r record.Record, p Params) {
	if r.AccuracyMeters > MaxAccuracyMeters {
		res.Discards.LowAccuracy++
		if p.OnLowAccuracy != nil {
			p.OnLowAccuracy(r)
		}
		return
	}
	if r.Timestamp.Before(p.Start) || r.Timestamp.After(p.End) {
		res.Discards.OutOfRange++
		return
	}
	if r.LatitudeE7 == SentinelLatitudeE7 && r.LongitudeE7 == SentinelLongitudeE7 {
		res.Discards.Sentinel++
		return
	}

	idx := timeutil.DayIndex(r.Timestamp)
	day, ok := res.Days[idx]
	if !ok {
		day = &Day{
			Index:            idx,
			FirstTimestamp:   r.Timestamp,
			FirstLatitudeE7:  r.LatitudeE7,
			FirstLongitudeE7: r.LongitudeE7,
		}
		res.Days[idx] = day
	}

	if geo.DistanceToCenter(r.LongitudeE7, r.LatitudeE7, p.CenterLon, p.CenterLat) > p.RadiusKm {
		day.OutsideHits++
		day.LastHitWasInside = false
	} else {
		day.InsideHits++
		day.LastHitWasInside = true
	}
	day.LastLatitudeE7 = r.LatitudeE7
	day.LastLongitudeE7 = r.LongitudeE7

	ts := r.Timestamp
	if res.Lowest == nil || ts.Before(*res.Lowest) {
		res.Lowest = &ts
	}
	if res.Highest == nil || ts.After(*res.Highest) {
		res.Highest = &ts
	}
	res.Qualified++
}
