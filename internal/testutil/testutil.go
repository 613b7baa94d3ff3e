// Package testutil provides shared test utilities and fixtures.
//
// This package centralises the location fixtures used by the aggregation,
// period and report tests so that every package agrees on what "inside"
// and "outside" mean.
package testutil

import (
	"testing"
	"time"

	"github.com/banshee-data/daysabroad/internal/geo"
	"github.com/banshee-data/daysabroad/internal/record"
)

// Home is the geofence centre used by tests (Knaresborough, UK) with a
// radius that covers Great Britain but not the continent.
const (
	HomeLon      = -1.4301757
	HomeLat      = 54.0085726
	HomeRadiusKm = 381.0
)

// Places well inside and well outside the test geofence.
var (
	York  = [2]float64{-1.0815, 53.9600}
	Paris = [2]float64{2.3522, 48.8566}
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// Fix builds an accurate record at the given place ({lon, lat}).
func Fix(ts time.Time, place [2]float64) record.Record {
	return record.Record{
		Timestamp:      ts,
		LongitudeE7:    geo.EncodeLongitude(place[0]),
		LatitudeE7:     geo.EncodeLatitude(place[1]),
		AccuracyMeters: 15,
	}
}

// Fixes builds n records at place, starting at start and spaced by step.
func Fixes(n int, start time.Time, step time.Duration, place [2]float64) []record.Record {
	out := make([]record.Record, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Fix(start.Add(time.Duration(i)*step), place))
	}
	return out
}

// DayOfFixes builds n records spread over the morning of the given day.
func DayOfFixes(n int, day time.Time, place [2]float64) []record.Record {
	return Fixes(n, day.Add(6*time.Hour), 10*time.Minute, place)
}

// Days builds a history of consecutive days starting at first. Each entry in
// places yields one day with hits fixes at that place; a nil entry yields a
// day with no fixes at all.
func Days(first time.Time, hits int, places ...*[2]float64) []record.Record {
	var out []record.Record
	for i, place := range places {
		if place == nil {
			continue
		}
		out = append(out, DayOfFixes(hits, first.AddDate(0, 0, i), *place)...)
	}
	return out
}

// Date is time.Date at midnight UTC.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
