// Package period merges classified days into runs of the same resolved
// status and searches those runs for the most recent contiguous residency.
package period

import (
	"math"
	"sort"

	"github.com/banshee-data/daysabroad/internal/aggregate"
	"github.com/banshee-data/daysabroad/internal/timeutil"
)

// Period is a run of consecutive days sharing a resolved status. First and
// Last keep their raw status (a transit day stays a transit day).
type Period struct {
	First  *aggregate.Day
	Last   *aggregate.Day
	Status aggregate.Resolved
}

// LengthDays is the inclusive length of the period, rounded to whole days
// from the first timestamps of its boundary days.
func (p Period) LengthDays() int {
	hours := timeutil.HoursBetween(p.First.FirstTimestamp, p.Last.FirstTimestamp)
	return int(math.Round(float64(hours)/24.0)) + 1
}

// Inside reports whether the period resolves to inside the geofence.
func (p Period) Inside() bool {
	return p.Status == aggregate.ResolvedInside
}

// Build orders days by their first timestamp and folds them into periods.
// Day keys are not ordered across years and are never used for sorting.
// Unknown days take part like any other status.
func Build(days map[int]*aggregate.Day) []Period {
	sorted := make([]*aggregate.Day, 0, len(days))
	for _, d := range days {
		sorted = append(sorted, d)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].FirstTimestamp.Before(sorted[j].FirstTimestamp)
	})

	var periods []Period
	for _, d := range sorted {
		status := aggregate.Resolve(d.Status())
		if n := len(periods); n > 0 && periods[n-1].Status == status {
			periods[n-1].Last = d
			continue
		}
		periods = append(periods, Period{First: d, Last: d, Status: status})
	}
	return periods
}

// TotalDays sums LengthDays over ps.
func TotalDays(ps []Period) int {
	total := 0
	for _, p := range ps {
		total += p.LengthDays()
	}
	return total
}
