// Package report turns an aggregation pass into the statistics, period
// listings and transitions printed or exported by the command line tool.
package report

import (
	"fmt"
	"iter"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/daysabroad/internal/aggregate"
	"github.com/banshee-data/daysabroad/internal/geo"
	"github.com/banshee-data/daysabroad/internal/monitoring"
	"github.com/banshee-data/daysabroad/internal/period"
	"github.com/banshee-data/daysabroad/internal/record"
	"github.com/banshee-data/daysabroad/internal/timeutil"
)

// Status tells an empty run apart from a normal one.
type Status string

const (
	StatusOK                  Status = "ok"
	StatusNoQualifyingRecords Status = "no_qualifying_records"
)

// Options configures CountDaysAbroad. Start and End are inclusive.
type Options struct {
	Start      time.Time
	End        time.Time
	CenterLon  float64
	CenterLat  float64
	RadiusKm   float64
	TargetDays int
	MaxGapDays int

	// Verbose logs every fix dropped for low accuracy.
	Verbose bool
	// IncludeTransitions fills Report.Transitions.
	IncludeTransitions bool
}

// Validate rejects options before any record is read.
func (o Options) Validate() error {
	if err := o.params().Validate(); err != nil {
		return err
	}
	if o.TargetDays <= 0 {
		return fmt.Errorf("%w: target days must be positive, got %d", aggregate.ErrInvalidParams, o.TargetDays)
	}
	if o.MaxGapDays < 0 {
		return fmt.Errorf("%w: max gap days must be non-negative, got %d", aggregate.ErrInvalidParams, o.MaxGapDays)
	}
	return nil
}

func (o Options) params() aggregate.Params {
	return aggregate.Params{
		Start:     o.Start,
		End:       o.End,
		CenterLon: o.CenterLon,
		CenterLat: o.CenterLat,
		RadiusKm:  o.RadiusKm,
	}
}

// Geofence echoes the region a report was computed against.
type Geofence struct {
	CenterLon float64 `json:"center_lon"`
	CenterLat float64 `json:"center_lat"`
	RadiusKm  float64 `json:"radius_km"`
}

// Statistics are the day counts over the whole result range.
type Statistics struct {
	RangeStart time.Time `json:"range_start"`
	RangeEnd   time.Time `json:"range_end"`
	// ResultRangeDays is whole days from the earliest to the latest
	// qualifying fix, plus one.
	ResultRangeDays int64 `json:"result_range_days"`
	// DaysOutsideIncludingTransit counts OUTSIDE and TRANSIT_OUT days only.
	DaysOutsideIncludingTransit int   `json:"days_outside_including_transit"`
	DaysInside                  int   `json:"days_inside"`
	ValidDays                   int   `json:"valid_days"`
	CapturedDays                int   `json:"captured_days"`
	UncapturedDays              int64 `json:"uncaptured_days"`
	CapturedButInvalidDays      int   `json:"captured_but_invalid_days"`
	QualifiedRecords            int   `json:"qualified_records"`
}

// Transition is a day with enough hits on both sides of the geofence.
type Transition struct {
	Date        time.Time `json:"date"`
	Status      string    `json:"status"`
	InsideHits  int       `json:"inside_hits"`
	OutsideHits int       `json:"outside_hits"`
	FromURL     string    `json:"from_url"`
	ToURL       string    `json:"to_url"`
}

// PeriodRow is the printable form of a period.
type PeriodRow struct {
	Start      time.Time          `json:"start"`
	End        time.Time          `json:"end"`
	Status     aggregate.Resolved `json:"status"`
	LengthDays int                `json:"length_days"`
}

// DayRow is one captured day, in time order.
type DayRow struct {
	Date        time.Time          `json:"date"`
	Status      aggregate.Resolved `json:"status"`
	InsideHits  int                `json:"inside_hits"`
	OutsideHits int                `json:"outside_hits"`
}

// Hits is the total number of qualifying fixes of the day.
func (d DayRow) Hits() int {
	return d.InsideHits + d.OutsideHits
}

// Report is the full result of one run.
type Report struct {
	RunID      string    `json:"run_id"`
	Status     Status    `json:"status"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Geofence   Geofence  `json:"geofence"`
	TargetDays int       `json:"target_days"`
	MaxGapDays int       `json:"max_gap_days"`

	Statistics  Statistics   `json:"statistics"`
	Transitions []Transition `json:"transitions,omitempty"`
	Periods     []PeriodRow  `json:"periods"`

	RecentContiguous     []PeriodRow `json:"recent_contiguous"`
	RecentContiguousDays int         `json:"recent_contiguous_days"`
	TargetReached        bool        `json:"target_reached"`

	Quality  Quality                 `json:"quality"`
	Discards aggregate.DiscardCounts `json:"discards"`

	Days []DayRow `json:"-"`
}

// Empty reports whether no fix qualified.
func (r *Report) Empty() bool {
	return r.Status == StatusNoQualifyingRecords
}

// CountDaysAbroad consumes records once and assembles the report.
func CountDaysAbroad(records iter.Seq[record.Record], opts Options) (*Report, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	params := opts.params()
	if opts.Verbose {
		params.OnLowAccuracy = func(r record.Record) {
			monitoring.Logf("Low accuracy: longitude %f, latitude %f, time %s, accuracy %d",
				geo.DecodeLongitude(r.LongitudeE7), geo.DecodeLatitude(r.LatitudeE7),
				r.Timestamp.Format(time.RFC3339), r.AccuracyMeters)
		}
	}

	res := aggregate.Aggregate(records, params)
	return Assemble(res, opts), nil
}

// Assemble builds a report from a finished aggregation. An empty result
// yields StatusNoQualifyingRecords and zero statistics.
func Assemble(res *aggregate.Result, opts Options) *Report {
	rep := &Report{
		RunID:      uuid.NewString(),
		Start:      opts.Start,
		End:        opts.End,
		Geofence:   Geofence{CenterLon: opts.CenterLon, CenterLat: opts.CenterLat, RadiusKm: opts.RadiusKm},
		TargetDays: opts.TargetDays,
		MaxGapDays: opts.MaxGapDays,
		Discards:   res.Discards,
	}
	if res.Empty() {
		rep.Status = StatusNoQualifyingRecords
		return rep
	}
	rep.Status = StatusOK
	rep.Statistics = ComputeStatistics(res)

	periods := period.Build(res.Days)
	rep.Periods = Rows(periods)

	recent := period.FindRecentContiguous(periods, opts.TargetDays, opts.MaxGapDays)
	rep.RecentContiguous = Rows(recent)
	rep.RecentContiguousDays = period.TotalDays(recent)
	rep.TargetReached = rep.RecentContiguousDays >= opts.TargetDays

	if opts.IncludeTransitions {
		rep.Transitions = Transitions(res.Days)
	}

	rep.Days = dayRows(res.Days)
	rep.Quality = ComputeQuality(rep.Days)
	return rep
}

// ComputeStatistics derives the day counts of a non-empty result.
func ComputeStatistics(res *aggregate.Result) Statistics {
	var s Statistics
	if res.Empty() {
		return s
	}

	for _, d := range res.Days {
		switch aggregate.Resolve(d.Status()) {
		case aggregate.ResolvedOutside:
			s.DaysOutsideIncludingTransit++
			s.ValidDays++
		case aggregate.ResolvedInside:
			s.DaysInside++
			s.ValidDays++
		}
	}

	s.RangeStart = *res.Lowest
	s.RangeEnd = *res.Highest
	s.ResultRangeDays = timeutil.DaysBetween(*res.Lowest, *res.Highest) + 1
	s.CapturedDays = len(res.Days)
	s.UncapturedDays = s.ResultRangeDays - int64(s.CapturedDays)
	s.CapturedButInvalidDays = s.CapturedDays - s.ValidDays
	s.QualifiedRecords = res.Qualified
	return s
}

// Transitions lists transit days in time order with map links to the first
// and last fix of each.
func Transitions(days map[int]*aggregate.Day) []Transition {
	var out []Transition
	for _, d := range days {
		s := d.Status()
		if s != aggregate.TransitIn && s != aggregate.TransitOut {
			continue
		}
		out = append(out, Transition{
			Date:        d.FirstTimestamp,
			Status:      s.String(),
			InsideHits:  d.InsideHits,
			OutsideHits: d.OutsideHits,
			FromURL:     geo.MapURL(d.FirstLatitudeE7, d.FirstLongitudeE7),
			ToURL:       geo.MapURL(d.LastLatitudeE7, d.LastLongitudeE7),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Rows converts periods into printable rows, keeping their order.
func Rows(ps []period.Period) []PeriodRow {
	rows := make([]PeriodRow, 0, len(ps))
	for _, p := range ps {
		rows = append(rows, PeriodRow{
			Start:      p.First.FirstTimestamp,
			End:        p.Last.FirstTimestamp,
			Status:     p.Status,
			LengthDays: p.LengthDays(),
		})
	}
	return rows
}

func dayRows(days map[int]*aggregate.Day) []DayRow {
	rows := make([]DayRow, 0, len(days))
	for _, d := range days {
		rows = append(rows, DayRow{
			Date:        d.FirstTimestamp,
			Status:      aggregate.Resolve(d.Status()),
			InsideHits:  d.InsideHits,
			OutsideHits: d.OutsideHits,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	return rows
}
