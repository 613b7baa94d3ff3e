package aggregate

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/daysabroad/internal/record"
	"github.com/banshee-data/daysabroad/internal/testutil"
)

func homeParams() Params {
	return Params{
		Start:     testutil.Date(2000, 1, 1),
		End:       testutil.Date(2100, 1, 1),
		CenterLon: testutil.HomeLon,
		CenterLat: testutil.HomeLat,
		RadiusKm:  testutil.HomeRadiusKm,
	}
}

func run(recs []record.Record, p Params) *Result {
	return Aggregate(record.SliceSource(recs).Records(), p)
}

func TestAggregate_OutsideDay(t *testing.T) {
	day := testutil.Date(2023, 4, 10)
	res := run(testutil.DayOfFixes(26, day, testutil.Paris), homeParams())

	require.Len(t, res.Days, 1)
	d := res.Days[2023100]
	require.NotNil(t, d)
	assert.Equal(t, 26, d.OutsideHits)
	assert.Equal(t, 0, d.InsideHits)
	assert.Equal(t, Outside, d.Status())
}

func TestAggregate_TransitOut(t *testing.T) {
	day := testutil.Date(2023, 4, 10)
	recs := append(
		testutil.Fixes(26, day.Add(6*time.Hour), time.Minute, testutil.York),
		testutil.Fixes(26, day.Add(12*time.Hour), time.Minute, testutil.Paris)...,
	)
	res := run(recs, homeParams())

	require.Len(t, res.Days, 1)
	assert.Equal(t, TransitOut, res.Days[2023100].Status())
}

func TestAggregate_TransitIn(t *testing.T) {
	day := testutil.Date(2023, 4, 10)
	recs := append(
		testutil.Fixes(26, day.Add(6*time.Hour), time.Minute, testutil.Paris),
		testutil.Fixes(26, day.Add(12*time.Hour), time.Minute, testutil.York)...,
	)
	res := run(recs, homeParams())

	require.Len(t, res.Days, 1)
	assert.Equal(t, TransitIn, res.Days[2023100].Status())
}

func TestAggregate_FirstAndLastCoordinates(t *testing.T) {
	day := testutil.Date(2023, 4, 10)
	first := testutil.Fix(day.Add(8*time.Hour), testutil.York)
	last := testutil.Fix(day.Add(20*time.Hour), testutil.Paris)
	res := run([]record.Record{first, last}, homeParams())

	d := res.Days[2023100]
	require.NotNil(t, d)
	assert.Equal(t, first.Timestamp, d.FirstTimestamp)
	assert.Equal(t, first.LatitudeE7, d.FirstLatitudeE7)
	assert.Equal(t, first.LongitudeE7, d.FirstLongitudeE7)
	assert.Equal(t, last.LatitudeE7, d.LastLatitudeE7)
	assert.Equal(t, last.LongitudeE7, d.LastLongitudeE7)
	assert.False(t, d.LastHitWasInside)
}

func TestAggregate_LowAccuracyIsDiscarded(t *testing.T) {
	day := testutil.Date(2023, 4, 10)
	base := testutil.DayOfFixes(30, day, testutil.York)
	want := run(base, homeParams())

	noisy := testutil.Fix(day.Add(23*time.Hour), testutil.Paris)
	noisy.AccuracyMeters = 1001

	var reported []record.Record
	p := homeParams()
	p.OnLowAccuracy = func(r record.Record) { reported = append(reported, r) }

	got := run(append(slices.Clone(base), noisy), p)

	assert.Equal(t, want.Days, got.Days)
	assert.Equal(t, *want.Highest, *got.Highest)
	assert.Equal(t, 1, got.Discards.LowAccuracy)
	assert.Equal(t, []record.Record{noisy}, reported)
}

func TestAggregate_AccuracyAtThresholdQualifies(t *testing.T) {
	r := testutil.Fix(testutil.Date(2023, 4, 10), testutil.York)
	r.AccuracyMeters = 1000
	res := run([]record.Record{r}, homeParams())
	assert.Len(t, res.Days, 1)
}

func TestAggregate_SentinelIsDiscarded(t *testing.T) {
	day := testutil.Date(2023, 4, 10)
	base := testutil.DayOfFixes(30, day, testutil.York)
	want := run(base, homeParams())

	sentinel := record.Record{
		Timestamp:      day.Add(22 * time.Hour),
		LatitudeE7:     SentinelLatitudeE7,
		LongitudeE7:    SentinelLongitudeE7,
		AccuracyMeters: 5,
	}
	onlySentinel := run([]record.Record{sentinel}, homeParams())
	assert.True(t, onlySentinel.Empty())
	assert.Nil(t, onlySentinel.Lowest)

	got := run(append(slices.Clone(base), sentinel), homeParams())
	assert.Equal(t, want.Days, got.Days)
	assert.Equal(t, 1, got.Discards.Sentinel)
}

func TestAggregate_WindowIsInclusive(t *testing.T) {
	start := time.Date(2023, 4, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 4, 12, 0, 0, 0, 0, time.UTC)
	p := homeParams()
	p.Start, p.End = start, end

	recs := []record.Record{
		testutil.Fix(start.Add(-time.Second), testutil.York),
		testutil.Fix(start, testutil.York),
		testutil.Fix(end, testutil.York),
		testutil.Fix(end.Add(time.Second), testutil.York),
	}
	res := run(recs, p)

	assert.Len(t, res.Days, 2)
	assert.Equal(t, 2, res.Discards.OutOfRange)
	for _, d := range res.Days {
		assert.False(t, d.FirstTimestamp.Before(start))
		assert.False(t, d.FirstTimestamp.After(end))
	}
}

func TestAggregate_OutOfOrderMinMax(t *testing.T) {
	recs := []record.Record{
		testutil.Fix(testutil.Date(2023, 5, 2), testutil.York),
		testutil.Fix(testutil.Date(2023, 5, 9), testutil.York),
		testutil.Fix(testutil.Date(2023, 4, 30), testutil.Paris),
		testutil.Fix(testutil.Date(2023, 5, 3), testutil.York),
	}
	res := run(recs, homeParams())

	require.NotNil(t, res.Lowest)
	require.NotNil(t, res.Highest)
	assert.Equal(t, testutil.Date(2023, 4, 30), *res.Lowest)
	assert.Equal(t, testutil.Date(2023, 5, 9), *res.Highest)
	assert.Equal(t, 4, res.Qualified)
	assert.Len(t, res.Days, 4)
}

func TestAggregate_HitCountsNeverDecrease(t *testing.T) {
	day := testutil.Date(2023, 4, 10)
	recs := append(testutil.DayOfFixes(10, day, testutil.York), testutil.DayOfFixes(10, day, testutil.Paris)...)

	p := homeParams()
	res := &Result{Days: make(map[int]*Day)}
	prevIn, prevOut := 0, 0
	for _, r := range recs {
		res.add(r, p)
		d := res.Days[2023100]
		require.GreaterOrEqual(t, d.InsideHits, prevIn)
		require.GreaterOrEqual(t, d.OutsideHits, prevOut)
		prevIn, prevOut = d.InsideHits, d.OutsideHits
	}
	assert.Equal(t, 10, prevIn)
	assert.Equal(t, 10, prevOut)
}

func TestAggregate_ConsumesWholeSequence(t *testing.T) {
	n := 0
	seq := func(yield func(record.Record) bool) {
		for _, r := range testutil.DayOfFixes(5, testutil.Date(2023, 1, 1), testutil.York) {
			n++
			if !yield(r) {
				return
			}
		}
	}
	Aggregate(seq, homeParams())
	assert.Equal(t, 5, n)
}

func TestParamsValidate(t *testing.T) {
	p := homeParams()
	assert.NoError(t, p.Validate())

	neg := homeParams()
	neg.RadiusKm = -1
	assert.ErrorIs(t, neg.Validate(), ErrInvalidParams)

	backwards := homeParams()
	backwards.Start, backwards.End = backwards.End, backwards.Start
	assert.ErrorIs(t, backwards.Validate(), ErrInvalidParams)

	badCentre := homeParams()
	badCentre.CenterLat = 91
	assert.ErrorIs(t, badCentre.Validate(), ErrInvalidParams)

	zero := homeParams()
	zero.RadiusKm = 0
	assert.NoError(t, zero.Validate())
}
