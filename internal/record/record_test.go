package record

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestBuilderComplete(t *testing.T) {
	ts := time.Date(2023, 3, 1, 12, 0, 0, 0, time.UTC)

	var b Builder
	if !b.Empty() || b.State() != Building {
		t.Fatalf("zero builder should be empty and building, got %s", b.State())
	}

	b.SetTimestamp(ts).SetLatitudeE7(540085726).SetLongitudeE7(-14301757)
	if b.State() != Building {
		t.Fatalf("State() = %s before accuracy, want building", b.State())
	}
	b.SetAccuracy(20)
	if b.State() != Complete {
		t.Fatalf("State() = %s, want complete", b.State())
	}

	r, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	want := Record{Timestamp: ts, LatitudeE7: 540085726, LongitudeE7: -14301757, AccuracyMeters: 20}
	if r != want {
		t.Errorf("Build() = %v, want %v", r, want)
	}
}

func TestBuilderZeroValuesCount(t *testing.T) {
	var b Builder
	b.SetTimestamp(time.Unix(0, 0)).SetLatitudeE7(0).SetLongitudeE7(0).SetAccuracy(0)
	if _, err := b.Build(); err != nil {
		t.Fatalf("zero-valued fields are still observed fields, got %v", err)
	}
}

func TestBuilderMalformed(t *testing.T) {
	var b Builder
	b.SetLatitudeE7(1).SetAccuracy(5)

	_, err := b.Build()
	if !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("Build() error = %v, want ErrMalformedRecord", err)
	}
	for _, field := range []string{"timestamp", "longitudeE7"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error %q does not name missing field %s", err, field)
		}
	}
	if strings.Contains(err.Error(), "accuracy") {
		t.Errorf("error %q names a field that was set", err)
	}
}

func TestBuilderReset(t *testing.T) {
	var b Builder
	b.SetLatitudeE7(1)
	b.Reset()
	if !b.Empty() {
		t.Error("Reset() did not clear the builder")
	}
}

func TestSliceSource(t *testing.T) {
	src := SliceSource{
		{LatitudeE7: 1},
		{LatitudeE7: 2},
		{LatitudeE7: 3},
	}

	var got []int64
	for r := range src.Records() {
		got = append(got, r.LatitudeE7)
		if len(got) == 2 {
			break
		}
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("early break yielded %v", got)
	}
	if src.Err() != nil {
		t.Errorf("Err() = %v", src.Err())
	}
}
