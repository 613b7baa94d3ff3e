// Package record defines a single GPS fix and the contract between record
// sources (file decoders, the fix store) and the day aggregator.
package record

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"
)

// ErrMalformedRecord is returned when a source object is missing one or more
// of the fields a Record needs.
var ErrMalformedRecord = errors.New("malformed record")

// Record is one GPS fix. Coordinates are fixed-point degrees * 1e7 and may be
// wrapped into the unsigned 32-bit range; see geo.DecodeLatitude.
type Record struct {
	Timestamp      time.Time
	LatitudeE7     int64
	LongitudeE7    int64
	AccuracyMeters int64
}

func (r Record) String() string {
	return fmt.Sprintf("Record(timestamp=%s, latitude=%d, longitude=%d, accuracy=%d)",
		r.Timestamp.Format(time.RFC3339), r.LatitudeE7, r.LongitudeE7, r.AccuracyMeters)
}

// State is the readiness of a Builder.
type State int

const (
	Building State = iota
	Complete
)

func (s State) String() string {
	if s == Complete {
		return "complete"
	}
	return "building"
}

const (
	fieldTimestamp = 1 << iota
	fieldLatitude
	fieldLongitude
	fieldAccuracy

	allFields = fieldTimestamp | fieldLatitude | fieldLongitude | fieldAccuracy
)

// Builder collects the fields of one source object. The zero value is an
// empty builder.
type Builder struct {
	rec  Record
	seen int
}

// SetTimestamp records the fix time.
func (b *Builder) SetTimestamp(t time.Time) *Builder {
	b.rec.Timestamp = t
	b.seen |= fieldTimestamp
	return b
}

// SetLatitudeE7 records the fixed-point latitude.
func (b *Builder) SetLatitudeE7(v int64) *Builder {
	b.rec.LatitudeE7 = v
	b.seen |= fieldLatitude
	return b
}

// SetLongitudeE7 records the fixed-point longitude.
func (b *Builder) SetLongitudeE7(v int64) *Builder {
	b.rec.LongitudeE7 = v
	b.seen |= fieldLongitude
	return b
}

// SetAccuracy records the accuracy radius in metres.
func (b *Builder) SetAccuracy(v int64) *Builder {
	b.rec.AccuracyMeters = v
	b.seen |= fieldAccuracy
	return b
}

// State reports whether all four fields have been observed.
func (b *Builder) State() State {
	if b.seen == allFields {
		return Complete
	}
	return Building
}

// Empty reports whether no field has been set yet.
func (b *Builder) Empty() bool {
	return b.seen == 0
}

// Reset clears the builder for the next source object.
func (b *Builder) Reset() {
	*b = Builder{}
}

// Build returns the finished Record, or ErrMalformedRecord naming the
// missing fields.
func (b *Builder) Build() (Record, error) {
	if b.State() != Complete {
		return Record{}, fmt.Errorf("%w: missing %s", ErrMalformedRecord, strings.Join(b.missing(), ", "))
	}
	return b.rec, nil
}

func (b *Builder) missing() []string {
	var out []string
	if b.seen&fieldTimestamp == 0 {
		out = append(out, "timestamp")
	}
	if b.seen&fieldLatitude == 0 {
		out = append(out, "latitudeE7")
	}
	if b.seen&fieldLongitude == 0 {
		out = append(out, "longitudeE7")
	}
	if b.seen&fieldAccuracy == 0 {
		out = append(out, "accuracy")
	}
	return out
}

func (b *Builder) String() string {
	return fmt.Sprintf("Builder(%s, missing=%v, partial=%s)", b.State(), b.missing(), b.rec)
}

// Source is a lazy, finite, single-pass sequence of records in arrival order.
// Records may arrive out of timestamp order. Err reports the error that ended
// iteration early, if any, and must be checked once Records is exhausted.
type Source interface {
	Records() iter.Seq[Record]
	Err() error
}

// SliceSource serves records from memory. It is mostly useful in tests and
// for small in-process pipelines.
type SliceSource []Record

// Records yields the slice in order.
func (s SliceSource) Records() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for _, r := range s {
			if !yield(r) {
				return
			}
		}
	}
}

// Err always returns nil.
func (s SliceSource) Err() error { return nil }
