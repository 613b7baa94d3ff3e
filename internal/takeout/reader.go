// Package takeout streams location fixes out of a Google Takeout
// Records.json export without loading the file into memory.
//
// The export is a single object holding a "locations" array. Each element
// carries a timestamp, fixed-point coordinates and an accuracy radius, plus
// optional nested activity data which is skipped.
package takeout

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"time"

	"github.com/banshee-data/daysabroad/internal/fsutil"
	"github.com/banshee-data/daysabroad/internal/monitoring"
	"github.com/banshee-data/daysabroad/internal/record"
)

// Field names of a location element.
const (
	KeyLocations   = "locations"
	KeyTimestamp   = "timestamp"
	KeyTimestampMs = "timestampMs"
	KeyLatitude    = "latitudeE7"
	KeyLongitude   = "longitudeE7"
	KeyAccuracy    = "accuracy"
)

// ErrUnexpectedLayout is returned when the document is not an object with a
// "locations" array.
var ErrUnexpectedLayout = errors.New("unexpected takeout layout")

// Reader decodes location elements one at a time. It implements
// record.Source. Records may be ranged over only once.
type Reader struct {
	dec    *json.Decoder
	closer io.Closer
	size   int64

	// OnMalformed, when set, is called for every element that could not be
	// turned into a record. The builder holds whatever fields were read.
	OnMalformed func(b *record.Builder, err error)

	// Progress receives the fraction of input bytes consumed. May be nil.
	Progress *monitoring.Progress

	// Read and Malformed count complete and dropped elements.
	Read      int
	Malformed int

	started bool
	err     error
}

// NewReader decodes from r. size is the total input length used for
// progress reporting; pass 0 when unknown.
func NewReader(r io.Reader, size int64) *Reader {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &Reader{dec: dec, size: size}
}

// Open opens path on fsys and returns a Reader that closes the file on Close.
func Open(fsys fsutil.FileSystem, path string) (*Reader, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open takeout file: %w", err)
	}
	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}
	r := NewReader(f, size)
	r.closer = f
	return r, nil
}

// Close releases the underlying file when the Reader was created by Open.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Err returns the error that stopped the stream, if any. Malformed elements
// are not errors.
func (r *Reader) Err() error {
	return r.err
}

// MalformedRecords returns the number of elements dropped so far.
func (r *Reader) MalformedRecords() int {
	return r.Malformed
}

// Records yields every well-formed location element in file order.
func (r *Reader) Records() iter.Seq[record.Record] {
	return func(yield func(record.Record) bool) {
		if r.started {
			return
		}
		r.started = true
		if err := r.run(yield); err != nil {
			r.err = err
			return
		}
		r.Progress.Finish()
	}
}

// errStopped signals that the consumer stopped ranging early.
var errStopped = errors.New("stopped")

func (r *Reader) run(yield func(record.Record) bool) error {
	if err := r.expectDelim('{'); err != nil {
		return err
	}
	for r.dec.More() {
		key, err := r.key()
		if err != nil {
			return err
		}
		if key != KeyLocations {
			if err := skipValue(r.dec); err != nil {
				return fmt.Errorf("skip %q: %w", key, err)
			}
			continue
		}
		err = r.locations(yield)
		if errors.Is(err, errStopped) {
			return nil
		}
		if err != nil {
			return err
		}
	}
	return r.expectDelim('}')
}

func (r *Reader) locations(yield func(record.Record) bool) error {
	if err := r.expectDelim('['); err != nil {
		return err
	}
	var b record.Builder
	for r.dec.More() {
		b.Reset()
		rec, err := r.element(&b)
		if err != nil && !errors.Is(err, record.ErrMalformedRecord) {
			return err
		}
		if err != nil {
			r.Malformed++
			if r.OnMalformed != nil {
				r.OnMalformed(&b, err)
			}
			continue
		}
		r.Read++
		r.Progress.Update(r.dec.InputOffset(), r.size)
		if !yield(rec) {
			return errStopped
		}
	}
	return r.expectDelim(']')
}

// element decodes one array element. Decoding problems confined to the
// element are reported as record.ErrMalformedRecord; anything else means the
// document itself is broken.
func (r *Reader) element(b *record.Builder) (record.Record, error) {
	tok, err := r.token()
	if err != nil {
		return record.Record{}, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		if ok {
			if err := skipRest(r.dec); err != nil {
				return record.Record{}, err
			}
		}
		return record.Record{}, fmt.Errorf("%w: element is not an object", record.ErrMalformedRecord)
	}

	var fieldErr error
	for r.dec.More() {
		key, err := r.key()
		if err != nil {
			return record.Record{}, err
		}
		switch key {
		case KeyTimestamp, KeyTimestampMs, KeyLatitude, KeyLongitude, KeyAccuracy:
			val, err := r.token()
			if err != nil {
				return record.Record{}, err
			}
			if d, ok := val.(json.Delim); ok {
				if err := skipRest(r.dec); err != nil {
					return record.Record{}, err
				}
				fieldErr = fmt.Errorf("%w: %s holds %v", record.ErrMalformedRecord, key, d)
				continue
			}
			if err := setField(b, key, val); err != nil && fieldErr == nil {
				fieldErr = fmt.Errorf("%w: %s: %v", record.ErrMalformedRecord, key, err)
			}
		default:
			if err := skipValue(r.dec); err != nil {
				return record.Record{}, fmt.Errorf("skip %q: %w", key, err)
			}
		}
	}
	if err := r.expectDelim('}'); err != nil {
		return record.Record{}, err
	}
	if fieldErr != nil {
		return record.Record{}, fieldErr
	}
	return b.Build()
}

func setField(b *record.Builder, key string, val json.Token) error {
	switch key {
	case KeyTimestamp:
		s, ok := val.(string)
		if !ok {
			return fmt.Errorf("want string, got %T", val)
		}
		ts, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return err
		}
		b.SetTimestamp(ts)
	case KeyTimestampMs:
		ms, err := toInt64(val)
		if err != nil {
			return err
		}
		b.SetTimestamp(time.UnixMilli(ms).UTC())
	case KeyLatitude:
		v, err := toInt64(val)
		if err != nil {
			return err
		}
		b.SetLatitudeE7(v)
	case KeyLongitude:
		v, err := toInt64(val)
		if err != nil {
			return err
		}
		b.SetLongitudeE7(v)
	case KeyAccuracy:
		v, err := toInt64(val)
		if err != nil {
			return err
		}
		if v < 0 {
			return fmt.Errorf("negative radius %d", v)
		}
		b.SetAccuracy(v)
	}
	return nil
}

// toInt64 accepts JSON numbers and numeric strings. Fractional values are
// truncated.
func toInt64(val json.Token) (int64, error) {
	var s string
	switch v := val.(type) {
	case json.Number:
		s = v.String()
	case string:
		s = v
	default:
		return 0, fmt.Errorf("want number, got %T", val)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

func (r *Reader) token() (json.Token, error) {
	tok, err := r.dec.Token()
	if err == io.EOF {
		return nil, fmt.Errorf("decode takeout: %w", io.ErrUnexpectedEOF)
	}
	if err != nil {
		return nil, fmt.Errorf("decode takeout: %w", err)
	}
	return tok, nil
}

func (r *Reader) key() (string, error) {
	tok, err := r.token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("%w: want key, got %v", ErrUnexpectedLayout, tok)
	}
	return key, nil
}

func (r *Reader) expectDelim(want json.Delim) error {
	tok, err := r.token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("%w: want %v, got %v", ErrUnexpectedLayout, want, tok)
	}
	return nil
}

// skipValue consumes one complete value, however deeply nested.
func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	if err != nil {
		return err
	}
	if _, ok := tok.(json.Delim); ok {
		return skipRest(dec)
	}
	return nil
}

// skipRest consumes tokens up to and including the delimiter closing a
// container whose opening delimiter was just read.
func skipRest(dec *json.Decoder) error {
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}
