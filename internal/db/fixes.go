package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/daysabroad/internal/record"
)

// ImportSummary describes one completed import.
type ImportSummary struct {
	ID         string    `json:"import_id"`
	SourcePath string    `json:"source_path"`
	Started    time.Time `json:"started"`
	Read       int       `json:"fixes_read"`
	Inserted   int       `json:"fixes_inserted"`
	Malformed  int       `json:"fixes_malformed"`
}

// Duplicates is the number of fixes already present from earlier imports.
func (s ImportSummary) Duplicates() int {
	return s.Read - s.Inserted
}

// malformedCounter is implemented by sources that drop unreadable input.
type malformedCounter interface {
	MalformedRecords() int
}

// ImportFixes copies every record of src into the store inside a single
// transaction, tagged with a fresh import id. Fixes already stored (same
// instant and position) are skipped. If src fails the import is rolled back.
func (db *DB) ImportFixes(ctx context.Context, sourcePath string, src record.Source) (ImportSummary, error) {
	summary := ImportSummary{
		ID:         uuid.NewString(),
		SourcePath: sourcePath,
		Started:    time.Now().UTC(),
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO imports (import_id, source_path, started_unix) VALUES (?, ?, ?)`,
		summary.ID, sourcePath, summary.Started.Unix())
	if err != nil {
		return summary, fmt.Errorf("failed to record import: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO fixes (
			import_id, timestamp_nanos, utc_offset_s, latitude_e7, longitude_e7, accuracy_m
		) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return summary, fmt.Errorf("failed to prepare fix insert: %w", err)
	}
	defer stmt.Close()

	for r := range src.Records() {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if !storable(r.Timestamp) {
			return summary, fmt.Errorf("%w: %s", ErrUnstorableTime, r)
		}
		_, offset := r.Timestamp.Zone()
		res, err := stmt.ExecContext(ctx, summary.ID, r.Timestamp.UnixNano(), offset,
			r.LatitudeE7, r.LongitudeE7, r.AccuracyMeters)
		if err != nil {
			return summary, fmt.Errorf("failed to insert fix %s: %w", r, err)
		}
		summary.Read++
		if n, err := res.RowsAffected(); err == nil {
			summary.Inserted += int(n)
		}
	}
	if err := src.Err(); err != nil {
		return summary, fmt.Errorf("import source failed: %w", err)
	}
	if mc, ok := src.(malformedCounter); ok {
		summary.Malformed = mc.MalformedRecords()
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE imports SET fixes_read = ?, fixes_inserted = ?, fixes_malformed = ? WHERE import_id = ?`,
		summary.Read, summary.Inserted, summary.Malformed, summary.ID)
	if err != nil {
		return summary, fmt.Errorf("failed to update import: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("failed to commit import: %w", err)
	}
	return summary, nil
}

// Imports lists past imports, oldest first.
func (db *DB) Imports(ctx context.Context) ([]ImportSummary, error) {
	rows, err := db.QueryContext(ctx, `SELECT import_id, source_path, started_unix,
			fixes_read, fixes_inserted, fixes_malformed
		FROM imports ORDER BY started_unix, import_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ImportSummary
	for rows.Next() {
		var s ImportSummary
		var started int64
		if err := rows.Scan(&s.ID, &s.SourcePath, &started, &s.Read, &s.Inserted, &s.Malformed); err != nil {
			return nil, err
		}
		s.Started = time.Unix(started, 0).UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

// CountFixes returns the number of stored fixes.
func (db *DB) CountFixes(ctx context.Context) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fixes`).Scan(&n)
	return n, err
}

// Fixes returns a cursor over the stored fixes between start and end
// inclusive, ordered by time. The query runs when Records is ranged.
func (db *DB) Fixes(ctx context.Context, start, end time.Time) *FixCursor {
	return &FixCursor{db: db.DB, ctx: ctx, start: start, end: end}
}

// FixCursor streams stored fixes. It implements record.Source.
type FixCursor struct {
	db    *sql.DB
	ctx   context.Context
	start time.Time
	end   time.Time
	err   error
}

// Err returns the query or scan error that ended iteration, if any.
func (c *FixCursor) Err() error {
	return c.err
}

// Records yields fixes with their original UTC offset restored.
func (c *FixCursor) Records() iter.Seq[record.Record] {
	return func(yield func(record.Record) bool) {
		rows, err := c.db.QueryContext(c.ctx, `SELECT timestamp_nanos, utc_offset_s,
				latitude_e7, longitude_e7, accuracy_m
			FROM fixes
			WHERE timestamp_nanos BETWEEN ? AND ?
			ORDER BY timestamp_nanos, fix_id`,
			clampNanos(c.start), clampNanos(c.end))
		if err != nil {
			c.err = fmt.Errorf("failed to query fixes: %w", err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			var (
				nanos, offset int64
				r             record.Record
			)
			if err := rows.Scan(&nanos, &offset, &r.LatitudeE7, &r.LongitudeE7, &r.AccuracyMeters); err != nil {
				c.err = fmt.Errorf("failed to scan fix: %w", err)
				return
			}
			r.Timestamp = time.Unix(0, nanos).In(zoneFor(offset))
			if !yield(r) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			c.err = fmt.Errorf("failed to read fixes: %w", err)
		}
	}
}

// Fixes are keyed by Unix nanoseconds, which only cover 1677 to 2262.
var (
	minStorable = time.Unix(0, math.MinInt64)
	maxStorable = time.Unix(0, math.MaxInt64)
)

// ErrUnstorableTime is returned when a fix lies outside the range of
// instants the store can key.
var ErrUnstorableTime = errors.New("fix timestamp outside storable range")

func storable(t time.Time) bool {
	return !t.Before(minStorable) && !t.After(maxStorable)
}

// clampNanos pins a query bound to the storable range so that windows
// reaching past it still match every stored fix.
func clampNanos(t time.Time) int64 {
	switch {
	case t.Before(minStorable):
		return math.MinInt64
	case t.After(maxStorable):
		return math.MaxInt64
	}
	return t.UnixNano()
}

func zoneFor(offset int64) *time.Location {
	if offset == 0 {
		return time.UTC
	}
	return time.FixedZone("", int(offset))
}
