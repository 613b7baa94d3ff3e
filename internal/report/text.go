package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Layouts used by the plain text report.
const (
	DateTimeLayout = "2006/Jan/2 15:04"
	DateLayout     = "2006/Jan/2"
)

// printer remembers the first write error so the report body stays linear.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

// WriteText prints the report in the plain text layout of the command line
// tool.
func WriteText(w io.Writer, r *Report) error {
	p := &printer{w: w}

	p.printf("Target range: %s - %s\n", r.Start.Format(DateTimeLayout), r.End.Format(DateTimeLayout))
	if r.Empty() {
		p.printf("No qualifying records in range\n")
		writeDiscards(p, r)
		return p.err
	}

	s := r.Statistics
	p.printf("Result range: %s - %s (%d days)\n",
		s.RangeStart.Format(DateTimeLayout), s.RangeEnd.Format(DateTimeLayout), s.ResultRangeDays)
	p.printf("Number of days spent outside (including transit days): %d\n", s.DaysOutsideIncludingTransit)

	p.printf("\nQuality of data:\n")
	p.printf("%d days have valid coordinates\n", s.ValidDays)
	p.printf("Number of days that are not captured: %d\n", s.UncapturedDays)
	p.printf("Number of days that are captured but do not have enough gps hits: %d\n", s.CapturedButInvalidDays)
	p.printf("Hits per captured day: mean %.1f, median %.0f, p90 %.0f, min %d, max %d\n",
		r.Quality.MeanHits, r.Quality.MedianHits, r.Quality.P90Hits, r.Quality.MinHits, r.Quality.MaxHits)
	writeDiscards(p, r)

	if len(r.Transitions) > 0 {
		p.printf("\nTransitions:\n")
		for _, t := range r.Transitions {
			p.printf("%s, %s -> %s (in: %d, out: %d)\n",
				t.Date.Format(time.RFC3339), t.FromURL, t.ToURL, t.InsideHits, t.OutsideHits)
		}
	}

	p.printf("\nPeriods:\n")
	writeRows(p, r.Periods)

	p.printf("\nMost recent contiguous residency (target %d days, max gap %d days):\n", r.TargetDays, r.MaxGapDays)
	writeRows(p, r.RecentContiguous)
	if r.TargetReached {
		p.printf("Total: %d days\n", r.RecentContiguousDays)
	} else {
		p.printf("Total: %d days (target not reached)\n", r.RecentContiguousDays)
	}
	return p.err
}

func writeRows(p *printer, rows []PeriodRow) {
	for _, row := range rows {
		p.printf("%s - %s: %s (%d days)\n",
			row.Start.Format(DateLayout), row.End.Format(DateLayout), row.Status, row.LengthDays)
	}
}

func writeDiscards(p *printer, r *Report) {
	d := r.Discards
	if d.LowAccuracy+d.OutOfRange+d.Sentinel == 0 {
		return
	}
	p.printf("Discarded fixes: %d low accuracy, %d out of range, %d placeholder\n",
		d.LowAccuracy, d.OutOfRange, d.Sentinel)
}

// WriteJSON encodes the report as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
