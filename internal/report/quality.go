package report

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/daysabroad/internal/aggregate"
)

// Quality summarises how many fixes back each captured day.
type Quality struct {
	MeanHits   float64 `json:"mean_hits"`
	StdDevHits float64 `json:"stddev_hits"`
	MedianHits float64 `json:"median_hits"`
	P90Hits    float64 `json:"p90_hits"`
	MinHits    int     `json:"min_hits"`
	MaxHits    int     `json:"max_hits"`
	// BelowThreshold counts days where neither side had enough hits.
	BelowThreshold int `json:"below_threshold"`
}

// ComputeQuality summarises hit counts per day. Zero for no days.
func ComputeQuality(days []DayRow) Quality {
	var q Quality
	if len(days) == 0 {
		return q
	}

	hits := make([]float64, 0, len(days))
	for _, d := range days {
		hits = append(hits, float64(d.Hits()))
		if d.Status == aggregate.ResolvedUnknown {
			q.BelowThreshold++
		}
	}
	sort.Float64s(hits)

	q.MeanHits, q.StdDevHits = stat.MeanStdDev(hits, nil)
	if len(hits) < 2 {
		q.StdDevHits = 0
	}
	q.MedianHits = stat.Quantile(0.5, stat.Empirical, hits, nil)
	q.P90Hits = stat.Quantile(0.9, stat.Empirical, hits, nil)
	q.MinHits = int(hits[0])
	q.MaxHits = int(hits[len(hits)-1])
	return q
}
