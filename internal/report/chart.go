package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/daysabroad/internal/aggregate"
)

const monthLayout = "2006-01"

// MonthCount is the number of captured days per resolved status in one
// calendar month.
type MonthCount struct {
	Month   string
	Inside  int
	Outside int
	Unknown int
}

// Months buckets captured days by calendar month, oldest first. Months with
// no captured day are left out.
func Months(days []DayRow) []MonthCount {
	byMonth := make(map[string]*MonthCount)
	for _, d := range days {
		key := d.Date.Format(monthLayout)
		m, ok := byMonth[key]
		if !ok {
			m = &MonthCount{Month: key}
			byMonth[key] = m
		}
		switch d.Status {
		case aggregate.ResolvedInside:
			m.Inside++
		case aggregate.ResolvedOutside:
			m.Outside++
		default:
			m.Unknown++
		}
	}

	out := make([]MonthCount, 0, len(byMonth))
	for _, m := range byMonth {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// RenderTimelineChart writes a standalone HTML page with a stacked bar per
// month showing inside, outside and unknown days.
func RenderTimelineChart(w io.Writer, r *Report) error {
	months := Months(r.Days)

	x := make([]string, 0, len(months))
	inside := make([]opts.BarData, 0, len(months))
	outside := make([]opts.BarData, 0, len(months))
	unknown := make([]opts.BarData, 0, len(months))
	for _, m := range months {
		x = append(x, m.Month)
		inside = append(inside, opts.BarData{Value: m.Inside})
		outside = append(outside, opts.BarData{Value: m.Outside})
		unknown = append(unknown, opts.BarData{Value: m.Unknown})
	}

	subtitle := fmt.Sprintf("%d days outside, %d inside, %d without enough hits",
		r.Statistics.DaysOutsideIncludingTransit, r.Statistics.DaysInside, r.Statistics.CapturedButInvalidDays)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Days abroad", Width: "100%", Height: "640px"}),
		charts.WithTitleOpts(opts.Title{Title: "Days per month", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10%"}),
	)
	bar.SetXAxis(x).
		AddSeries("inside", inside,
			charts.WithBarChartOpts(opts.BarChart{Stack: "days"}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "#2f7ed8"}),
		).
		AddSeries("outside", outside,
			charts.WithBarChartOpts(opts.BarChart{Stack: "days"}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "#f28f43"}),
		).
		AddSeries("unknown", unknown,
			charts.WithBarChartOpts(opts.BarChart{Stack: "days"}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "#a0a0a0"}),
		)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("render error: %w", err)
	}
	return nil
}
