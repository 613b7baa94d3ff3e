package report

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ErrNothingToPlot is returned when a report has no captured days.
var ErrNothingToPlot = errors.New("no captured days to plot")

var (
	insideColor  = color.RGBA{R: 47, G: 126, B: 216, A: 255}
	outsideColor = color.RGBA{R: 242, G: 143, B: 67, A: 255}
)

// WriteHitsPlot draws the daily inside and outside hit counts as a PNG.
func WriteHitsPlot(w io.Writer, r *Report) error {
	if len(r.Days) == 0 {
		return ErrNothingToPlot
	}

	p := plot.New()
	p.Title.Text = "Qualifying fixes per day"
	p.X.Label.Text = "Day"
	p.Y.Label.Text = "Hits"
	p.X.Tick.Marker = plot.TimeTicks{Format: monthLayout}

	inPts := make(plotter.XYs, 0, len(r.Days))
	outPts := make(plotter.XYs, 0, len(r.Days))
	for _, d := range r.Days {
		x := float64(d.Date.Unix())
		inPts = append(inPts, plotter.XY{X: x, Y: float64(d.InsideHits)})
		outPts = append(outPts, plotter.XY{X: x, Y: float64(d.OutsideHits)})
	}

	inLine, err := plotter.NewLine(inPts)
	if err != nil {
		return err
	}
	inLine.Color = insideColor
	inLine.Width = vg.Points(1)
	p.Add(inLine)
	p.Legend.Add("inside", inLine)

	outLine, err := plotter.NewLine(outPts)
	if err != nil {
		return err
	}
	outLine.Color = outsideColor
	outLine.Width = vg.Points(1)
	p.Add(outLine)
	p.Legend.Add("outside", outLine)

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	wt, err := p.WriterTo(14*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("failed to create plot writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write plot: %w", err)
	}
	return nil
}
