package charts

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/dyike/FundaGo/models"
)

var (
	tenYearColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	twoYearColor = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	spreadColor  = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	zeroColor    = color.RGBA{R: 120, G: 120, B: 120, A: 255}
)

// Options controls the PNG output.
type Options struct {
	Width  vg.Length
	Height vg.Length
	// SpreadOnly draws just the 10-2 spread, as for the AU chart.
	SpreadOnly bool
}

func DefaultOptions() Options {
	return Options{Width: 12 * vg.Inch, Height: 6 * vg.Inch}
}

func xys(points []models.YieldPoint, value func(models.YieldPoint) float64) plotter.XYs {
	out := make(plotter.XYs, len(points))
	for i, p := range points {
		out[i].X = float64(p.Date.Unix())
		out[i].Y = value(p)
	}
	return out
}

func addLine(p *plot.Plot, name string, data plotter.XYs, c color.Color) error {
	line, err := plotter.NewLine(data)
	if err != nil {
		return fmt.Errorf("%s line: %w", name, err)
	}
	line.Color = c
	line.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add(name, line)
	return nil
}

// SaveYieldChart renders the 2 and 10 year yields and their spread to a PNG file.
func SaveYieldChart(series models.YieldSeries, path string, opts Options) error {
	if len(series.Points) < 2 {
		return fmt.Errorf("%s: need at least 2 points to chart, got %d", series.Name, len(series.Points))
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s Yields and 10-2 Spread", series.Name)
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Yield (%)"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006"}
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	if !opts.SpreadOnly {
		if err := addLine(p, "10 Year", xys(series.Points, func(y models.YieldPoint) float64 { return y.TenYear.InexactFloat64() }), tenYearColor); err != nil {
			return err
		}
		if err := addLine(p, "2 Year", xys(series.Points, func(y models.YieldPoint) float64 { return y.TwoYear.InexactFloat64() }), twoYearColor); err != nil {
			return err
		}
	}
	if err := addLine(p, "10-2 Spread", xys(series.Points, func(y models.YieldPoint) float64 { return y.Spread().InexactFloat64() }), spreadColor); err != nil {
		return err
	}

	zero := plotter.NewFunction(func(float64) float64 { return 0 })
	zero.Color = zeroColor
	zero.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(zero)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := p.Save(opts.Width, opts.Height, path); err != nil {
		return fmt.Errorf("save chart %s: %w", path, err)
	}
	return nil
}
