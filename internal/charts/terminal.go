package charts

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/dyike/FundaGo/models"
)

// Terminal renders the series as an ASCII chart no wider than width columns.
// Long series are sampled down to fit.
func Terminal(series models.YieldSeries, width, height int) string {
	if len(series.Points) == 0 {
		return ""
	}
	points := Downsample(series.Points, width)

	ten := make([]float64, len(points))
	two := make([]float64, len(points))
	spread := make([]float64, len(points))
	for i, p := range points {
		ten[i] = p.TenYear.InexactFloat64()
		two[i] = p.TwoYear.InexactFloat64()
		spread[i] = p.Spread().InexactFloat64()
	}

	first, last := points[0].Date, points[len(points)-1].Date
	return asciigraph.PlotMany([][]float64{ten, two, spread},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(2),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Orange, asciigraph.Green),
		asciigraph.SeriesLegends("10Y", "2Y", "10-2"),
		asciigraph.Caption(fmt.Sprintf("%s %s to %s", series.Name, first.Format("2006-01-02"), last.Format("2006-01-02"))),
	)
}

// Downsample keeps at most n evenly spaced points, always including the last one.
func Downsample(points []models.YieldPoint, n int) []models.YieldPoint {
	if n <= 0 || len(points) <= n {
		return points
	}
	if n == 1 {
		return points[len(points)-1:]
	}
	out := make([]models.YieldPoint, 0, n)
	step := float64(len(points)-1) / float64(n-1)
	for i := 0; i < n; i++ {
		out = append(out, points[int(float64(i)*step+0.5)])
	}
	return out
}
