package display

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/dyike/FundaGo/consts"
	"github.com/dyike/FundaGo/internal/valuation"
	"github.com/dyike/FundaGo/models"
)

const ruleWidth = 74

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	passStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	wrapStyle = lipgloss.NewStyle().
			Width(ruleWidth - 3).
			PaddingLeft(3)
)

// ResultsDisplay renders analyses and yield summaries as console text.
type ResultsDisplay struct {
	out        io.Writer
	thresholds models.Thresholds
}

// NewResultsDisplay writes to out, classifying against thresholds.
func NewResultsDisplay(out io.Writer, thresholds models.Thresholds) *ResultsDisplay {
	if out == nil {
		out = os.Stdout
	}
	return &ResultsDisplay{out: out, thresholds: thresholds}
}

// DisplayAnalysis prints the company block, the metric interpretations, the
// condition checklist and the verdict.
func (d *ResultsDisplay) DisplayAnalysis(a *models.Analysis) {
	d.showHeader(a)
	d.showCompany(a.Company)
	d.showInfoMetrics(a.Metrics)
	d.showInterpretation(a.Metrics)
	d.showConditions(a.Metrics)
	d.showVerdict(a)
}

func (d *ResultsDisplay) rule() {
	fmt.Fprintln(d.out, strings.Repeat("═", ruleWidth))
}

func (d *ResultsDisplay) showHeader(a *models.Analysis) {
	fmt.Fprintln(d.out)
	d.rule()
	fmt.Fprintln(d.out, titleStyle.Render(fmt.Sprintf("VALUATION FOR %s (%s)", a.Ticker, a.Strategy)))
	d.rule()
}

func (d *ResultsDisplay) showCompany(c models.Company) {
	fmt.Fprintln(d.out, sectionStyle.Render("Company Information"))
	fmt.Fprintf(d.out, "%s %s\n", labelStyle.Render("Name:"), c.Name)
	fmt.Fprintf(d.out, "%s %s\n", labelStyle.Render("Sector:"), c.Sector)
	fmt.Fprintln(d.out, labelStyle.Render("Description:"))
	fmt.Fprintln(d.out, wrapStyle.Render(c.Description))
	fmt.Fprintln(d.out)
}

func (d *ResultsDisplay) showInfoMetrics(m models.Metrics) {
	fmt.Fprintln(d.out, sectionStyle.Render("Key Figures"))
	for _, name := range consts.InfoMetrics {
		v, _ := m.Get(name)
		fmt.Fprintf(d.out, "%s %s\n", labelStyle.Render(string(name)+":"), valuation.FormatValue(name, v))
	}
	fmt.Fprintln(d.out)
}

func (d *ResultsDisplay) showInterpretation(m models.Metrics) {
	fmt.Fprintln(d.out, sectionStyle.Render("Interpretation"))
	for _, name := range consts.ReportMetrics {
		v, _ := m.Get(name)
		fmt.Fprintln(d.out, valuation.Interpret(name, v, d.thresholds))
	}
	fmt.Fprintln(d.out)
}

func (d *ResultsDisplay) showConditions(m models.Metrics) {
	fmt.Fprintln(d.out, sectionStyle.Render("Undervaluation Conditions"))
	for _, c := range valuation.Conditions(m, d.thresholds) {
		mark := failStyle.Render("✗")
		if c.Passed {
			mark = passStyle.Render("✓")
		}
		fmt.Fprintf(d.out, "  %s %s\n", mark, c.Metric)
	}
	fmt.Fprintln(d.out)
}

func (d *ResultsDisplay) showVerdict(a *models.Analysis) {
	d.rule()
	fmt.Fprintln(d.out, Verdict(a))
	d.rule()
}

// Verdict is the one-line conclusion for an analysis.
func Verdict(a *models.Analysis) string {
	if a.Undervalued {
		return passStyle.Render(fmt.Sprintf("%s appears to be undervalued.", a.Ticker))
	}
	return failStyle.Render(fmt.Sprintf("%s does not meet all undervaluation criteria.", a.Ticker))
}

// ScanRow is one ticker's outcome in a batch scan.
type ScanRow struct {
	Ticker   string
	Analysis *models.Analysis
	Err      error
}

// DisplayScanSummary lists the undervalued tickers, then the ones that failed.
func (d *ResultsDisplay) DisplayScanSummary(rows []ScanRow) {
	fmt.Fprintln(d.out)
	d.rule()
	fmt.Fprintln(d.out, titleStyle.Render("SCAN SUMMARY"))
	d.rule()

	var undervalued, failed []ScanRow
	for _, r := range rows {
		switch {
		case r.Err != nil:
			failed = append(failed, r)
		case r.Analysis != nil && r.Analysis.Undervalued:
			undervalued = append(undervalued, r)
		}
	}

	if len(undervalued) == 0 {
		fmt.Fprintln(d.out, "No undervalued companies found.")
	} else {
		fmt.Fprintln(d.out, sectionStyle.Render("Undervalued Companies"))
		fmt.Fprintf(d.out, "  %-10s %-28s %14s %10s\n", "Ticker", "Name", "Price", "MoS")
		for _, r := range undervalued {
			m := r.Analysis.Metrics
			fmt.Fprintf(d.out, "  %-10s %-28s %14s %10s\n",
				r.Ticker,
				truncate(r.Analysis.Company.Name, 28),
				valuation.FormatValue(consts.Metric_CurrentPrice, m.CurrentPrice),
				valuation.FormatValue(consts.Metric_MarginOfSafety, m.MarginOfSafety))
		}
	}

	if len(failed) > 0 {
		fmt.Fprintln(d.out)
		fmt.Fprintln(d.out, sectionStyle.Render("Failed"))
		for _, r := range failed {
			fmt.Fprintf(d.out, "  %s %s: %v\n", failStyle.Render("✗"), r.Ticker, r.Err)
		}
	}
	fmt.Fprintf(d.out, "\nScanned %s tickers, %d undervalued, %d failed.\n",
		humanize.Comma(int64(len(rows))), len(undervalued), len(failed))
}

// DisplayYieldSummary prints the latest observation and how often the curve was inverted.
func (d *ResultsDisplay) DisplayYieldSummary(series *models.YieldSeries) {
	fmt.Fprintln(d.out, sectionStyle.Render(series.Name+" Yields"))
	latest, ok := series.Latest()
	if !ok {
		fmt.Fprintln(d.out, "No observations.")
		return
	}

	first := series.Points[0].Date
	fmt.Fprintf(d.out, "%s %s to %s (%s observations)\n", labelStyle.Render("Range:"),
		first.Format("2006-01-02"), latest.Date.Format("2006-01-02"), humanize.Comma(int64(len(series.Points))))
	fmt.Fprintf(d.out, "%s %s%%\n", labelStyle.Render("2 Year:"), latest.TwoYear.StringFixed(2))
	fmt.Fprintf(d.out, "%s %s%%\n", labelStyle.Render("10 Year:"), latest.TenYear.StringFixed(2))

	spread := latest.Spread()
	style := passStyle
	if spread.IsNegative() {
		style = failStyle
	}
	fmt.Fprintf(d.out, "%s %s\n", labelStyle.Render("10-2 Spread:"), style.Render(spread.StringFixed(2)))
	fmt.Fprintf(d.out, "%s %d\n", labelStyle.Render("Inverted days:"), series.Inverted())
}

// DisplayHistory lists saved analyses, newest first.
func (d *ResultsDisplay) DisplayHistory(analyses []models.Analysis) {
	if len(analyses) == 0 {
		fmt.Fprintln(d.out, "No saved analyses.")
		return
	}
	fmt.Fprintf(d.out, "%-36s  %-20s %-10s %-12s %14s %10s  %s\n", "ID", "Date", "Ticker", "Strategy", "IV", "MoS", "Verdict")
	for _, a := range analyses {
		verdict := "-"
		if a.Undervalued {
			verdict = "undervalued"
		}
		fmt.Fprintf(d.out, "%-36s  %-20s %-10s %-12s %14s %10s  %s\n",
			a.ID,
			a.CreatedAt.Format("2006-01-02 15:04:05"),
			a.Ticker,
			a.Strategy,
			valuation.FormatValue(consts.Metric_IntrinsicValue, a.Metrics.IntrinsicValuePerShare),
			valuation.FormatValue(consts.Metric_MarginOfSafety, a.Metrics.MarginOfSafety),
			verdict)
	}
}

// DisplayJSON writes v as indented JSON.
func (d *ResultsDisplay) DisplayJSON(v any) error {
	enc := json.NewEncoder(d.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// SaveAnalysisToFile writes the analysis as JSON under dir and returns the path.
func SaveAnalysisToFile(a *models.Analysis, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create results directory: %w", err)
	}
	name := fmt.Sprintf("%s_%s.json", a.Ticker, a.CreatedAt.Format("20060102_150405"))
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal analysis: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write analysis: %w", err)
	}
	return path, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
