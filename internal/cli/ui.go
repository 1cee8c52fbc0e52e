package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// UI styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Background(lipgloss.Color("#1F2937")).
			Padding(0, 1).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 2).
			Width(74)

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	completedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6"))
)

// DisplayWelcomeBanner shows the banner printed before interactive prompts.
func DisplayWelcomeBanner(w io.Writer) {
	fmt.Fprintln(w, titleStyle.Render("FundaGo"))
	fmt.Fprintln(w, pendingStyle.Render("Value-investing metrics from company fundamentals"))
	fmt.Fprintln(w)
}

// DisplayHeader shows a boxed one-line header.
func DisplayHeader(w io.Writer, text string) {
	fmt.Fprintln(w, headerStyle.Render(text))
}

// DisplayError shows an error message
func DisplayError(w io.Writer, err error) {
	fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("✗ Error: %s", err.Error())))
}

// DisplayInfo shows an info message
func DisplayInfo(w io.Writer, message string) {
	fmt.Fprintln(w, infoStyle.Render(message))
}

// DisplaySuccess shows a success message
func DisplaySuccess(w io.Writer, message string) {
	fmt.Fprintln(w, completedStyle.Render(fmt.Sprintf("✓ %s", message)))
}

// formatBatchStatus renders one progress line of a scan.
func formatBatchStatus(r BatchResult, index, total int) string {
	prefix := fmt.Sprintf("[%d/%d] %-10s", index, total, r.Symbol)
	elapsed := r.Duration.Round(10 * time.Millisecond)

	switch r.Status {
	case BatchCompleted:
		verdict := "not undervalued"
		if r.Analysis != nil && r.Analysis.Undervalued {
			verdict = "undervalued"
		}
		return fmt.Sprintf("%s %s (%s)", prefix, completedStyle.Render(verdict), elapsed)
	case BatchFailed:
		return fmt.Sprintf("%s %s %s", prefix, errorStyle.Render("failed:"), truncateString(r.Err.Error(), 60))
	default:
		return fmt.Sprintf("%s %s", prefix, pendingStyle.Render(r.Status.String()))
	}
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
