package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dyike/FundaGo/consts"
	"github.com/dyike/FundaGo/internal/charts"
	"github.com/dyike/FundaGo/internal/display"
	"github.com/dyike/FundaGo/internal/utils"
	"github.com/dyike/FundaGo/models"
	"github.com/dyike/FundaGo/pkg/dataflows"
)

const (
	terminalChartWidth  = 70
	terminalChartHeight = 15
)

type plotOptions struct {
	input      string
	output     string
	spreadOnly bool
	noTerminal bool
}

func newYieldsCmd(a *app) *cobra.Command {
	yieldsCmd := &cobra.Command{
		Use:   "yields",
		Short: "Download and chart 2 and 10 year government bond yields",
	}

	var year string
	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the US Treasury daily yield curve",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dfi := dataflows.NewDataFlowInterface(a.cfg)
			series, path, err := dfi.FetchUSYields(cmd.Context(), year)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			display.NewResultsDisplay(out, a.cfg.Thresholds).DisplayYieldSummary(series)
			DisplaySuccess(out, fmt.Sprintf("Saved %d observations to %s", len(series.Points), path))
			return nil
		},
	}
	fetchCmd.Flags().StringVar(&year, "year", "all", "Year to download, or all")

	var usPlot plotOptions
	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "Chart the US 2 year, 10 year and 10-2 spread",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			series, err := a.loadYields(usPlot.input, false)
			if err != nil {
				return err
			}
			return a.plot(cmd.OutOrStdout(), series, usPlot, "us_treasury_yields.png")
		},
	}
	plotCmd.Flags().StringVar(&usPlot.input, "input", "", "Saved yields JSON or CSV, or a Treasury XML page (default: the last fetch)")
	plotCmd.Flags().StringVar(&usPlot.output, "output", "", "PNG path (default: results directory)")
	plotCmd.Flags().BoolVar(&usPlot.spreadOnly, "spread-only", false, "Chart only the 10-2 spread")
	plotCmd.Flags().BoolVar(&usPlot.noTerminal, "no-terminal", false, "Skip the terminal chart")

	fetchAUCmd := &cobra.Command{
		Use:   "fetch-au",
		Short: "Download the RBA F2 government bond yields table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dfi := dataflows.NewDataFlowInterface(a.cfg)
			path, err := dfi.FetchAUYields(cmd.Context())
			if err != nil {
				return err
			}
			series, err := dfi.LoadAUYields(path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			display.NewResultsDisplay(out, a.cfg.Thresholds).DisplayYieldSummary(series)
			DisplaySuccess(out, fmt.Sprintf("Saved %s", path))
			return nil
		},
	}

	auPlot := plotOptions{spreadOnly: true}
	plotAUCmd := &cobra.Command{
		Use:   "plot-au",
		Short: "Chart the Australian 10-2 spread from the F2 table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			series, err := a.loadYields(auPlot.input, true)
			if err != nil {
				return err
			}
			return a.plot(cmd.OutOrStdout(), series, auPlot, "au_treasury_spread.png")
		},
	}
	plotAUCmd.Flags().StringVar(&auPlot.input, "input", "", "Path to f02d.xlsx (default: the last fetch-au)")
	plotAUCmd.Flags().StringVar(&auPlot.output, "output", "", "PNG path (default: results directory)")
	plotAUCmd.Flags().BoolVar(&auPlot.spreadOnly, "spread-only", true, "Chart only the 10-2 spread")
	plotAUCmd.Flags().BoolVar(&auPlot.noTerminal, "no-terminal", false, "Skip the terminal chart")

	var (
		exportInput string
		exportAU    bool
	)
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write a yield series as CSV under the results directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			series, err := a.loadYields(exportInput, exportAU)
			if err != nil {
				return err
			}
			path, err := utils.NewCSVManager(a.cfg.ResultsDir).WriteYieldsToCSV(series)
			if err != nil {
				return err
			}
			DisplaySuccess(cmd.OutOrStdout(), fmt.Sprintf("Exported %d observations to %s", len(series.Points), path))
			return nil
		},
	}
	exportCmd.Flags().StringVar(&exportInput, "input", "", "Series to export (default: the last fetch or fetch-au)")
	exportCmd.Flags().BoolVar(&exportAU, "au", false, "Export the Australian F2 series")

	yieldsCmd.AddCommand(fetchCmd, plotCmd, fetchAUCmd, plotAUCmd, exportCmd)
	return yieldsCmd
}

// loadYields reads a CSV export, or the saved US series or F2 workbook.
func (a *app) loadYields(input string, au bool) (*models.YieldSeries, error) {
	name := consts.Series_USTreasury
	if au {
		name = consts.Series_AUTreasury
	}
	if strings.EqualFold(filepath.Ext(input), ".csv") {
		return utils.NewCSVManager(a.cfg.ResultsDir).ReadYieldsFromCSV(name, input)
	}

	dfi := dataflows.NewDataFlowInterface(a.cfg)
	if au {
		return dfi.LoadAUYields(input)
	}
	return dfi.LoadUSYields(input)
}

func (a *app) plot(out io.Writer, series *models.YieldSeries, opts plotOptions, defaultName string) error {
	path := opts.output
	if path == "" {
		path = filepath.Join(a.cfg.ResultsDir, defaultName)
	}

	chartOpts := charts.DefaultOptions()
	chartOpts.SpreadOnly = opts.spreadOnly
	if err := charts.SaveYieldChart(*series, path, chartOpts); err != nil {
		return err
	}

	display.NewResultsDisplay(out, a.cfg.Thresholds).DisplayYieldSummary(series)
	if !opts.noTerminal {
		fmt.Fprintln(out)
		fmt.Fprintln(out, charts.Terminal(*series, terminalChartWidth, terminalChartHeight))
	}
	DisplaySuccess(out, fmt.Sprintf("Chart saved to %s", path))
	return nil
}
