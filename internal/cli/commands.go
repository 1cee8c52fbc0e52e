package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dyike/FundaGo/config"
	"github.com/dyike/FundaGo/internal/display"
	"github.com/dyike/FundaGo/internal/storage/sqlite"
	"github.com/dyike/FundaGo/internal/utils"
	"github.com/dyike/FundaGo/internal/valuation"
	"github.com/dyike/FundaGo/models"
	"github.com/dyike/FundaGo/pkg/dataflows"
)

// Version is set at build time with -ldflags.
var Version = "dev"

type rootOptions struct {
	configPath string
	logLevel   string
	debug      bool
}

// app carries what every subcommand needs once the root has loaded config.
type app struct {
	opts rootOptions
	cfg  *config.Config
	mgr  *config.Manager

	// collector builds the data layer for analyses; replaced in tests.
	collector func(*config.Config) Collector
}

func newApp() *app {
	return &app{
		collector: func(cfg *config.Config) Collector {
			return dataflows.NewDataFlowInterface(cfg)
		},
	}
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(newApp())
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fundago",
		Short: "FundaGo - value-investing metrics and government bond yield curves",
		Long: `FundaGo values companies from their Alpha Vantage fundamentals (P/E, P/B, dividend
yield, ROE, debt to equity, free cash flow, DCF intrinsic value and margin of safety) and
flags the ones that pass every undervaluation threshold. It also downloads US Treasury and
RBA bond yields and charts the 10-2 spread.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInteractive(cmd)
		},
	}

	rootCmd.AddCommand(newAnalyzeCmd(a))
	rootCmd.AddCommand(newScanCmd(a))
	rootCmd.AddCommand(newYieldsCmd(a))
	rootCmd.AddCommand(newHistoryCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.PersistentFlags().BoolVar(&a.opts.debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&a.opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config")
	rootCmd.PersistentFlags().StringVar(&a.opts.configPath, "config", "", "Configuration file path")

	return rootCmd
}

// setup loads the persisted config, applies .env and environment overrides,
// configures logging and creates the working directories.
func (a *app) setup(cmd *cobra.Command) error {
	setupLogging(cmd.ErrOrStderr(), a.opts.logLevel, a.opts.debug)

	// a new config file roots its directories next to an explicit --config,
	// otherwise at the working directory
	var initial *config.Config
	if a.opts.configPath != "" {
		initial = config.DefaultConfigWithRoot(filepath.Dir(a.opts.configPath))
	} else if wd, err := os.Getwd(); err == nil {
		initial = config.DefaultConfigWithRoot(wd)
	}
	mgr, err := config.NewManager(config.WithConfigPath(a.opts.configPath), config.WithInitialConfig(initial))
	if err != nil {
		if a.opts.configPath != "" {
			return fmt.Errorf("load config %s: %w", a.opts.configPath, err)
		}
		log.Warn().Err(err).Msg("config file unavailable, using built-in defaults")
		a.cfg = config.DefaultConfig()
	} else {
		a.mgr = mgr
		cfg := mgr.Get()
		cfg.ApplyEnv()
		a.cfg = &cfg
	}

	level := a.opts.logLevel
	if level == "" {
		level = a.cfg.LogLevel
	}
	setupLogging(cmd.ErrOrStderr(), level, a.opts.debug || a.cfg.Debug)

	if err := a.cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}
	return nil
}

// watchLogLevel follows log_level edits in the config file until ctx ends.
// Flags given on the command line win.
func (a *app) watchLogLevel(ctx context.Context) {
	if a.mgr == nil || a.opts.logLevel != "" || a.opts.debug {
		return
	}
	err := a.mgr.Watch(ctx, func(cfg config.Config) {
		level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
		if err != nil || cfg.LogLevel == "" {
			return
		}
		if cfg.Debug {
			level = zerolog.DebugLevel
		}
		zerolog.SetGlobalLevel(level)
		log.Info().Str("Level", level.String()).Msg("log level reloaded")
	})
	if err != nil {
		log.Debug().Err(err).Msg("config watch unavailable")
	}
}

func (a *app) strategy(name string) (valuation.Strategy, error) {
	if strings.TrimSpace(name) == "" {
		name = a.cfg.Strategy
	}
	return valuation.ParseStrategy(name)
}

func (a *app) openStore() (*sqlite.Store, error) {
	return sqlite.Open(a.cfg.DBPath)
}

type analyzeOptions struct {
	strategy string
	save     bool
	export   bool
	json     bool
}

// newAnalyzeCmd creates the analyze command
func newAnalyzeCmd(a *app) *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze [TICKER]",
		Short: "Value one company and check it against the undervaluation thresholds",
		Long: `Fetch the overview, income statement, cash flow and balance sheet of a company,
compute its valuation metrics and report whether it looks undervalued.
Without a ticker the command prompts for one.
Example: fundago analyze IBM --strategy projection --save`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var ticker string
			if len(args) == 1 {
				ticker = args[0]
			} else {
				t, err := PromptForTicker()
				if err != nil {
					return err
				}
				ticker = t
				if !cmd.Flags().Changed("strategy") {
					s, err := PromptForStrategy(a.cfg.Strategy)
					if err != nil {
						return err
					}
					opts.strategy = s.String()
				}
			}
			return a.runAnalyze(cmd.Context(), cmd.OutOrStdout(), ticker, opts)
		},
	}

	cmd.Flags().StringVar(&opts.strategy, "strategy", "", "Intrinsic value strategy: perpetuity or projection (config default if empty)")
	cmd.Flags().BoolVar(&opts.save, "save", false, "Save the analysis to the history database")
	cmd.Flags().BoolVar(&opts.export, "export", false, "Write the analysis as JSON under the results directory")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print the analysis as JSON")

	return cmd
}

func (a *app) runAnalyze(ctx context.Context, out io.Writer, ticker string, opts analyzeOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := dataflows.ValidateSymbol(ticker); err != nil {
		return err
	}
	ticker = dataflows.NormalizeSymbol(ticker)

	strategy, err := a.strategy(opts.strategy)
	if err != nil {
		return err
	}

	analyzer := NewAnalyzer(a.cfg, a.collector(a.cfg))
	analysis, err := analyzer.RunAnalysis(ctx, ticker, strategy)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	d := display.NewResultsDisplay(out, a.cfg.Thresholds)
	if opts.json {
		if err := d.DisplayJSON(analysis); err != nil {
			return err
		}
	} else {
		d.DisplayAnalysis(analysis)
	}

	if opts.save {
		if err := a.saveAnalyses(ctx, analysis); err != nil {
			return err
		}
		if !opts.json {
			DisplaySuccess(out, fmt.Sprintf("Saved analysis %s", analysis.ID))
		}
	}
	if opts.export {
		path, err := display.SaveAnalysisToFile(analysis, a.cfg.ResultsDir)
		if err != nil {
			return err
		}
		if !opts.json {
			DisplaySuccess(out, fmt.Sprintf("Results saved in: %s", path))
		}
	}
	return nil
}

func (a *app) saveAnalyses(ctx context.Context, analyses ...*models.Analysis) error {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	for _, analysis := range analyses {
		if err := store.SaveAnalysis(ctx, analysis); err != nil {
			return err
		}
	}
	return nil
}

type scanOptions struct {
	strategy string
	file     string
	save     bool
	quiet    bool
}

func newScanCmd(a *app) *cobra.Command {
	var opts scanOptions

	cmd := &cobra.Command{
		Use:   "scan [TICKER...]",
		Short: "Value a list of tickers and summarise the undervalued ones",
		Long: `Analyse each ticker in turn, printing its interpretation and verdict, then list the
companies that pass every undervaluation condition. A failed ticker is reported and the
scan continues.
Example: fundago scan BHP.AX CBA.AX WES.AX`,
		RunE: func(cmd *cobra.Command, args []string) error {
			symbols := args
			if opts.file != "" {
				fromFile, err := LoadSymbolsFromFile(opts.file)
				if err != nil {
					return err
				}
				symbols = append(symbols, fromFile...)
			}
			return a.runScan(cmd.Context(), cmd.OutOrStdout(), symbols, opts)
		},
	}

	cmd.Flags().StringVar(&opts.strategy, "strategy", "", "Intrinsic value strategy: perpetuity or projection (config default if empty)")
	cmd.Flags().StringVar(&opts.file, "file", "", "Read tickers from a file, one per line")
	cmd.Flags().BoolVar(&opts.save, "save", false, "Save every successful analysis to the history database")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Print only progress and the summary")

	return cmd
}

func (a *app) runScan(ctx context.Context, out io.Writer, symbols []string, opts scanOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	valid, invalid := ValidateSymbols(symbols)
	for _, s := range invalid {
		log.Warn().Str("Ticker", s).Msg("skipping malformed ticker")
	}
	if len(valid) == 0 {
		return fmt.Errorf("no valid tickers to scan")
	}

	strategy, err := a.strategy(opts.strategy)
	if err != nil {
		return err
	}

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	a.watchLogLevel(watchCtx)

	d := display.NewResultsDisplay(out, a.cfg.Thresholds)
	bm := NewBatchManager(NewAnalyzer(a.cfg, a.collector(a.cfg)))
	done := 0
	bm.OnResult = func(r BatchResult) {
		done++
		fmt.Fprintln(out, formatBatchStatus(r, done, len(valid)))
		if !opts.quiet && r.Analysis != nil {
			d.DisplayAnalysis(r.Analysis)
		}
	}

	results, runErr := bm.RunBatchAnalysis(ctx, valid, strategy)
	d.DisplayScanSummary(ScanRows(results))

	if opts.save {
		var ok []*models.Analysis
		for _, r := range results {
			if r.Analysis != nil {
				ok = append(ok, r.Analysis)
			}
		}
		if len(ok) > 0 {
			if err := a.saveAnalyses(ctx, ok...); err != nil {
				return err
			}
			DisplaySuccess(out, fmt.Sprintf("Saved %d analyses", len(ok)))
		}
	}
	return runErr
}

func newHistoryCmd(a *app) *cobra.Command {
	var (
		limit  int
		ticker string
		toCSV  bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved analyses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.ListAnalyses(cmd.Context(), ticker, 0, limit)
			if err != nil {
				return err
			}
			analyses := make([]models.Analysis, 0, len(records))
			for _, r := range records {
				analyses = append(analyses, r.Analysis)
			}
			display.NewResultsDisplay(cmd.OutOrStdout(), a.cfg.Thresholds).DisplayHistory(analyses)

			if toCSV && len(analyses) > 0 {
				path, err := utils.NewCSVManager(a.cfg.ResultsDir).WriteAnalysesToCSV(analyses)
				if err != nil {
					return err
				}
				DisplaySuccess(cmd.OutOrStdout(), fmt.Sprintf("Exported %d analyses to %s", len(analyses), path))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of analyses to list")
	cmd.Flags().StringVar(&ticker, "ticker", "", "Only list analyses of this ticker")
	cmd.Flags().BoolVar(&toCSV, "csv", false, "Also export the listed analyses as CSV")

	var asJSON bool
	showCmd := &cobra.Command{
		Use:   "show ID",
		Short: "Print a saved analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			rec, err := store.GetAnalysis(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if rec == nil {
				return fmt.Errorf("no saved analysis with id %s", args[0])
			}
			d := display.NewResultsDisplay(cmd.OutOrStdout(), a.cfg.Thresholds)
			if asJSON {
				return d.DisplayJSON(rec.Analysis)
			}
			d.DisplayAnalysis(&rec.Analysis)
			return nil
		},
	}
	showCmd.Flags().BoolVar(&asJSON, "json", false, "Print the analysis as JSON")

	deleteCmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Remove a saved analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.DeleteAnalysis(cmd.Context(), args[0]); err != nil {
				return err
			}
			DisplaySuccess(cmd.OutOrStdout(), fmt.Sprintf("Deleted analysis %s", args[0]))
			return nil
		},
	}

	cmd.AddCommand(showCmd, deleteCmd)
	return cmd
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "FundaGo %s\n", Version)
		},
	}
}

// newConfigCmd creates the config command
func newConfigCmd(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "Show, validate and edit the FundaGo configuration file",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			showConfig(cmd.OutOrStdout(), a.cfg)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfig(cmd.OutOrStdout(), a.cfg)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value, e.g. strategy projection or thresholds.pe 12",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.mgr == nil {
				return errors.New("no configuration file is loaded")
			}
			if err := a.mgr.Set(args[0], args[1]); err != nil {
				return err
			}
			DisplaySuccess(cmd.OutOrStdout(), fmt.Sprintf("%s = %s", args[0], args[1]))
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.mgr == nil {
				return errors.New("no configuration file is loaded")
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.mgr.Path())
			return nil
		},
	})

	return configCmd
}

func maskSecret(s string) string {
	if s == "" {
		return "not configured"
	}
	if len(s) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}

// showConfig displays the current configuration
func showConfig(w io.Writer, cfg *config.Config) {
	DisplayHeader(w, "Current FundaGo Configuration")
	fmt.Fprintf(w, "Project Directory:    %s\n", cfg.ProjectDir)
	fmt.Fprintf(w, "Results Directory:    %s\n", cfg.ResultsDir)
	fmt.Fprintf(w, "Data Directory:       %s\n", cfg.DataDir)
	fmt.Fprintf(w, "Cache Directory:      %s\n", cfg.DataCacheDir)
	fmt.Fprintf(w, "Database:             %s\n", cfg.DBPath)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Alpha Vantage Key:    %s\n", maskSecret(cfg.AlphaVantageAPIKey))
	fmt.Fprintf(w, "Requests Per Minute:  %d\n", cfg.RequestsPerMinute)
	fmt.Fprintf(w, "Request Timeout:      %s\n", cfg.RequestTimeout())
	fmt.Fprintf(w, "Longport:             %t\n", cfg.HasLongport())
	fmt.Fprintf(w, "Cache Enabled:        %t\n", cfg.CacheEnabled)
	fmt.Fprintf(w, "Debug Mode:           %t\n", cfg.Debug)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Strategy:             %s\n", cfg.Strategy)
	fmt.Fprintf(w, "Discount Rate:        %s\n", cfg.DiscountRate)
	fmt.Fprintf(w, "Terminal Multiple:    %s\n", cfg.TerminalMultiple)
	fmt.Fprintf(w, "Projection Years:     %d\n", cfg.ProjectionYears)
	fmt.Fprintf(w, "Dividend Growth:      %s\n", cfg.DividendGrowthRate)
	fmt.Fprintln(w)

	t := cfg.Thresholds
	fmt.Fprintln(w, "Undervaluation Thresholds:")
	fmt.Fprintf(w, "  P/E below           %s\n", t.PE)
	fmt.Fprintf(w, "  P/B below           %s\n", t.PB)
	fmt.Fprintf(w, "  Dividend Yield over %s\n", valuation.FormatPercent(t.DividendYield))
	fmt.Fprintf(w, "  ROE over            %s\n", valuation.FormatPercent(t.ROE))
	fmt.Fprintf(w, "  Debt/Equity below   %s\n", t.DebtToEquity)
	fmt.Fprintf(w, "  Margin of Safety    %s\n", valuation.FormatPercent(t.MarginOfSafety))
}

// validateConfig validates the configuration and reports missing credentials.
func validateConfig(w io.Writer, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		DisplayError(w, err)
		return fmt.Errorf("configuration is invalid")
	}

	var warnings []string
	if cfg.AlphaVantageAPIKey == "" {
		warnings = append(warnings, "Alpha Vantage API key not configured (set ALPHAVANTAGE_API_KEY)")
	}
	if !cfg.HasLongport() {
		warnings = append(warnings, "Longport credentials not configured, quotes fall back to Alpha Vantage and Yahoo only")
	}
	for _, warning := range warnings {
		DisplayInfo(w, "! "+warning)
	}

	if len(warnings) == 0 {
		DisplaySuccess(w, "Configuration validation completed successfully!")
	} else {
		DisplaySuccess(w, fmt.Sprintf("Configuration is valid with %d warnings.", len(warnings)))
	}
	return nil
}

// runInteractive prompts for a ticker and strategy and runs one analysis.
func (a *app) runInteractive(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	DisplayWelcomeBanner(out)

	ticker, err := PromptForTicker()
	if err != nil {
		return err
	}
	strategy, err := PromptForStrategy(a.cfg.Strategy)
	if err != nil {
		return err
	}
	return a.runAnalyze(cmd.Context(), out, ticker, analyzeOptions{strategy: strategy.String()})
}
