package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dyike/FundaGo/config"
	"github.com/dyike/FundaGo/internal/valuation"
	"github.com/dyike/FundaGo/models"
)

// Collector is the part of the data layer an analysis needs.
type Collector interface {
	GetFinancials(ctx context.Context, symbol string) (*models.RawFinancials, error)
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
}

// Analyzer fetches a company's statements and price and values it.
type Analyzer struct {
	config *config.Config
	data   Collector
	calc   *valuation.Calculator
}

// NewAnalyzer creates an analyzer using the DCF assumptions from cfg.
func NewAnalyzer(cfg *config.Config, data Collector) *Analyzer {
	return &Analyzer{
		config: cfg,
		data:   data,
		calc:   valuation.NewCalculatorWithParams(DCFParamsFromConfig(cfg)),
	}
}

// DCFParamsFromConfig falls back to the defaults for non-positive rates,
// multiples and horizons. Dividend growth is taken as configured.
func DCFParamsFromConfig(cfg *config.Config) valuation.DCFParams {
	params := valuation.DefaultDCFParams()
	if cfg == nil {
		return params
	}
	if cfg.DiscountRate.IsPositive() {
		params.DiscountRate = cfg.DiscountRate
	}
	if cfg.TerminalMultiple.IsPositive() {
		params.TerminalMultiple = cfg.TerminalMultiple
	}
	if cfg.ProjectionYears > 0 {
		params.ProjectionYears = cfg.ProjectionYears
	}
	// zero means no dividend growth
	params.DividendGrowthRate = cfg.DividendGrowthRate
	return params
}

// RunAnalysis values one ticker. A price that no quote source could supply
// surfaces as a missing-data error from the calculator.
func (a *Analyzer) RunAnalysis(ctx context.Context, ticker string, strategy valuation.Strategy) (*models.Analysis, error) {
	log.Info().Str("Ticker", ticker).Str("Strategy", strategy.String()).Msg("starting analysis")

	raw, err := a.data.GetFinancials(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("fetch financials for %s: %w", ticker, err)
	}

	quote, quoteErr := a.data.GetQuote(ctx, ticker)
	if quoteErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Warn().Err(quoteErr).Str("Ticker", ticker).Msg("no quote available")
		quote = nil
	}

	analysis, err := a.calc.Analyze(ticker, *raw, quote, strategy, a.config.Thresholds)
	if err != nil {
		if quoteErr != nil {
			err = errors.Join(err, quoteErr)
		}
		return nil, fmt.Errorf("value %s: %w", ticker, err)
	}

	log.Info().
		Str("Ticker", analysis.Ticker).
		Bool("Undervalued", analysis.Undervalued).
		Msg("analysis complete")
	return analysis, nil
}
