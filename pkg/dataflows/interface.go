package dataflows

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dyike/FundaGo/consts"
	"github.com/dyike/FundaGo/models"
)

// QuoteChain asks each source in order and returns the first price found.
type QuoteChain struct {
	sources []QuoteSource
}

func NewQuoteChain(sources ...QuoteSource) *QuoteChain {
	return &QuoteChain{sources: sources}
}

// Sources lists the provider names in the order they are tried.
func (qc *QuoteChain) Sources() []string {
	names := make([]string, 0, len(qc.sources))
	for _, s := range qc.sources {
		names = append(names, s.Name())
	}
	return names
}

// GetQuote implements QuoteSource. The error wraps ErrQuoteUnavailable and every
// source's failure.
func (qc *QuoteChain) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	errs := []error{ErrQuoteUnavailable}
	for _, source := range qc.sources {
		q, err := source.GetQuote(ctx, symbol)
		if err == nil {
			return q, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Warn().Err(err).Str("Symbol", symbol).Str("Source", source.Name()).Msg("quote source failed")
		errs = append(errs, fmt.Errorf("%s: %w", source.Name(), err))
	}
	return nil, errors.Join(errs...)
}

func (qc *QuoteChain) Name() string {
	return "chain"
}

// DataFlowInterface provides high-level access to all data sources
type DataFlowInterface struct {
	alphaVantage *AlphaVantageClient
	quotes       *QuoteChain
	treasury     *TreasuryClient
	rba          *RBAClient
	config       *Config
}

// NewDataFlowInterface wires the collectors from config. Longport joins the
// quote chain only when its credentials are present.
func NewDataFlowInterface(config *Config) *DataFlowInterface {
	av := NewAlphaVantageClient(config)
	sources := []QuoteSource{av, NewYahooFinanceClient(config)}
	if config.HasLongport() {
		if lp, err := NewLongportClient(config); err != nil {
			log.Warn().Err(err).Msg("longport quote source disabled")
		} else {
			sources = append(sources, lp)
		}
	}

	return &DataFlowInterface{
		alphaVantage: av,
		quotes:       NewQuoteChain(sources...),
		treasury:     NewTreasuryClient(config),
		rba:          NewRBAClient(config),
		config:       config,
	}
}

// GetFinancials gets the statements needed for a valuation.
func (dfi *DataFlowInterface) GetFinancials(ctx context.Context, symbol string) (*models.RawFinancials, error) {
	return dfi.alphaVantage.FetchFinancials(ctx, symbol)
}

// GetQuote walks the quote fallback chain.
func (dfi *DataFlowInterface) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	return dfi.quotes.GetQuote(ctx, symbol)
}

// QuoteSources lists the configured quote providers in fallback order.
func (dfi *DataFlowInterface) QuoteSources() []string {
	return dfi.quotes.Sources()
}

// FetchUSYields downloads the full Treasury yield history and saves it under DataDir.
func (dfi *DataFlowInterface) FetchUSYields(ctx context.Context, year string) (*models.YieldSeries, string, error) {
	points, err := dfi.treasury.FetchYields(ctx, year)
	if err != nil {
		return nil, "", err
	}
	series := &models.YieldSeries{Name: consts.Series_USTreasury, Points: points}
	path := dfi.treasury.DefaultPath()
	if err := SaveYields(path, series); err != nil {
		return nil, "", err
	}
	return series, path, nil
}

// LoadUSYields reads a saved series, or a raw Treasury XML file.
func (dfi *DataFlowInterface) LoadUSYields(path string) (*models.YieldSeries, error) {
	if path == "" {
		path = dfi.treasury.DefaultPath()
	}
	return LoadYields(path)
}

// FetchAUYields downloads the RBA F2 workbook and returns the path it was saved to.
func (dfi *DataFlowInterface) FetchAUYields(ctx context.Context) (string, error) {
	return dfi.rba.DownloadF2(ctx)
}

// LoadAUYields reads the RBA F2 workbook.
func (dfi *DataFlowInterface) LoadAUYields(path string) (*models.YieldSeries, error) {
	if path == "" {
		path = dfi.rba.DefaultPath()
	}
	return ReadF2(path)
}
