package dataflows

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	lpconfig "github.com/longportapp/openapi-go/config"
	"github.com/longportapp/openapi-go/quote"

	"github.com/dyike/FundaGo/consts"
	"github.com/dyike/FundaGo/models"
)

type LongportClient struct {
	quoteCtx *quote.QuoteContext
}

func NewLongportClient(cfg *Config) (*LongportClient, error) {
	if !cfg.HasLongport() {
		return nil, errors.New("longport API credentials not configured")
	}

	conf, err := lpconfig.New(lpconfig.WithConfigKey(cfg.LongportAppKey, cfg.LongportAppSecret, cfg.LongportAccessToken))
	if err != nil {
		return nil, err
	}

	quoteContext, err := quote.NewFromCfg(conf)
	if err != nil {
		return nil, err
	}

	return &LongportClient{quoteCtx: quoteContext}, nil
}

// Name implements QuoteSource.
func (lpc *LongportClient) Name() string {
	return consts.Source_Longport
}

// LongportSymbol maps a plain ticker to Longport's market-suffixed form.
// Tickers without a market suffix are treated as US listings.
func LongportSymbol(symbol string) string {
	symbol = NormalizeSymbol(symbol)
	if strings.Contains(symbol, ".") {
		return symbol
	}
	return symbol + ".US"
}

// GetQuote reads the last traded price.
func (lpc *LongportClient) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if lpc.quoteCtx == nil {
		return nil, errors.New("quote context is nil")
	}
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	quotes, err := lpc.quoteCtx.Quote(ctx, []string{LongportSymbol(symbol)})
	if err != nil {
		return nil, fmt.Errorf("longport quote %s: %w", symbol, err)
	}
	if len(quotes) == 0 || quotes[0] == nil || quotes[0].LastDone == nil || !quotes[0].LastDone.IsPositive() {
		return nil, fmt.Errorf("%w: %s has no %s price", ErrQuoteUnavailable, symbol, consts.Source_Longport)
	}

	return &models.Quote{
		Symbol:    NormalizeSymbol(symbol),
		Price:     *quotes[0].LastDone,
		Source:    consts.Source_Longport,
		FetchedAt: time.Now(),
	}, nil
}

