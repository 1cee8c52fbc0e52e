package dataflows

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/piquette/finance-go"
	"github.com/piquette/finance-go/quote"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/dyike/FundaGo/consts"
	"github.com/dyike/FundaGo/models"
)

// YahooFinanceClient prices symbols through the Yahoo Finance quote endpoint.
type YahooFinanceClient struct {
	cache *CacheManager
	retry *RetryConfig
	get   func(symbol string) (*finance.Quote, error)
}

// NewYahooFinanceClient creates a new Yahoo Finance client
func NewYahooFinanceClient(config *Config) *YahooFinanceClient {
	cacheDir := filepath.Join(config.DataCacheDir, "yahoo_finance")
	cache := NewCacheManager(cacheDir, 15*time.Minute, config.CacheEnabled)

	return &YahooFinanceClient{
		cache: cache,
		retry: DefaultRetryConfig(),
		get:   quote.Get,
	}
}

// Name implements QuoteSource.
func (yf *YahooFinanceClient) Name() string {
	return consts.Source_Yahoo
}

// GetQuote gets the regular market price for a symbol
func (yf *YahooFinanceClient) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	var cached models.Quote
	if yf.cache.Get("yahoo", "quote", symbol, &cached) {
		return &cached, nil
	}

	var result *models.Quote
	err := WithRetry(ctx, yf.retry, func() error {
		q, err := yf.get(symbol)
		if err != nil {
			return fmt.Errorf("failed to get quote for %s: %w", symbol, err)
		}
		if q == nil || q.RegularMarketPrice <= 0 {
			return Permanent(fmt.Errorf("%w: %s has no %s price", ErrQuoteUnavailable, symbol, consts.Source_Yahoo))
		}

		result = &models.Quote{
			Symbol:    symbol,
			Price:     decimal.NewFromFloat(q.RegularMarketPrice),
			Source:    consts.Source_Yahoo,
			FetchedAt: time.Now(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := yf.cache.Set("yahoo", "quote", symbol, result); err != nil {
		log.Warn().Err(err).Str("Symbol", symbol).Msg("failed to cache yahoo quote")
	}
	return result, nil
}
