package dataflows

import (
	"context"
	"errors"

	"github.com/dyike/FundaGo/config"
	"github.com/dyike/FundaGo/models"
)

// Config is an alias for the main application config
type Config = config.Config

var (
	// ErrRateLimited is returned when Alpha Vantage answers with a Note or Information message.
	ErrRateLimited = errors.New("alpha vantage rate limit reached")
	// ErrInvalidSymbol is returned when the API rejects the symbol or returns no data for it.
	ErrInvalidSymbol = errors.New("invalid symbol")
	// ErrQuoteUnavailable is returned when no quote source could price the symbol.
	ErrQuoteUnavailable = errors.New("quote unavailable")
	// ErrNoYieldData is returned when a yield source produced no usable points.
	ErrNoYieldData = errors.New("no yield data")
	// ErrMissingAPIKey is returned before any request is made without credentials.
	ErrMissingAPIKey = errors.New("alpha vantage api key not configured")
)

// QuoteSource prices a single symbol.
type QuoteSource interface {
	Name() string
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
}

// FinancialsSource returns the statements a valuation needs.
type FinancialsSource interface {
	FetchFinancials(ctx context.Context, symbol string) (*models.RawFinancials, error)
}
