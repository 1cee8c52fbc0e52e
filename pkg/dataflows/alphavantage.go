package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/dyike/FundaGo/consts"
	"github.com/dyike/FundaGo/models"
)

// AlphaVantageClient handles Alpha Vantage API operations
type AlphaVantageClient struct {
	client  *resty.Client
	cache   *CacheManager
	limiter *rate.Limiter
	retry   *RetryConfig
	apiKey  string
}

// NewAlphaVantageClient creates a client throttled to cfg.RequestsPerMinute.
func NewAlphaVantageClient(cfg *Config) *AlphaVantageClient {
	cacheDir := filepath.Join(cfg.DataCacheDir, "alphavantage")
	cache := NewCacheManager(cacheDir, 24*time.Hour, cfg.CacheEnabled) // statements change quarterly

	rpm := cfg.RequestsPerMinute
	if rpm < 1 {
		rpm = 5
	}

	client := resty.New()
	client.SetBaseURL(cfg.AlphaVantageBaseURL)
	client.SetTimeout(cfg.RequestTimeout())

	return &AlphaVantageClient{
		client:  client,
		cache:   cache,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm),
		retry:   DefaultRetryConfig(),
		apiKey:  cfg.AlphaVantageAPIKey,
	}
}

// SetRetryConfig replaces the backoff used for transport failures.
func (av *AlphaVantageClient) SetRetryConfig(rc *RetryConfig) {
	av.retry = rc
}

// Name implements QuoteSource.
func (av *AlphaVantageClient) Name() string {
	return consts.Source_AlphaVantage
}

// Wire formats. Every number arrives as a string.
type avOverview struct {
	Symbol               string `json:"Symbol"`
	Name                 string `json:"Name"`
	Sector               string `json:"Sector"`
	Description          string `json:"Description"`
	MarketCapitalization string `json:"MarketCapitalization"`
	PERatio              string `json:"PERatio"`
	PriceToBookRatio     string `json:"PriceToBookRatio"`
	DividendYield        string `json:"DividendYield"`
	EPS                  string `json:"EPS"`
	Beta                 string `json:"Beta"`
	SharesOutstanding    string `json:"SharesOutstanding"`
}

type avAnnual[T any] struct {
	Symbol        string `json:"symbol"`
	AnnualReports []T    `json:"annualReports"`
}

type avIncomeReport struct {
	FiscalDateEnding string `json:"fiscalDateEnding"`
	NetIncome        string `json:"netIncome"`
}

type avCashFlowReport struct {
	FiscalDateEnding    string `json:"fiscalDateEnding"`
	OperatingCashflow   string `json:"operatingCashflow"`
	CapitalExpenditures string `json:"capitalExpenditures"`
}

type avBalanceReport struct {
	FiscalDateEnding       string `json:"fiscalDateEnding"`
	TotalLiabilities       string `json:"totalLiabilities"`
	TotalShareholderEquity string `json:"totalShareholderEquity"`
}

type avGlobalQuote struct {
	Quote struct {
		Symbol string `json:"01. symbol"`
		Price  string `json:"05. price"`
	} `json:"Global Quote"`
}

// ParseNumber converts an Alpha Vantage field. "None", "-" and empty strings are absent.
func ParseNumber(s string) decimal.NullDecimal {
	s = strings.TrimSpace(s)
	switch s {
	case "", "None", "-":
		return models.Undefined
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return models.Undefined
	}
	return models.Some(d)
}

// checkBody maps the API's in-band error messages to sentinel errors.
func checkBody(function, symbol string, body []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("decode %s response for %s: %w", function, symbol, err)
	}
	if len(doc) == 0 {
		return fmt.Errorf("%w: %s returned no data for %s", ErrInvalidSymbol, function, symbol)
	}
	if msg, ok := doc["Error Message"]; ok {
		return fmt.Errorf("%w: %s: %s", ErrInvalidSymbol, symbol, unquote(msg))
	}
	for _, key := range []string{"Note", "Information"} {
		if msg, ok := doc[key]; ok {
			return fmt.Errorf("%w: %s", ErrRateLimited, unquote(msg))
		}
	}
	return nil
}

func unquote(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return string(raw)
	}
	return s
}

// query performs one throttled call and returns the validated JSON body.
func (av *AlphaVantageClient) query(ctx context.Context, function, symbol string) ([]byte, error) {
	if av.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	var body []byte
	err := WithRetry(ctx, av.retry, func() error {
		if err := av.limiter.Wait(ctx); err != nil {
			return Permanent(err)
		}

		log.Debug().Str("Function", function).Str("Symbol", symbol).Msg("alpha vantage request")
		resp, err := av.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"function": function,
				"symbol":   symbol,
				"apikey":   av.apiKey,
			}).
			Get("/query")
		if err != nil {
			return fmt.Errorf("alpha vantage %s request: %w", function, err)
		}

		if resp.StatusCode() >= http.StatusInternalServerError {
			return fmt.Errorf("alpha vantage %s: status %d", function, resp.StatusCode())
		}
		if resp.StatusCode() != http.StatusOK {
			return Permanent(fmt.Errorf("alpha vantage %s: status %d", function, resp.StatusCode()))
		}

		if err := checkBody(function, symbol, resp.Body()); err != nil {
			return Permanent(err)
		}
		body = resp.Body()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// fetch decodes a function's response, going through the file cache first.
func (av *AlphaVantageClient) fetch(ctx context.Context, function, symbol string, out any) error {
	var cached json.RawMessage
	if av.cache.Get("alphavantage", function, symbol, &cached) {
		return json.Unmarshal(cached, out)
	}

	body, err := av.query(ctx, function, symbol)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s for %s: %w", function, symbol, err)
	}

	if err := av.cache.Set("alphavantage", function, symbol, json.RawMessage(body)); err != nil {
		log.Warn().Err(err).Str("Symbol", symbol).Str("Function", function).Msg("failed to cache response")
	}
	return nil
}

// FetchFinancials gets the overview and annual income, cash flow and balance sheet statements.
func (av *AlphaVantageClient) FetchFinancials(ctx context.Context, symbol string) (*models.RawFinancials, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	var overview avOverview
	if err := av.fetch(ctx, consts.Function_Overview, symbol, &overview); err != nil {
		return nil, err
	}
	var income avAnnual[avIncomeReport]
	if err := av.fetch(ctx, consts.Function_IncomeStatement, symbol, &income); err != nil {
		return nil, err
	}
	var cashFlow avAnnual[avCashFlowReport]
	if err := av.fetch(ctx, consts.Function_CashFlow, symbol, &cashFlow); err != nil {
		return nil, err
	}
	var balance avAnnual[avBalanceReport]
	if err := av.fetch(ctx, consts.Function_BalanceSheet, symbol, &balance); err != nil {
		return nil, err
	}

	raw := &models.RawFinancials{
		Overview: models.Overview{
			Symbol:               symbol,
			Name:                 overview.Name,
			Sector:               overview.Sector,
			Description:          overview.Description,
			MarketCapitalization: ParseNumber(overview.MarketCapitalization),
			PERatio:              ParseNumber(overview.PERatio),
			PriceToBookRatio:     ParseNumber(overview.PriceToBookRatio),
			DividendYield:        ParseNumber(overview.DividendYield),
			EPS:                  ParseNumber(overview.EPS),
			Beta:                 ParseNumber(overview.Beta),
			SharesOutstanding:    ParseNumber(overview.SharesOutstanding),
		},
		FetchedAt: time.Now(),
	}
	for _, r := range income.AnnualReports {
		raw.IncomeStatement = append(raw.IncomeStatement, models.IncomeReport{
			FiscalDateEnding: r.FiscalDateEnding,
			NetIncome:        ParseNumber(r.NetIncome),
		})
	}
	for _, r := range cashFlow.AnnualReports {
		raw.CashFlow = append(raw.CashFlow, models.CashFlowReport{
			FiscalDateEnding:    r.FiscalDateEnding,
			OperatingCashflow:   ParseNumber(r.OperatingCashflow),
			CapitalExpenditures: ParseNumber(r.CapitalExpenditures),
		})
	}
	for _, r := range balance.AnnualReports {
		raw.BalanceSheet = append(raw.BalanceSheet, models.BalanceReport{
			FiscalDateEnding:       r.FiscalDateEnding,
			TotalLiabilities:       ParseNumber(r.TotalLiabilities),
			TotalShareholderEquity: ParseNumber(r.TotalShareholderEquity),
		})
	}

	log.Debug().Str("Symbol", symbol).
		Int("IncomeReports", len(raw.IncomeStatement)).
		Int("CashFlowReports", len(raw.CashFlow)).
		Int("BalanceReports", len(raw.BalanceSheet)).
		Msg("fetched financials")
	return raw, nil
}

// GetQuote reads the GLOBAL_QUOTE price. Quotes are never cached.
func (av *AlphaVantageClient) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	body, err := av.query(ctx, consts.Function_GlobalQuote, symbol)
	if err != nil {
		return nil, err
	}

	var gq avGlobalQuote
	if err := json.Unmarshal(body, &gq); err != nil {
		return nil, fmt.Errorf("decode %s for %s: %w", consts.Function_GlobalQuote, symbol, err)
	}
	price := ParseNumber(gq.Quote.Price)
	if !price.Valid || !price.Decimal.IsPositive() {
		return nil, fmt.Errorf("%w: %s has no %s price", ErrQuoteUnavailable, symbol, consts.Source_AlphaVantage)
	}

	return &models.Quote{
		Symbol:    symbol,
		Price:     price.Decimal,
		Source:    consts.Source_AlphaVantage,
		FetchedAt: time.Now(),
	}, nil
}
