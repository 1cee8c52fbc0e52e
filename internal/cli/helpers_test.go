package cli

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dyike/FundaGo/config"
	"github.com/dyike/FundaGo/models"
	"github.com/dyike/FundaGo/pkg/dataflows"
)

func nd(s string) decimal.NullDecimal {
	return models.Some(decimal.RequireFromString(s))
}

func sampleFinancials(symbol string) *models.RawFinancials {
	return &models.RawFinancials{
		Overview: models.Overview{
			Symbol:               symbol,
			Name:                 symbol + " Corp",
			Sector:               "INDUSTRIALS",
			MarketCapitalization: nd("1000000"),
			PERatio:              nd("12"),
			PriceToBookRatio:     nd("0.8"),
			DividendYield:        nd("0.04"),
			EPS:                  nd("3.5"),
			Beta:                 nd("0.9"),
			SharesOutstanding:    nd("100"),
		},
		IncomeStatement: []models.IncomeReport{
			{FiscalDateEnding: "2024-12-31", NetIncome: nd("20")},
		},
		CashFlow: []models.CashFlowReport{
			{FiscalDateEnding: "2024-12-31", OperatingCashflow: nd("800"), CapitalExpenditures: nd("300")},
			{FiscalDateEnding: "2023-12-31", OperatingCashflow: nd("700"), CapitalExpenditures: nd("200")},
		},
		BalanceSheet: []models.BalanceReport{
			{FiscalDateEnding: "2024-12-31", TotalLiabilities: nd("50"), TotalShareholderEquity: nd("100")},
		},
	}
}

// fakeCollector serves canned statements; the perpetuity value of every
// sample company is $50 a share.
type fakeCollector struct {
	prices map[string]string
	calls  int
}

func (f *fakeCollector) GetFinancials(ctx context.Context, symbol string) (*models.RawFinancials, error) {
	f.calls++
	if _, ok := f.prices[symbol]; !ok {
		return nil, fmt.Errorf("%w: %s", dataflows.ErrInvalidSymbol, symbol)
	}
	return sampleFinancials(symbol), nil
}

func (f *fakeCollector) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	price := f.prices[symbol]
	if price == "" {
		return nil, fmt.Errorf("%w: %s", dataflows.ErrQuoteUnavailable, symbol)
	}
	return &models.Quote{Symbol: symbol, Price: decimal.RequireFromString(price), Source: "fake"}, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return config.DefaultConfigWithRoot(t.TempDir())
}

// runCLI executes the command tree against a config file in a temp dir and
// returns stdout.
func runCLI(t *testing.T, configPath string, collector Collector, args ...string) (string, error) {
	t.Helper()
	a := newApp()
	if collector != nil {
		a.collector = func(*config.Config) Collector { return collector }
	}

	cmd := newRootCmd(a)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func tempConfigPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "config.json")
}
