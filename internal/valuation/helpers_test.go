package valuation

import (
	"testing"

	"github.com/dyike/FundaGo/models"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nd(s string) decimal.NullDecimal {
	return models.Some(d(s))
}

func sampleFinancials() models.RawFinancials {
	return models.RawFinancials{
		Overview: models.Overview{
			Symbol:               "ACME",
			Name:                 "Acme Corp",
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
			{FiscalDateEnding: "2023-12-31", NetIncome: nd("18")},
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

func quoteAt(price string) *models.Quote {
	return &models.Quote{Symbol: "ACME", Price: d(price), Source: "test"}
}

func assertDecimal(t *testing.T, name string, got decimal.NullDecimal, want string) {
	t.Helper()
	if !got.Valid {
		t.Fatalf("%s: expected %s, got undefined", name, want)
	}
	if !got.Decimal.Equal(d(want)) {
		t.Fatalf("%s: expected %s, got %s", name, want, got.Decimal)
	}
}

func assertUndefined(t *testing.T, name string, got decimal.NullDecimal) {
	t.Helper()
	if got.Valid {
		t.Fatalf("%s: expected undefined, got %s", name, got.Decimal)
	}
}
